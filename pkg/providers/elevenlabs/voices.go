package elevenlabs

import "strings"

// defaultVoice is Rachel, a clear general-purpose voice.
const defaultVoice = "21m00Tcm4TlvDq8ikWAM"

// voiceAliases maps the voice names the UI exposes to ElevenLabs voice IDs.
// Raw voice IDs pass through untouched.
var voiceAliases = map[string]string{
	"alloy":        "21m00Tcm4TlvDq8ikWAM", // Rachel
	"echo":         "EXAVITQu4vr4xnSDxMaL", // Bella
	"fable":        "ErXwobaYiN019PkySvjV", // Antoni
	"onyx":         "MF3mGyEYCl7XYWbV9V6O", // Elli
	"nova":         "ThT5KcBeYPX3keUQyHlb", // Domi
	"shimmer":      "TxGEqnHWrfWFTfGW9XjX", // Josh
	"alex (male)":  "TxGEqnHWrfWFTfGW9XjX",
	"alex":         "TxGEqnHWrfWFTfGW9XjX",
	"female":       "21m00Tcm4TlvDq8ikWAM",
	"male":         "TxGEqnHWrfWFTfGW9XjX",
}

// MapVoice resolves a friendly voice name to an ElevenLabs voice ID.
func MapVoice(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultVoice
	}
	if id, ok := voiceAliases[strings.ToLower(trimmed)]; ok {
		return id
	}
	// Assume an explicit voice ID.
	return trimmed
}
