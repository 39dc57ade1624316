package errorsx

// ReasonCode is a short machine-readable error reason. Codes travel on
// client-facing error events, so they must stay stable.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonSTTTranscribe ReasonCode = "stt_transcribe"
	ReasonSTTNoSpeech   ReasonCode = "stt_no_speech"

	ReasonLLMGenerate ReasonCode = "llm_generate"
	ReasonLLMParse    ReasonCode = "llm_parse"

	ReasonTTSSynthesize ReasonCode = "tts_synthesize"

	ReasonTransportSend ReasonCode = "transport_send"

	ReasonSessionNotFound  ReasonCode = "session_not_found"
	ReasonSessionCompleted ReasonCode = "session_completed"
	ReasonSessionNotReady  ReasonCode = "session_not_ready"
	ReasonTurnTimeout      ReasonCode = "turn_timeout"

	ReasonResumeExtract ReasonCode = "resume_extract"
	ReasonResultPersist ReasonCode = "result_persist"
)
