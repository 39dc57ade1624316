package ws

import "github.com/hireloop/hireloop/pkg/interview"

// Outbound JSON events. Binary frames between audio_start and audio_end carry
// the synthesized speech itself (see pkg/speech).

// TranscriptEvent echoes the accepted transcript back to the client so the UI
// can render what the pipeline actually heard.
type TranscriptEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// QuestionEvent delivers the evaluation of the previous answer together with
// the next question.
type QuestionEvent struct {
	Type          string  `json:"type"`
	Question      string  `json:"question"`
	Feedback      string  `json:"feedback,omitempty"`
	Score         float64 `json:"score"`
	QuestionIndex int     `json:"question_index"`
}

// CompletedEvent is the terminal event of an interview. After its audio is
// streamed, the server closes the connection.
type CompletedEvent struct {
	Type          string             `json:"type"`
	ThanksMessage string             `json:"thanks_message"`
	Feedback      string             `json:"feedback,omitempty"`
	Score         float64            `json:"score"`
	OverallScore  float64            `json:"overall_score"`
	Summary       *interview.Summary `json:"summary,omitempty"`
}

// PongEvent answers a client ping.
type PongEvent struct {
	Type string `json:"type"`
}

// clientMessage is the envelope of inbound JSON control frames.
type clientMessage struct {
	Type string `json:"type"`
}
