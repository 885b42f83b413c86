package protocol

import "time"

// AlignRequest asks the engine to align one recorded utterance.
type AlignRequest struct {
	RequestID string    `json:"request_id"`
	SessionID string    `json:"session_id,omitempty"`
	AudioPath string    `json:"audio_path"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// MouthCue is one viseme interval on the wire.
type MouthCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Shape string  `json:"shape"`
}

// AlignResult carries the refined viseme track back to callers.
type AlignResult struct {
	RequestID string     `json:"request_id"`
	SessionID string     `json:"session_id,omitempty"`
	Duration  float64    `json:"duration"`
	Cues      []MouthCue `json:"cues"`
	Strategy  string     `json:"strategy"`
	Tier      string     `json:"tier"`
	Rationale []string   `json:"rationale,omitempty"`
	Error     string     `json:"error,omitempty"`
	ErrorKind string     `json:"error_kind,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// StrategyReport explains which pipeline a given input would take,
// without touching any audio.
type StrategyReport struct {
	RequestID    string   `json:"request_id"`
	Category     string   `json:"category"`
	Language     string   `json:"language"`
	Tiers        []string `json:"tiers"`
	AccuracyBand string   `json:"accuracy_band"`
	Rationale    []string `json:"rationale"`
}

const (
	SubjectAlignRequest    = "align.request"
	SubjectAlignResult     = "align.result"
	SubjectStrategyRequest = "align.strategy.request"
	SubjectStrategyReport  = "align.strategy.report"
)
