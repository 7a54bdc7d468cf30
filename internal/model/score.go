package model

import "time"

// SectionScore is the aggregate score of one section. Each question is
// worth one point.
type SectionScore struct {
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Percentage int     `json:"percentage"`
}

// ScoreResult is the scoring breakdown of a response.
type ScoreResult struct {
	PerQuestion map[string]float64      `json:"perQuestion"`
	PerSection  map[string]SectionScore `json:"perSection"`
	Overall     SectionScore            `json:"overall"`
}

// ScoredResponse pairs a response with its score for the results view.
type ScoredResponse struct {
	ResponseID  string      `json:"responseId"`
	CandidateID string      `json:"candidateId"`
	SubmittedAt *time.Time  `json:"submittedAt,omitempty"`
	Score       ScoreResult `json:"score"`
}

// StoredScore is a persisted score.
type StoredScore struct {
	ResponseID string      `json:"responseId"`
	Result     ScoreResult `json:"result"`
	ScoredAt   time.Time   `json:"scoredAt"`
}
