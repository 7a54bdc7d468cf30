package model

import "time"

// AssessmentResponse is one candidate's attempt at an assessment. A nil
// SubmittedAt marks a draft; once set the response is terminal.
type AssessmentResponse struct {
	ID           string     `json:"id"`
	AssessmentID string     `json:"assessmentId"`
	CandidateID  string     `json:"candidateId"`
	Responses    Answers    `json:"responses"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Submitted reports whether the response is terminal.
func (r *AssessmentResponse) Submitted() bool { return r != nil && r.SubmittedAt != nil }

// CreateInviteRequest issues a candidate token for an assessment.
type CreateInviteRequest struct {
	CandidateID string `json:"candidate_id" binding:"required,min=1,max=100"`
}

// InviteResponse carries the candidate token.
type InviteResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
