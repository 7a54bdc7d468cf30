package model

import (
	"encoding/json"
	"time"
)

// Assessment is a questionnaire owned by a job. Sections are ordered by
// position.
type Assessment struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Section is an ordered group of questions.
type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Clone returns a deep copy of the assessment.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	out := *a
	out.Sections = make([]Section, len(a.Sections))
	for i, s := range a.Sections {
		out.Sections[i] = s.Clone()
	}
	return &out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// QuestionCount returns the number of questions across all sections.
func (a *Assessment) QuestionCount() int {
	n := 0
	for _, s := range a.Sections {
		n += len(s.Questions)
	}
	return n
}

// FindQuestion returns the question with the given id.
func (a *Assessment) FindQuestion(id string) (Question, bool) {
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// AssessmentSummary is the list view of an assessment.
type AssessmentSummary struct {
	ID            string    `json:"id"`
	JobID         string    `json:"jobId"`
	Title         string    `json:"title"`
	SectionCount  int       `json:"sectionCount"`
	QuestionCount int       `json:"questionCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summary returns the list view of a.
func (a *Assessment) Summary() AssessmentSummary {
	return AssessmentSummary{
		ID:            a.ID,
		JobID:         a.JobID,
		Title:         a.Title,
		SectionCount:  len(a.Sections),
		QuestionCount: a.QuestionCount(),
		UpdatedAt:     a.UpdatedAt,
	}
}

// CreateAssessmentRequest is the payload for creating an assessment.
// Sections is optional; an empty assessment gets one default section.
type CreateAssessmentRequest struct {
	Title    string    `json:"title" binding:"required,min=3,max=255"`
	Sections []Section `json:"sections" binding:"omitempty"`
}

// ReplaceAssessmentRequest replaces the whole document.
type ReplaceAssessmentRequest struct {
	Title    string    `json:"title" binding:"required,min=3,max=255"`
	Sections []Section `json:"sections" binding:"required,min=1"`
}

// PatchAssessmentRequest updates the title and/or the sections.
type PatchAssessmentRequest struct {
	Title    *string    `json:"title" binding:"omitempty,min=3,max=255"`
	Sections *[]Section `json:"sections" binding:"omitempty"`
}

// UpdateSectionRequest patches a section.
type UpdateSectionRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// AddQuestionRequest adds a question of the given type.
type AddQuestionRequest struct {
	Type QuestionType `json:"type" binding:"required,question_type"`
}

// UpdateQuestionRequest carries a partial question in wire shape.
type UpdateQuestionRequest struct {
	Patch json.RawMessage
}

// OptionRequest adds or renames an option.
type OptionRequest struct {
	Text string `json:"text" binding:"max=500"`
}

// ReorderOptionRequest moves the option at From to To.
type ReorderOptionRequest struct {
	From *int `json:"from" binding:"required,min=0"`
	To   *int `json:"to" binding:"required,min=0"`
}

// PreviewRequest asks for the rendered state of an assessment for a set of
// answers.
type PreviewRequest struct {
	Responses      Answers `json:"responses"`
	SectionIndex   int     `json:"sectionIndex" binding:"min=0"`
	ShowValidation bool    `json:"showValidation"`
}
