package assessment

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/talentflow/talentflow-backend/internal/model"
)

// Field validation messages.
const (
	MsgRequired      = "This field is required"
	MsgInvalidNumber = "Please enter a valid number"
)

// FieldError is a failed taker-time check on one question.
type FieldError struct {
	SectionID  string `json:"sectionId"`
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
}

// FieldErrors collects every field error found at submit.
type FieldErrors struct {
	Errors []FieldError
}

func (e *FieldErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.QuestionID + ": " + fe.Message
	}
	return fmt.Sprintf("%d field(s) invalid: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Validate checks one question against the answers and returns the first
// failing message, or "" when the answer is acceptable. Callers only
// validate visible questions.
func Validate(q model.Question, answers model.Answers) string {
	v := answers[q.ID]
	if q.Required && v.IsEmpty() {
		return MsgRequired
	}
	if v.IsEmpty() {
		return ""
	}

	switch spec := q.Spec.(type) {
	case model.NumericSpec:
		n, ok := parseNumber(v)
		if !ok || math.IsInf(n, 0) {
			return MsgInvalidNumber
		}
		if spec.Min != nil && n < *spec.Min {
			return "Value must be at least " + formatNumber(*spec.Min)
		}
		if spec.Max != nil && n > *spec.Max {
			return "Value must be at most " + formatNumber(*spec.Max)
		}
	case model.TextSpec:
		if spec.MaxLength != nil && *spec.MaxLength > 0 && utf8.RuneCountInString(v.String()) > *spec.MaxLength {
			return fmt.Sprintf("Text must be no more than %d characters", *spec.MaxLength)
		}
	}
	return ""
}

// ValidateSection returns the errors of the visible questions of s.
func ValidateSection(s model.Section, answers model.Answers) []FieldError {
	var out []FieldError
	for _, q := range s.Questions {
		if !ShouldShow(q, answers) {
			continue
		}
		if msg := Validate(q, answers); msg != "" {
			out = append(out, FieldError{SectionID: s.ID, QuestionID: q.ID, Message: msg})
		}
	}
	return out
}

// ValidateAnswers validates every visible question of the assessment and
// returns all failures together as *FieldErrors, or nil.
func ValidateAnswers(a *model.Assessment, answers model.Answers) error {
	var all []FieldError
	for _, s := range a.Sections {
		all = append(all, ValidateSection(s, answers)...)
	}
	if len(all) == 0 {
		return nil
	}
	return &FieldErrors{Errors: all}
}
