// Package assessment holds the rules of the assessment engine: question
// defaults, conditional visibility, field validation, builder-time structure
// checks, draft building and scoring. Everything here is pure and
// synchronous; persistence and transport live in other packages.
package assessment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// IDFunc produces globally unique ids for sections, questions and responses.
type IDFunc func() string

// Clock returns the current time.
type Clock func() time.Time

// NewID is the default IDFunc.
func NewID() string { return uuid.NewString() }

// Default text limits for new text questions.
const (
	DefaultShortTextMaxLength = 100
	DefaultLongTextMaxLength  = 1000
)

// DefaultSectionTitle returns the title given to the n-th section (1-based).
func DefaultSectionTitle(n int) string {
	return fmt.Sprintf("Section %d", n)
}

// NewQuestion returns a question of type t with the defaults a freshly added
// question gets: empty text, not required, and per-type constraints.
func NewQuestion(id string, t model.QuestionType) (model.Question, error) {
	q := model.Question{ID: id}
	switch t {
	case model.QuestionTypeSingleChoice:
		q.Spec = model.SingleChoiceSpec{Options: []string{""}}
	case model.QuestionTypeMultiChoice:
		q.Spec = model.MultiChoiceSpec{Options: []string{""}}
	case model.QuestionTypeShortText:
		n := DefaultShortTextMaxLength
		q.Spec = model.TextSpec{MaxLength: &n}
	case model.QuestionTypeLongText:
		n := DefaultLongTextMaxLength
		q.Spec = model.TextSpec{Long: true, MaxLength: &n}
	case model.QuestionTypeNumeric:
		q.Spec = model.NumericSpec{}
	case model.QuestionTypeFileUpload:
		q.Spec = model.FileUploadSpec{}
	default:
		return model.Question{}, fmt.Errorf("%w: unknown type %q", model.ErrInvalidQuestion, t)
	}
	return q, nil
}

// NewSection returns an empty section titled for position n (1-based).
func NewSection(id string, n int) model.Section {
	return model.Section{ID: id, Title: DefaultSectionTitle(n), Questions: []model.Question{}}
}

// parseNumber reads an answer as a finite or infinite float. Strings are
// trimmed and parsed strictly; empty strings and lists are not numbers.
func parseNumber(v model.Value) (float64, bool) {
	switch v.Kind() {
	case model.ValueNumber:
		f, _ := v.AsNumber()
		return f, !math.IsNaN(f)
	case model.ValueText:
		s, _ := v.AsText()
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !isRangeErr(err) {
			return 0, false
		}
		return f, !math.IsNaN(f)
	}
	return 0, false
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
