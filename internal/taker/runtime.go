package taker

import (
	"context"
	"errors"

	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// ErrNotLastSection is returned when submit is attempted before the last
// section.
var ErrNotLastSection = errors.New("submit is only available on the last section")

// Mode selects when field validation is shown.
type Mode int

const (
	// ModeTaker validates only at submit.
	ModeTaker Mode = iota
	// ModePreview validates on every render while validation is toggled on.
	ModePreview
)

// QuestionView is one rendered question.
type QuestionView struct {
	Question model.Question `json:"question"`
	Answer   *model.Value   `json:"answer,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// View is what the form renders for the current section.
type View struct {
	SectionIndex int            `json:"sectionIndex"`
	SectionCount int            `json:"sectionCount"`
	SectionID    string         `json:"sectionId"`
	SectionTitle string         `json:"sectionTitle"`
	Questions    []QuestionView `json:"questions"`
	Progress     int            `json:"progress"`
	CanPrevious  bool           `json:"canPrevious"`
	CanNext      bool           `json:"canNext"`
	CanSubmit    bool           `json:"canSubmit"`
	Submitted    bool           `json:"submitted"`
}

// Runtime walks an assessment section by section on top of a Store.
// Navigation never touches answers.
type Runtime struct {
	store          *Store
	mode           Mode
	section        int
	showValidation bool
}

// NewRuntime returns a runtime positioned on the first section. Preview
// runtimes start with validation shown.
func NewRuntime(store *Store, mode Mode) *Runtime {
	return &Runtime{store: store, mode: mode, showValidation: mode == ModePreview}
}

// Store returns the underlying answer store.
func (r *Runtime) Store() *Store { return r.store }

// SetShowValidation toggles continuous validation in preview mode. It has
// no effect in taker mode.
func (r *Runtime) SetShowValidation(on bool) {
	if r.mode == ModePreview {
		r.showValidation = on
	}
}

// SectionIndex returns the current section index.
func (r *Runtime) SectionIndex() int { return r.section }

// GoTo moves to section i, clamped to the valid range.
func (r *Runtime) GoTo(i int) {
	n := r.sectionCount()
	switch {
	case n == 0 || i < 0:
		r.section = 0
	case i >= n:
		r.section = n - 1
	default:
		r.section = i
	}
}

// Next advances one section. It is a no-op on the last section.
func (r *Runtime) Next() bool {
	if !r.CanNext() {
		return false
	}
	r.section++
	return true
}

// Previous goes back one section. It is a no-op on the first section.
func (r *Runtime) Previous() bool {
	if !r.CanPrevious() {
		return false
	}
	r.section--
	return true
}

// CanNext reports whether a later section exists.
func (r *Runtime) CanNext() bool { return r.section < r.sectionCount()-1 }

// CanPrevious reports whether an earlier section exists.
func (r *Runtime) CanPrevious() bool { return r.section > 0 }

// CanSubmit reports whether the runtime is on the last section of an
// attempt that is still open.
func (r *Runtime) CanSubmit() bool {
	return r.sectionCount() > 0 && !r.CanNext() && !r.store.Submitted()
}

// Answer records an answer.
func (r *Runtime) Answer(questionID string, v model.Value) error {
	return r.store.SetAnswer(questionID, v)
}

// Submit submits the attempt from the last section.
func (r *Runtime) Submit(ctx context.Context) (string, error) {
	if r.CanNext() {
		return "", ErrNotLastSection
	}
	return r.store.Submit(ctx)
}

// View renders the current section. Visibility is evaluated on every call.
// The section index is clamped first since the store may have been
// restarted on a shorter assessment.
func (r *Runtime) View() View {
	r.GoTo(r.section)
	a := r.store.Assessment()
	answers := r.store.Answers()
	v := View{
		SectionIndex: r.section,
		SectionCount: r.sectionCount(),
		Progress:     r.store.Progress(),
		CanPrevious:  r.CanPrevious(),
		CanNext:      r.CanNext(),
		CanSubmit:    r.CanSubmit(),
		Submitted:    r.store.Submitted(),
		Questions:    []QuestionView{},
	}
	if a == nil || len(a.Sections) == 0 {
		return v
	}

	s := a.Sections[r.section]
	v.SectionID, v.SectionTitle = s.ID, s.Title
	for _, q := range assessment.VisibleQuestions(s, answers) {
		qv := QuestionView{Question: q}
		if ans, ok := answers[q.ID]; ok {
			ans := ans
			qv.Answer = &ans
		}
		if r.mode == ModePreview && r.showValidation {
			qv.Error = assessment.Validate(q, answers)
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

func (r *Runtime) sectionCount() int {
	a := r.store.Assessment()
	if a == nil {
		return 0
	}
	return len(a.Sections)
}
