package assessment

import (
	"errors"

	"github.com/talentflow/talentflow-backend/internal/model"
)

// Builder errors. ErrLastSection and ErrLastOption are guard rejections: the
// draft is left unchanged.
var (
	ErrLastSection       = errors.New("an assessment must keep at least one section")
	ErrLastOption        = errors.New("a choice question must keep at least one option")
	ErrSectionNotFound   = errors.New("section not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrNotChoiceQuestion = errors.New("question has no options")
	ErrOptionIndex       = errors.New("option index out of range")
)

// IsGuardRejection reports whether err is a rejected invariant-breaking edit.
func IsGuardRejection(err error) bool {
	return errors.Is(err, ErrLastSection) || errors.Is(err, ErrLastOption)
}

// BuilderState is the serializable form of a draft.
type BuilderState struct {
	Assessment      *model.Assessment `json:"assessment"`
	ActiveSectionID string            `json:"activeSectionId"`
}

// Builder owns a private copy of an assessment and applies structural edits
// to it. Every operation either succeeds completely or leaves the draft as
// it was. A Builder is not safe for concurrent use.
type Builder struct {
	draft  *model.Assessment
	active string
	newID  IDFunc
}

// NewBuilder starts a draft from a copy of a. The first section is active.
func NewBuilder(a *model.Assessment, newID IDFunc) *Builder {
	if newID == nil {
		newID = NewID
	}
	b := &Builder{draft: a.Clone(), newID: newID}
	if len(b.draft.Sections) > 0 {
		b.active = b.draft.Sections[0].ID
	}
	return b
}

// RestoreBuilder resumes a draft from its saved state.
func RestoreBuilder(st BuilderState, newID IDFunc) *Builder {
	b := NewBuilder(st.Assessment, newID)
	if b.sectionIndex(st.ActiveSectionID) >= 0 {
		b.active = st.ActiveSectionID
	}
	return b
}

// State returns a copy of the draft and its focus.
func (b *Builder) State() BuilderState {
	return BuilderState{Assessment: b.draft.Clone(), ActiveSectionID: b.active}
}

// Assessment returns a copy of the current draft.
func (b *Builder) Assessment() *model.Assessment { return b.draft.Clone() }

// ActiveSectionID returns the focused section.
func (b *Builder) ActiveSectionID() string { return b.active }

// Check runs the builder-time structure check on the draft.
func (b *Builder) Check() error { return CheckStructure(b.draft) }

// SetActive focuses a section.
func (b *Builder) SetActive(sectionID string) error {
	if b.sectionIndex(sectionID) < 0 {
		return ErrSectionNotFound
	}
	b.active = sectionID
	return nil
}

// AddSection appends an empty, auto-titled section and focuses it.
func (b *Builder) AddSection() model.Section {
	s := NewSection(b.newID(), len(b.draft.Sections)+1)
	b.draft.Sections = append(b.draft.Sections, s)
	b.active = s.ID
	return s.Clone()
}

// UpdateSection renames a section.
func (b *Builder) UpdateSection(sectionID, title string) error {
	i := b.sectionIndex(sectionID)
	if i < 0 {
		return ErrSectionNotFound
	}
	b.draft.Sections[i].Title = title
	return nil
}

// DeleteSection removes a section. The last section cannot be removed.
// Deleting the focused section focuses the first remaining one.
func (b *Builder) DeleteSection(sectionID string) error {
	i := b.sectionIndex(sectionID)
	if i < 0 {
		return ErrSectionNotFound
	}
	if len(b.draft.Sections) == 1 {
		return ErrLastSection
	}
	sections := make([]model.Section, 0, len(b.draft.Sections)-1)
	sections = append(sections, b.draft.Sections[:i]...)
	sections = append(sections, b.draft.Sections[i+1:]...)
	b.draft.Sections = sections
	if b.active == sectionID {
		b.active = sections[0].ID
	}
	return nil
}

// AddQuestion appends a default question of type t to one section.
func (b *Builder) AddQuestion(sectionID string, t model.QuestionType) (model.Question, error) {
	i := b.sectionIndex(sectionID)
	if i < 0 {
		return model.Question{}, ErrSectionNotFound
	}
	q, err := NewQuestion(b.newID(), t)
	if err != nil {
		return model.Question{}, err
	}
	b.draft.Sections[i].Questions = append(b.draft.Sections[i].Questions, q)
	return q.Clone(), nil
}

// UpdateQuestion replaces a question with the result of edit. The question
// id cannot change.
func (b *Builder) UpdateQuestion(sectionID, questionID string, edit func(model.Question) (model.Question, error)) (model.Question, error) {
	si, qi, err := b.locate(sectionID, questionID)
	if err != nil {
		return model.Question{}, err
	}
	next, err := edit(b.draft.Sections[si].Questions[qi].Clone())
	if err != nil {
		return model.Question{}, err
	}
	if next.Spec == nil {
		return model.Question{}, model.ErrInvalidQuestion
	}
	next.ID = questionID
	b.draft.Sections[si].Questions[qi] = next
	return next.Clone(), nil
}

// DeleteQuestion removes one question.
func (b *Builder) DeleteQuestion(sectionID, questionID string) error {
	si, qi, err := b.locate(sectionID, questionID)
	if err != nil {
		return err
	}
	qs := b.draft.Sections[si].Questions
	out := make([]model.Question, 0, len(qs)-1)
	out = append(out, qs[:qi]...)
	out = append(out, qs[qi+1:]...)
	b.draft.Sections[si].Questions = out
	return nil
}

// AddOption appends an option to a choice question.
func (b *Builder) AddOption(sectionID, questionID, text string) error {
	return b.editChoice(sectionID, questionID, func(c *choice) error {
		c.options = append(c.options, text)
		return nil
	})
}

// UpdateOption renames the option at index. A correct answer that pointed at
// the old text follows the rename.
func (b *Builder) UpdateOption(sectionID, questionID string, index int, text string) error {
	return b.editChoice(sectionID, questionID, func(c *choice) error {
		if index < 0 || index >= len(c.options) {
			return ErrOptionIndex
		}
		old := c.options[index]
		c.options[index] = text
		if !c.hasOption(old) {
			c.renameCorrect(old, text)
		}
		return nil
	})
}

// RemoveOption deletes the option at index. The last option cannot be
// removed. A correct answer naming the removed option is dropped.
func (b *Builder) RemoveOption(sectionID, questionID string, index int) error {
	return b.editChoice(sectionID, questionID, func(c *choice) error {
		if index < 0 || index >= len(c.options) {
			return ErrOptionIndex
		}
		if len(c.options) == 1 {
			return ErrLastOption
		}
		removed := c.options[index]
		c.options = append(c.options[:index], c.options[index+1:]...)
		if !c.hasOption(removed) {
			c.dropCorrect(removed)
		}
		return nil
	})
}

// ReorderOption moves the option at from to position to.
func (b *Builder) ReorderOption(sectionID, questionID string, from, to int) error {
	return b.editChoice(sectionID, questionID, func(c *choice) error {
		n := len(c.options)
		if from < 0 || from >= n || to < 0 || to >= n {
			return ErrOptionIndex
		}
		moved := c.options[from]
		c.options = append(c.options[:from], c.options[from+1:]...)
		c.options = append(c.options[:to], append([]string{moved}, c.options[to:]...)...)
		return nil
	})
}

// choice is a mutable view of the options and correct answers of a choice
// question.
type choice struct {
	options []string
	correct []string
}

func (c *choice) hasOption(s string) bool {
	for _, o := range c.options {
		if o == s {
			return true
		}
	}
	return false
}

func (c *choice) renameCorrect(old, text string) {
	for i, s := range c.correct {
		if s == old {
			c.correct[i] = text
		}
	}
}

func (c *choice) dropCorrect(s string) {
	out := c.correct[:0]
	for _, v := range c.correct {
		if v != s {
			out = append(out, v)
		}
	}
	c.correct = out
}

func (b *Builder) editChoice(sectionID, questionID string, fn func(*choice) error) error {
	si, qi, err := b.locate(sectionID, questionID)
	if err != nil {
		return err
	}
	q := b.draft.Sections[si].Questions[qi].Clone()

	var c choice
	switch spec := q.Spec.(type) {
	case model.SingleChoiceSpec:
		c.options = spec.Options
		if spec.CorrectAnswer != "" {
			c.correct = []string{spec.CorrectAnswer}
		}
	case model.MultiChoiceSpec:
		c.options, c.correct = spec.Options, spec.CorrectAnswers
	default:
		return ErrNotChoiceQuestion
	}
	if err := fn(&c); err != nil {
		return err
	}

	switch spec := q.Spec.(type) {
	case model.SingleChoiceSpec:
		spec.Options = c.options
		spec.CorrectAnswer = ""
		if len(c.correct) > 0 {
			spec.CorrectAnswer = c.correct[0]
		}
		q.Spec = spec
	case model.MultiChoiceSpec:
		spec.Options = c.options
		spec.CorrectAnswers = nil
		if len(c.correct) > 0 {
			spec.CorrectAnswers = c.correct
		}
		q.Spec = spec
	}
	b.draft.Sections[si].Questions[qi] = q
	return nil
}

func (b *Builder) sectionIndex(id string) int {
	for i, s := range b.draft.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (b *Builder) locate(sectionID, questionID string) (int, int, error) {
	si := b.sectionIndex(sectionID)
	if si < 0 {
		return 0, 0, ErrSectionNotFound
	}
	for qi, q := range b.draft.Sections[si].Questions {
		if q.ID == questionID {
			return si, qi, nil
		}
	}
	return 0, 0, ErrQuestionNotFound
}
