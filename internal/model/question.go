package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidQuestion is returned when a question's fields do not fit its type.
var ErrInvalidQuestion = errors.New("invalid question")

// QuestionType is the tag of the question variant.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "single-choice"
	QuestionTypeMultiChoice  QuestionType = "multi-choice"
	QuestionTypeShortText    QuestionType = "short-text"
	QuestionTypeLongText     QuestionType = "long-text"
	QuestionTypeNumeric      QuestionType = "numeric"
	QuestionTypeFileUpload   QuestionType = "file-upload"
)

// QuestionTypes is the canonical, ordered list of question type tags.
var QuestionTypes = []QuestionType{
	QuestionTypeSingleChoice,
	QuestionTypeMultiChoice,
	QuestionTypeShortText,
	QuestionTypeLongText,
	QuestionTypeNumeric,
	QuestionTypeFileUpload,
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// QuestionSpec is the type-specific payload of a question. The set of
// implementations is closed: SingleChoiceSpec, MultiChoiceSpec, TextSpec,
// NumericSpec and FileUploadSpec.
type QuestionSpec interface {
	Kind() QuestionType
	clone() QuestionSpec
}

// SingleChoiceSpec holds the options of a single-choice question.
type SingleChoiceSpec struct {
	Options       []string
	CorrectAnswer string
}

// MultiChoiceSpec holds the options of a multi-choice question.
type MultiChoiceSpec struct {
	Options        []string
	CorrectAnswers []string
}

// TextSpec covers short-text and long-text questions.
type TextSpec struct {
	Long      bool
	MaxLength *int
}

// NumericSpec bounds a numeric answer.
type NumericSpec struct {
	Min *float64
	Max *float64
}

// FileUploadSpec has no constraints.
type FileUploadSpec struct{}

func (SingleChoiceSpec) Kind() QuestionType { return QuestionTypeSingleChoice }
func (MultiChoiceSpec) Kind() QuestionType  { return QuestionTypeMultiChoice }
func (NumericSpec) Kind() QuestionType      { return QuestionTypeNumeric }
func (FileUploadSpec) Kind() QuestionType   { return QuestionTypeFileUpload }

func (s TextSpec) Kind() QuestionType {
	if s.Long {
		return QuestionTypeLongText
	}
	return QuestionTypeShortText
}

func (s SingleChoiceSpec) clone() QuestionSpec {
	s.Options = cloneStrings(s.Options)
	return s
}

func (s MultiChoiceSpec) clone() QuestionSpec {
	s.Options = cloneStrings(s.Options)
	s.CorrectAnswers = cloneStrings(s.CorrectAnswers)
	return s
}

func (s TextSpec) clone() QuestionSpec {
	if s.MaxLength != nil {
		n := *s.MaxLength
		s.MaxLength = &n
	}
	return s
}

func (s NumericSpec) clone() QuestionSpec {
	if s.Min != nil {
		v := *s.Min
		s.Min = &v
	}
	if s.Max != nil {
		v := *s.Max
		s.Max = &v
	}
	return s
}

func (s FileUploadSpec) clone() QuestionSpec { return s }

// ConditionOperator is the comparison used by a conditional rule.
type ConditionOperator string

const (
	ConditionEquals      ConditionOperator = "equals"
	ConditionNotEquals   ConditionOperator = "not-equals"
	ConditionContains    ConditionOperator = "contains"
	ConditionGreaterThan ConditionOperator = "greater-than"
	ConditionLessThan    ConditionOperator = "less-than"
)

// Valid reports whether op is a known operator.
func (op ConditionOperator) Valid() bool {
	switch op {
	case ConditionEquals, ConditionNotEquals, ConditionContains, ConditionGreaterThan, ConditionLessThan:
		return true
	}
	return false
}

// ConditionalRule shows a question only when a prior answer matches.
type ConditionalRule struct {
	DependsOn string            `json:"dependsOn"`
	Condition ConditionOperator `json:"condition"`
	Value     string            `json:"value"`
}

// Question is one assessment question. Spec carries the fields that only
// make sense for the question's type.
type Question struct {
	ID               string
	Text             string
	Required         bool
	ConditionalLogic *ConditionalRule
	Spec             QuestionSpec
}

// Type returns the question's type tag.
func (q Question) Type() QuestionType {
	if q.Spec == nil {
		return ""
	}
	return q.Spec.Kind()
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	if q.ConditionalLogic != nil {
		rule := *q.ConditionalLogic
		out.ConditionalLogic = &rule
	}
	if q.Spec != nil {
		out.Spec = q.Spec.clone()
	}
	return out
}

// Options returns the options of a choice question, or nil.
func (q Question) Options() []string {
	switch s := q.Spec.(type) {
	case SingleChoiceSpec:
		return s.Options
	case MultiChoiceSpec:
		return s.Options
	}
	return nil
}

// questionJSON is the flat wire shape shared by every question type.
type questionJSON struct {
	ID               string           `json:"id"`
	Type             QuestionType     `json:"type"`
	Question         string           `json:"question"`
	Required         bool             `json:"required"`
	Options          []string         `json:"options,omitempty"`
	Min              *float64         `json:"min,omitempty"`
	Max              *float64         `json:"max,omitempty"`
	MaxLength        *int             `json:"maxLength,omitempty"`
	CorrectAnswer    *string          `json:"correctAnswer,omitempty"`
	CorrectAnswers   []string         `json:"correctAnswers,omitempty"`
	ConditionalLogic *ConditionalRule `json:"conditionalLogic,omitempty"`
}

// MarshalJSON flattens the question into its wire shape.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:               q.ID,
		Type:             q.Type(),
		Question:         q.Text,
		Required:         q.Required,
		ConditionalLogic: q.ConditionalLogic,
	}
	switch s := q.Spec.(type) {
	case SingleChoiceSpec:
		out.Options = nonNilStrings(s.Options)
		if s.CorrectAnswer != "" {
			answer := s.CorrectAnswer
			out.CorrectAnswer = &answer
		}
	case MultiChoiceSpec:
		out.Options = nonNilStrings(s.Options)
		out.CorrectAnswers = s.CorrectAnswers
	case TextSpec:
		out.MaxLength = s.MaxLength
	case NumericSpec:
		out.Min, out.Max = s.Min, s.Max
	case FileUploadSpec:
	default:
		return nil, fmt.Errorf("%w: question %q has no type", ErrInvalidQuestion, q.ID)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the flat wire shape and rejects fields that do not
// belong to the declared type.
func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	spec, err := specFromWire(in)
	if err != nil {
		return err
	}
	if in.ConditionalLogic != nil && !in.ConditionalLogic.Condition.Valid() {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidQuestion, in.ConditionalLogic.Condition)
	}
	*q = Question{
		ID:               in.ID,
		Text:             in.Question,
		Required:         in.Required,
		ConditionalLogic: in.ConditionalLogic,
		Spec:             spec,
	}
	return nil
}

func specFromWire(in questionJSON) (QuestionSpec, error) {
	reject := func(field string) error {
		return fmt.Errorf("%w: %q is not allowed on a %s question", ErrInvalidQuestion, field, in.Type)
	}
	numeric := in.Min != nil || in.Max != nil
	choice := in.Options != nil

	switch in.Type {
	case QuestionTypeSingleChoice:
		switch {
		case numeric:
			return nil, reject("min/max")
		case in.MaxLength != nil:
			return nil, reject("maxLength")
		case in.CorrectAnswers != nil:
			return nil, reject("correctAnswers")
		}
		spec := SingleChoiceSpec{Options: nonNilStrings(in.Options)}
		if in.CorrectAnswer != nil {
			spec.CorrectAnswer = *in.CorrectAnswer
		}
		return spec, nil
	case QuestionTypeMultiChoice:
		switch {
		case numeric:
			return nil, reject("min/max")
		case in.MaxLength != nil:
			return nil, reject("maxLength")
		case in.CorrectAnswer != nil:
			return nil, reject("correctAnswer")
		}
		return MultiChoiceSpec{Options: nonNilStrings(in.Options), CorrectAnswers: in.CorrectAnswers}, nil
	case QuestionTypeShortText, QuestionTypeLongText:
		switch {
		case numeric:
			return nil, reject("min/max")
		case choice:
			return nil, reject("options")
		case in.CorrectAnswer != nil || in.CorrectAnswers != nil:
			return nil, reject("correct answer")
		case in.MaxLength != nil && *in.MaxLength < 0:
			return nil, fmt.Errorf("%w: maxLength must not be negative", ErrInvalidQuestion)
		}
		return TextSpec{Long: in.Type == QuestionTypeLongText, MaxLength: in.MaxLength}, nil
	case QuestionTypeNumeric:
		switch {
		case choice:
			return nil, reject("options")
		case in.MaxLength != nil:
			return nil, reject("maxLength")
		case in.CorrectAnswer != nil || in.CorrectAnswers != nil:
			return nil, reject("correct answer")
		}
		return NumericSpec{Min: in.Min, Max: in.Max}, nil
	case QuestionTypeFileUpload:
		if numeric || choice || in.MaxLength != nil || in.CorrectAnswer != nil || in.CorrectAnswers != nil {
			return nil, reject("constraint fields")
		}
		return FileUploadSpec{}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, in.Type)
}

// MergeQuestionJSON overlays a partial wire object onto q. Keys set to null
// are removed. The result is decoded and validated like any other question,
// so the patch cannot change the question id or produce an invalid shape.
func MergeQuestionJSON(q Question, patch []byte) (Question, error) {
	base, err := json.Marshal(q)
	if err != nil {
		return Question{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return Question{}, err
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	for k, v := range overlay {
		if k == "id" {
			continue
		}
		if string(v) == "null" {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return Question{}, err
	}
	var out Question
	if err := json.Unmarshal(merged, &out); err != nil {
		return Question{}, err
	}
	return out, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
