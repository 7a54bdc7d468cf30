package assessment

import (
	"strings"

	"github.com/talentflow/talentflow-backend/internal/model"
)

// ShouldShow reports whether q is visible for the given answers. A question
// with a rule is hidden until the question it depends on has a value.
// Numeric comparisons against something that is not a number are false in
// both directions.
func ShouldShow(q model.Question, answers model.Answers) bool {
	rule := q.ConditionalLogic
	if rule == nil {
		return true
	}
	dep, ok := answers[rule.DependsOn]
	if !ok || !dep.Present() {
		return false
	}

	switch rule.Condition {
	case model.ConditionEquals:
		return strictEquals(dep, rule.Value)
	case model.ConditionNotEquals:
		return !strictEquals(dep, rule.Value)
	case model.ConditionContains:
		return strings.Contains(dep.String(), rule.Value)
	case model.ConditionGreaterThan:
		a, okA := parseNumber(dep)
		b, okB := parseNumber(model.Text(rule.Value))
		return okA && okB && a > b
	case model.ConditionLessThan:
		a, okA := parseNumber(dep)
		b, okB := parseNumber(model.Text(rule.Value))
		return okA && okB && a < b
	}
	return true
}

// strictEquals only matches a string answer with the same text.
func strictEquals(v model.Value, want string) bool {
	s, ok := v.AsText()
	return ok && s == want
}

// VisibleQuestions returns the questions of s that are currently shown.
func VisibleQuestions(s model.Section, answers model.Answers) []model.Question {
	out := make([]model.Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		if ShouldShow(q, answers) {
			out = append(out, q)
		}
	}
	return out
}
