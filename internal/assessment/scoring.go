package assessment

import (
	"math"
	"unicode/utf8"

	"github.com/talentflow/talentflow-backend/internal/model"
)

// unkeyedCredit is the credit for answering a choice question that has no
// correct answer configured.
const unkeyedCredit = 0.5

// ScoreQuestion returns the fractional credit in [0,1] for one answer.
func ScoreQuestion(q model.Question, v model.Value) float64 {
	if v.IsEmpty() {
		return 0
	}

	switch spec := q.Spec.(type) {
	case model.SingleChoiceSpec:
		if spec.CorrectAnswer == "" {
			return unkeyedCredit
		}
		if s, ok := v.AsText(); ok && s == spec.CorrectAnswer {
			return 1
		}
		return 0

	case model.MultiChoiceSpec:
		selected, ok := v.AsList()
		if !ok {
			return 0
		}
		if len(spec.CorrectAnswers) == 0 {
			return unkeyedCredit
		}
		chosen := make(map[string]struct{}, len(selected))
		for _, s := range selected {
			chosen[s] = struct{}{}
		}
		hits := 0
		for _, c := range spec.CorrectAnswers {
			if _, ok := chosen[c]; ok {
				hits++
			}
		}
		// Extra wrong selections are not penalized.
		return float64(hits) / float64(len(spec.CorrectAnswers))

	case model.TextSpec:
		return textCredit(utf8.RuneCountInString(v.String()))

	case model.NumericSpec:
		n, ok := parseNumber(v)
		if !ok {
			return 0
		}
		if spec.Min == nil || spec.Max == nil {
			return 1
		}
		lo, hi := *spec.Min, *spec.Max
		if hi == lo {
			if n >= hi {
				return 1
			}
			return 0
		}
		return clamp01((n - lo) / (hi - lo))
	}
	return 1
}

// textCredit scores free text by length only.
func textCredit(n int) float64 {
	switch {
	case n == 0:
		return 0
	case n < 5:
		return 0.2
	case n < 10:
		return 0.5
	case n < 20:
		return 0.7
	}
	return 1
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}

// Score computes the per-question, per-section and overall breakdown of a
// response. Every question is worth one point.
func Score(a *model.Assessment, answers model.Answers) model.ScoreResult {
	res := model.ScoreResult{
		PerQuestion: make(map[string]float64, a.QuestionCount()),
		PerSection:  make(map[string]model.SectionScore, len(a.Sections)),
	}
	var total, possible float64
	for _, s := range a.Sections {
		var sum float64
		for _, q := range s.Questions {
			credit := ScoreQuestion(q, answers[q.ID])
			res.PerQuestion[q.ID] = credit
			sum += credit
		}
		sectionMax := float64(len(s.Questions))
		res.PerSection[s.ID] = model.SectionScore{
			Score:      sum,
			MaxScore:   sectionMax,
			Percentage: Percentage(sum, sectionMax),
		}
		total += sum
		possible += sectionMax
	}
	res.Overall = model.SectionScore{Score: total, MaxScore: possible, Percentage: Percentage(total, possible)}
	return res
}

// Percentage returns round(100 * part / whole), rounding halves up, and 0
// when whole is zero.
func Percentage(part, whole float64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Floor(part/whole*100 + 0.5))
}
