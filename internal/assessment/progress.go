package assessment

import "github.com/talentflow/talentflow-backend/internal/model"

// Progress returns the answered share of all questions as a rounded
// percentage. Hidden questions count toward the total.
func Progress(a *model.Assessment, answers model.Answers) int {
	total, answered := 0, 0
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			total++
			if !answers[q.ID].IsEmpty() {
				answered++
			}
		}
	}
	return Percentage(float64(answered), float64(total))
}
