package assessment

import (
	"fmt"
	"strings"

	"github.com/talentflow/talentflow-backend/internal/model"
)

// Structure issue texts.
const (
	IssueMissingText   = "Missing question text"
	IssueMissingAnswer = "Missing correct answer"
	IssueDuplicateID   = "Duplicate id"
	IssueBadDependency = "Depends on an unknown question"
	untitledQuestion   = "Untitled Question"
)

// StructureIssue locates one builder-time defect.
type StructureIssue struct {
	SectionID  string `json:"sectionId"`
	QuestionID string `json:"questionId"`
	Section    string `json:"section"`
	Question   string `json:"question"`
	Issue      string `json:"issue"`
}

// StructureError blocks saving an assessment that is not structurally valid.
type StructureError struct {
	Issues []StructureIssue
}

func (e *StructureError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = fmt.Sprintf("%s / %s: %s", is.Section, is.Question, is.Issue)
	}
	return "assessment is not valid: " + strings.Join(parts, "; ")
}

// CheckStructure returns *StructureError listing every structural defect,
// or nil. Sections sharing an id are reported once each with no question.
// Each question is reported once, in this order of precedence: empty text,
// an id used elsewhere, a rule depending on itself or on no known question,
// a choice question without a correct answer.
func CheckStructure(a *model.Assessment) error {
	sectionIDs := make(map[string]int)
	questionIDs := make(map[string]int)
	for _, s := range a.Sections {
		sectionIDs[s.ID]++
		for _, q := range s.Questions {
			questionIDs[q.ID]++
		}
	}

	var issues []StructureIssue
	for _, s := range a.Sections {
		if sectionIDs[s.ID] > 1 {
			issues = append(issues, StructureIssue{SectionID: s.ID, Section: s.Title, Issue: IssueDuplicateID})
		}
		for _, q := range s.Questions {
			var issue string
			switch {
			case strings.TrimSpace(q.Text) == "":
				issue = IssueMissingText
			case questionIDs[q.ID] > 1:
				issue = IssueDuplicateID
			case q.ConditionalLogic != nil && (q.ConditionalLogic.DependsOn == q.ID || questionIDs[q.ConditionalLogic.DependsOn] == 0):
				issue = IssueBadDependency
			case !hasCorrectAnswer(q):
				issue = IssueMissingAnswer
			default:
				continue
			}
			label := q.Text
			if label == "" {
				label = untitledQuestion
			}
			issues = append(issues, StructureIssue{
				SectionID:  s.ID,
				QuestionID: q.ID,
				Section:    s.Title,
				Question:   label,
				Issue:      issue,
			})
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return &StructureError{Issues: issues}
}

func hasCorrectAnswer(q model.Question) bool {
	switch spec := q.Spec.(type) {
	case model.SingleChoiceSpec:
		return strings.TrimSpace(spec.CorrectAnswer) != ""
	case model.MultiChoiceSpec:
		return len(spec.CorrectAnswers) > 0
	}
	return true
}
