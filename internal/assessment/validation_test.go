package assessment

import (
	"errors"
	"testing"

	"github.com/talentflow/talentflow-backend/internal/model"
)

func float(f float64) *float64 { return &f }
func intp(n int) *int          { return &n }

func TestValidate(t *testing.T) {
	numeric := model.Question{ID: "n", Required: true, Spec: model.NumericSpec{Min: float(0), Max: float(10.5)}}
	text := model.Question{ID: "t", Spec: model.TextSpec{MaxLength: intp(5)}}
	choice := model.Question{ID: "c", Required: true, Spec: model.MultiChoiceSpec{Options: []string{"a"}}}

	cases := []struct {
		name string
		q    model.Question
		v    *model.Value
		want string
	}{
		{"required missing", numeric, nil, MsgRequired},
		{"required empty string", numeric, ptr(model.Text("")), MsgRequired},
		{"required empty list is answered", choice, ptr(model.List()), ""},
		{"zero is an answer", numeric, ptr(model.Number(0)), ""},
		{"not a number", numeric, ptr(model.Text("ten")), MsgInvalidNumber},
		{"infinity", numeric, ptr(model.Text("Inf")), MsgInvalidNumber},
		{"below min", numeric, ptr(model.Text("-1")), "Value must be at least 0"},
		{"above max", numeric, ptr(model.Number(11)), "Value must be at most 10.5"},
		{"in range", numeric, ptr(model.Text("7")), ""},
		{"optional empty", text, ptr(model.Text("")), ""},
		{"too long", text, ptr(model.Text("abcdef")), "Text must be no more than 5 characters"},
		{"counts characters", text, ptr(model.Text("héllo")), ""},
		{"choice answered", choice, ptr(model.List("a")), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answers := model.Answers{}
			if tc.v != nil {
				answers[tc.q.ID] = *tc.v
			}
			if got := Validate(tc.q, answers); got != tc.want {
				t.Fatalf("Validate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateAnswersCollectsAll(t *testing.T) {
	a := &model.Assessment{Sections: []model.Section{
		{ID: "s1", Questions: []model.Question{
			{ID: "q1", Required: true, Spec: model.SingleChoiceSpec{Options: []string{"Yes", "No"}}},
			{ID: "q2", Required: true, Spec: model.TextSpec{}},
		}},
		{ID: "s2", Questions: []model.Question{
			{ID: "q3", Spec: model.NumericSpec{Max: float(5)}},
		}},
	}}

	err := ValidateAnswers(a, model.Answers{"q3": model.Number(9)})
	var fe *FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FieldErrors", err)
	}
	if len(fe.Errors) != 3 {
		t.Fatalf("errors = %+v, want 3", fe.Errors)
	}
	if fe.Errors[2].SectionID != "s2" || fe.Errors[2].QuestionID != "q3" {
		t.Fatalf("last error = %+v", fe.Errors[2])
	}
}

func TestValidateAnswersSkipsHidden(t *testing.T) {
	a := &model.Assessment{Sections: []model.Section{{ID: "s1", Questions: []model.Question{
		{ID: "q1", Spec: model.SingleChoiceSpec{Options: []string{"Yes", "No"}}},
		{
			ID: "q2", Required: true, Spec: model.TextSpec{},
			ConditionalLogic: &model.ConditionalRule{DependsOn: "q1", Condition: model.ConditionEquals, Value: "Yes"},
		},
	}}}}

	if err := ValidateAnswers(a, model.Answers{"q1": model.Text("No")}); err != nil {
		t.Fatalf("hidden required question blocked submission: %v", err)
	}
	if err := ValidateAnswers(a, model.Answers{"q1": model.Text("Yes")}); err == nil {
		t.Fatal("visible required question must block submission")
	}
}
