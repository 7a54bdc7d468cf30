package assessment

import (
	"math"
	"testing"

	"github.com/talentflow/talentflow-backend/internal/model"
)

func TestScoreQuestion(t *testing.T) {
	single := model.Question{Spec: model.SingleChoiceSpec{Options: []string{"A", "B"}, CorrectAnswer: "B"}}
	unkeyed := model.Question{Spec: model.SingleChoiceSpec{Options: []string{"A", "B"}}}
	multi := model.Question{Spec: model.MultiChoiceSpec{Options: []string{"A", "B", "C", "D"}, CorrectAnswers: []string{"A", "B", "C"}}}
	multiUnkeyed := model.Question{Spec: model.MultiChoiceSpec{Options: []string{"A"}}}
	ranged := model.Question{Spec: model.NumericSpec{Min: float(0), Max: float(10)}}
	open := model.Question{Spec: model.NumericSpec{Min: float(0)}}
	text := model.Question{Spec: model.TextSpec{Long: true}}
	file := model.Question{Spec: model.FileUploadSpec{}}

	cases := []struct {
		name string
		q    model.Question
		v    model.Value
		want float64
	}{
		{"no answer", single, model.Value{}, 0},
		{"single correct", single, model.Text("B"), 1},
		{"single wrong", single, model.Text("A"), 0},
		{"single unkeyed", unkeyed, model.Text("A"), 0.5},
		{"multi partial", multi, model.List("A", "B"), 2.0 / 3.0},
		{"multi extra wrong", multi, model.List("A", "B", "D"), 2.0 / 3.0},
		{"multi all", multi, model.List("C", "B", "A"), 1},
		{"multi not a list", multi, model.Text("A"), 0},
		{"multi unkeyed", multiUnkeyed, model.List("A"), 0.5},
		{"multi empty selection", multi, model.List(), 0},
		{"multi unkeyed empty selection", multiUnkeyed, model.List(), 0.5},
		{"numeric mid", ranged, model.Text("5"), 0.5},
		{"numeric below", ranged, model.Number(-5), 0},
		{"numeric above", ranged, model.Number(15), 1},
		{"numeric unparsable", ranged, model.Text("x"), 0},
		{"numeric open range", open, model.Number(99), 1},
		{"text short", text, model.Text("abc"), 0.2},
		{"text 5", text, model.Text("abcde"), 0.5},
		{"text 10", text, model.Text("abcdefghij"), 0.7},
		{"text 20", text, model.Text("abcdefghijklmnopqrst"), 1},
		{"file", file, model.Text("/uploads/cv.pdf"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreQuestion(tc.q, tc.v)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreAggregation(t *testing.T) {
	keyed := func(id string) model.Question {
		return model.Question{ID: id, Spec: model.SingleChoiceSpec{Options: []string{"A", "B"}, CorrectAnswer: "A"}}
	}
	a := &model.Assessment{Sections: []model.Section{
		{ID: "s1", Questions: []model.Question{keyed("q1"), keyed("q2")}},
		{ID: "s2", Questions: []model.Question{keyed("q3"), keyed("q4")}},
	}}

	all := model.Answers{"q1": model.Text("A"), "q2": model.Text("A"), "q3": model.Text("A"), "q4": model.Text("A")}
	if got := Score(a, all).Overall.Percentage; got != 100 {
		t.Fatalf("overall = %d, want 100", got)
	}

	all["q4"] = model.Text("B")
	res := Score(a, all)
	if res.Overall.Percentage != 75 || res.Overall.Score != 3 || res.Overall.MaxScore != 4 {
		t.Fatalf("overall = %+v, want 3/4 = 75%%", res.Overall)
	}
	if res.PerSection["s2"].Percentage != 50 {
		t.Fatalf("s2 = %+v", res.PerSection["s2"])
	}
	if res.PerQuestion["q4"] != 0 {
		t.Fatalf("q4 = %v", res.PerQuestion["q4"])
	}
}

func TestScoreEmptyAssessment(t *testing.T) {
	a := &model.Assessment{Sections: []model.Section{{ID: "s1"}}}
	res := Score(a, nil)
	if res.Overall.Percentage != 0 || res.PerSection["s1"].Percentage != 0 {
		t.Fatalf("empty assessment = %+v", res)
	}
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	if got := Percentage(1, 8); got != 13 {
		t.Fatalf("Percentage(1,8) = %d, want 13", got)
	}
	if got := Percentage(2, 3); got != 67 {
		t.Fatalf("Percentage(2,3) = %d, want 67", got)
	}
}

func TestProgress(t *testing.T) {
	a := &model.Assessment{Sections: []model.Section{
		{ID: "s1", Questions: []model.Question{{ID: "q1"}, {ID: "q2"}}},
		{ID: "s2", Questions: []model.Question{{ID: "q3", ConditionalLogic: &model.ConditionalRule{DependsOn: "q1", Condition: model.ConditionEquals, Value: "x"}}}},
	}}
	if got := Progress(a, model.Answers{"q1": model.Text("a"), "q2": model.Text("")}); got != 33 {
		t.Fatalf("progress = %d, want 33", got)
	}
	if got := Progress(a, model.Answers{"q2": model.List()}); got != 33 {
		t.Fatalf("progress with empty selection = %d, want 33", got)
	}
	if got := Progress(&model.Assessment{}, nil); got != 0 {
		t.Fatalf("progress of empty assessment = %d", got)
	}
}
