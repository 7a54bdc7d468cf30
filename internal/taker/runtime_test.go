package taker

import (
	"context"
	"errors"
	"testing"

	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
)

func TestRuntimeNavigation(t *testing.T) {
	s := newTestStore(newMemoryPersistence(), &manualTimers{})
	s.Start(sampleAssessment(), "c1", nil)
	r := NewRuntime(s, ModeTaker)

	if r.Previous() {
		t.Fatal("Previous on the first section must be a no-op")
	}
	if r.CanSubmit() {
		t.Fatal("submit must not be reachable from the first section")
	}
	if _, err := r.Submit(context.Background()); !errors.Is(err, ErrNotLastSection) {
		t.Fatalf("err = %v, want ErrNotLastSection", err)
	}

	_ = r.Answer("q1", model.Text("No"))
	if !r.Next() || r.SectionIndex() != 1 {
		t.Fatalf("Next failed, index = %d", r.SectionIndex())
	}
	if r.Next() {
		t.Fatal("Next on the last section must be a no-op")
	}
	if !r.CanSubmit() {
		t.Fatal("submit should be reachable from the last section")
	}

	r.Previous()
	if !s.Answers()["q1"].Equal(model.Text("No")) {
		t.Fatal("navigation lost an answer")
	}
}

func TestRuntimeViewVisibility(t *testing.T) {
	s := newTestStore(nil, &manualTimers{})
	s.Start(sampleAssessment(), "", nil)
	r := NewRuntime(s, ModeTaker)

	v := r.View()
	if v.SectionID != "s1" || len(v.Questions) != 1 {
		t.Fatalf("view = %+v", v)
	}
	if v.Questions[0].Error != "" {
		t.Fatal("taker mode must not validate while rendering")
	}

	_ = r.Answer("q1", model.Text("Yes"))
	v = r.View()
	if len(v.Questions) != 2 || v.Questions[0].Answer == nil {
		t.Fatalf("view after answer = %+v", v)
	}
	if v.Progress != 33 {
		t.Fatalf("progress = %d", v.Progress)
	}
}

func TestRuntimeViewAfterRestartOnShorterAssessment(t *testing.T) {
	s := newTestStore(nil, &manualTimers{})
	s.Start(sampleAssessment(), "", nil)
	r := NewRuntime(s, ModeTaker)
	_ = r.Answer("q1", model.Text("No"))
	if !r.Next() {
		t.Fatal("Next failed")
	}

	short := sampleAssessment()
	short.Sections = short.Sections[:1]
	s.Start(short, "", nil)

	v := r.View()
	if v.SectionIndex != 0 || v.SectionID != "s1" || r.SectionIndex() != 0 {
		t.Fatalf("view = %+v", v)
	}

	s.Reset()
	if v := r.View(); v.SectionIndex != 0 || len(v.Questions) != 0 {
		t.Fatalf("view of reset store = %+v", v)
	}
}

func TestPreviewValidationToggle(t *testing.T) {
	s := newTestStore(nil, &manualTimers{})
	s.Start(sampleAssessment(), "", nil)
	r := NewRuntime(s, ModePreview)

	v := r.View()
	if v.Questions[0].Error != assessment.MsgRequired {
		t.Fatalf("preview error = %q", v.Questions[0].Error)
	}

	r.SetShowValidation(false)
	if r.View().Questions[0].Error != "" {
		t.Fatal("validation toggled off but still shown")
	}

	r.GoTo(99)
	if r.SectionIndex() != 1 {
		t.Fatalf("GoTo clamps to %d", r.SectionIndex())
	}
	_ = r.Answer("q1", model.Text("No"))
	id, err := r.Submit(context.Background())
	if err != nil || id != "" {
		t.Fatalf("preview submit = %q, %v", id, err)
	}
}
