package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
)

func newTestBuilderService(store *memStore) (*BuilderService, *repository.MemoryBuilderDrafts) {
	drafts := repository.NewMemoryBuilderDrafts()
	s := NewBuilderService(drafts, newTestAssessmentService(store), zerolog.Nop())
	s.newID = sequentialIDs("new-")
	return s, drafts
}

func TestBuilderDraftCommit(t *testing.T) {
	store := newMemStore()
	store.assessments["a1"] = frontendAssessment()
	s, drafts := newTestBuilderService(store)
	ctx := context.Background()

	if _, err := s.Open(ctx, "a1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	st, err := s.Apply(ctx, "a1", func(b *assessment.Builder) error {
		b.AddSection()
		return b.UpdateSection("s2", "History")
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(st.Assessment.Sections) != 3 || st.Assessment.Sections[2].Title != "Section 3" {
		t.Fatalf("draft = %+v", st.Assessment.Sections)
	}
	if len(store.assessments["a1"].Sections) != 2 {
		t.Fatal("draft edits leaked into the stored assessment")
	}

	saved, err := s.Commit(ctx, "a1")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(saved.Sections) != 3 || store.assessments["a1"].Sections[1].Title != "History" {
		t.Fatalf("committed = %+v", store.assessments["a1"].Sections)
	}
	if _, err := drafts.GetDraft(ctx, "a1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("commit must close the draft, got %v", err)
	}
	if _, err := s.Get(ctx, "a1"); !errors.Is(err, ErrDraftNotOpen) {
		t.Fatalf("get after commit err = %v", err)
	}
}

func TestBuilderGuardRejectionKeepsDraft(t *testing.T) {
	store := newMemStore()
	store.assessments["a1"] = frontendAssessment()
	s, _ := newTestBuilderService(store)
	ctx := context.Background()
	_, _ = s.Open(ctx, "a1")

	if _, err := s.Apply(ctx, "a1", func(b *assessment.Builder) error { return b.DeleteSection("s1") }); err != nil {
		t.Fatal(err)
	}
	_, err := s.Apply(ctx, "a1", func(b *assessment.Builder) error { return b.DeleteSection("s2") })
	if !errors.Is(err, assessment.ErrLastSection) {
		t.Fatalf("err = %v, want ErrLastSection", err)
	}
	st, _ := s.Get(ctx, "a1")
	if len(st.Assessment.Sections) != 1 || st.Assessment.Sections[0].ID != "s2" {
		t.Fatalf("draft = %+v", st.Assessment.Sections)
	}
}

func TestBuilderCommitRejectsInvalidDraft(t *testing.T) {
	store := newMemStore()
	store.assessments["a1"] = frontendAssessment()
	s, _ := newTestBuilderService(store)
	ctx := context.Background()
	_, _ = s.Open(ctx, "a1")

	_, err := s.Apply(ctx, "a1", func(b *assessment.Builder) error {
		_, err := b.AddQuestion("s2", model.QuestionTypeSingleChoice)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Commit(ctx, "a1")
	var se *assessment.StructureError
	if !errors.As(err, &se) || len(se.Issues) != 1 || se.Issues[0].Question != "Untitled Question" {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Get(ctx, "a1"); err != nil {
		t.Fatal("a rejected commit must keep the draft open")
	}
	if store.assessments["a1"].QuestionCount() != 3 {
		t.Fatal("a rejected commit must not write")
	}

	if err := s.Discard(ctx, "a1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Discard(ctx, "a1"); !errors.Is(err, ErrDraftNotOpen) {
		t.Fatalf("second discard err = %v", err)
	}
}

func TestBuilderRequiresOpenDraft(t *testing.T) {
	store := newMemStore()
	store.assessments["a1"] = frontendAssessment()
	s, _ := newTestBuilderService(store)

	_, err := s.Apply(context.Background(), "a1", func(b *assessment.Builder) error {
		b.AddSection()
		return nil
	})
	if !errors.Is(err, ErrDraftNotOpen) {
		t.Fatalf("err = %v, want ErrDraftNotOpen", err)
	}
	if _, err := s.Open(context.Background(), "missing"); !errors.Is(err, ErrAssessmentNotFound) {
		t.Fatalf("open missing err = %v", err)
	}
}
