package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(store *memStore) *AuthService {
	cfg := &config.Config{
		JWTSecret:    "test-secret",
		JWTExpiry:    time.Hour,
		InviteExpiry: 72 * time.Hour,
		BcryptCost:   bcrypt.MinCost,
	}
	return NewAuthService(cfg, store, zerolog.Nop())
}

func TestRecruiterLogin(t *testing.T) {
	store := newMemStore()
	s := newTestAuthService(store)
	ctx := context.Background()

	rec, err := s.CreateRecruiter(ctx, "Hiring Lead", " Lead@TalentFlow.dev ", "s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Login(ctx, &model.LoginRequest{Email: "lead@talentflow.dev", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := s.ValidateToken(res.Token)
	if err != nil || claims.Subject != rec.ID || claims.TokenType != TokenTypeRecruiter {
		t.Fatalf("claims = %+v, %v", claims, err)
	}

	if _, err := s.Login(ctx, &model.LoginRequest{Email: "lead@talentflow.dev", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := s.Login(ctx, &model.LoginRequest{Email: "nobody@talentflow.dev", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestCandidateInviteScope(t *testing.T) {
	s := newTestAuthService(newMemStore())

	inv, err := s.Invite("a1", "cand-7")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.ValidateCandidateToken(inv.Token, "a1")
	if err != nil || claims.Subject != "cand-7" {
		t.Fatalf("claims = %+v, %v", claims, err)
	}
	if _, err := s.ValidateCandidateToken(inv.Token, "a2"); !errors.Is(err, ErrWrongAssessment) {
		t.Fatalf("other assessment err = %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(73 * time.Hour) }
	if _, err := s.ValidateCandidateToken(inv.Token, "a1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired err = %v", err)
	}
}

func TestRecruiterTokenIsNotAnInvite(t *testing.T) {
	store := newMemStore()
	s := newTestAuthService(store)
	ctx := context.Background()
	_, _ = s.CreateRecruiter(ctx, "R", "r@talentflow.dev", "password1")
	res, err := s.Login(ctx, &model.LoginRequest{Email: "r@talentflow.dev", Password: "password1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ValidateCandidateToken(res.Token, ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v", err)
	}
}
