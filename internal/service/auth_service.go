package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrWrongAssessment    = errors.New("token is not valid for this assessment")
)

// TokenType distinguishes recruiter vs candidate tokens.
type TokenType string

const (
	TokenTypeRecruiter TokenType = "recruiter"
	TokenTypeCandidate TokenType = "candidate"
)

// Claims extends JWT standard claims with app-specific fields. Subject is
// the recruiter id or the candidate id.
type Claims struct {
	jwt.RegisteredClaims
	TokenType    TokenType `json:"token_type"`
	AssessmentID string    `json:"assessment_id,omitempty"` // Candidate only
}

// AuthService handles recruiter login and candidate invite tokens.
type AuthService struct {
	cfg        *config.Config
	recruiters repository.RecruiterStore
	log        zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, recruiters repository.RecruiterStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:        cfg,
		recruiters: recruiters,
		log:        log.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login authenticates a recruiter and returns a recruiter token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	rec, err := s.recruiters.GetRecruiterByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get recruiter: %w", err)
	}
	if err := s.CheckPassword(rec.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, _, err := s.sign(TokenTypeRecruiter, rec.ID, "", s.cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("recruiter_id", rec.ID).Msg("Recruiter logged in")
	return &model.LoginResponse{Token: token, Recruiter: *rec}, nil
}

// Me returns the recruiter behind a token subject.
func (s *AuthService) Me(ctx context.Context, recruiterID string) (*model.Recruiter, error) {
	rec, err := s.recruiters.GetRecruiterByID(ctx, recruiterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("get recruiter: %w", err)
	}
	return rec, nil
}

// CreateRecruiter stores a new recruiter account.
func (s *AuthService) CreateRecruiter(ctx context.Context, name, email, password string) (*model.Recruiter, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	rec := &model.Recruiter{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
	}
	if err := s.recruiters.CreateRecruiter(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recruiter: %w", err)
	}
	return rec, nil
}

// Invite issues a candidate token scoped to one assessment.
func (s *AuthService) Invite(assessmentID, candidateID string) (*model.InviteResponse, error) {
	token, expires, err := s.sign(TokenTypeCandidate, candidateID, assessmentID, s.cfg.InviteExpiry)
	if err != nil {
		return nil, err
	}
	return &model.InviteResponse{Token: token, ExpiresAt: expires}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateCandidateToken validates a candidate token for one assessment.
func (s *AuthService) ValidateCandidateToken(tokenStr, assessmentID string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeCandidate {
		return nil, ErrInvalidToken
	}
	if assessmentID != "" && claims.AssessmentID != assessmentID {
		return nil, ErrWrongAssessment
	}
	return claims, nil
}

func (s *AuthService) sign(typ TokenType, subject, assessmentID string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		TokenType:    typ,
		AssessmentID: assessmentID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}
