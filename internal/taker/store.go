// Package taker holds the live state of one candidate's attempt: the answer
// store with debounced draft autosave, and the section-by-section runtime
// used both by the builder preview and by the candidate-facing form.
package taker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// Store errors.
var (
	ErrNotStarted       = errors.New("no assessment loaded")
	ErrAlreadySubmitted = errors.New("response already submitted")
	ErrUnknownQuestion  = errors.New("question is not part of the assessment")
)

// DefaultAutosaveDelay is the quiet period before a draft is written.
const DefaultAutosaveDelay = 2 * time.Second

// autosaveTimeout bounds one background draft write.
const autosaveTimeout = 10 * time.Second

// Persistence is what the store needs from the response collaborator.
type Persistence interface {
	// FindResponse returns the existing response for the pair, or nil.
	FindResponse(ctx context.Context, assessmentID, candidateID string) (*model.AssessmentResponse, error)
	// SaveDraft overwrites the draft. It must not overwrite a submitted response.
	SaveDraft(ctx context.Context, r *model.AssessmentResponse) error
	// SaveSubmitted persists the terminal response. Both writers may replace
	// r.ID with the id already stored for the pair.
	SaveSubmitted(ctx context.Context, r *model.AssessmentResponse) error
}

// Options configures a Store. Persistence may be nil for a preview store
// that never writes.
type Options struct {
	Persistence Persistence
	Delay       time.Duration
	Timers      AfterFunc
	Now         assessment.Clock
	NewID       assessment.IDFunc
	Logger      zerolog.Logger
}

// Store is the answer map of one (assessment, candidate) attempt. It is safe
// for concurrent use; autosave runs on a timer goroutine.
type Store struct {
	mu sync.Mutex
	// writeMu keeps draft and submit writes from overlapping.
	writeMu sync.Mutex

	persist  Persistence
	debounce *Debouncer
	now      assessment.Clock
	newID    assessment.IDFunc
	log      zerolog.Logger

	assessment  *model.Assessment
	candidateID string
	responseID  string
	answers     model.Answers
	submittedAt *time.Time
	epoch       uint64
}

// NewStore returns an empty store.
func NewStore(opts Options) *Store {
	if opts.Delay <= 0 {
		opts.Delay = DefaultAutosaveDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = assessment.NewID
	}
	return &Store{
		persist:  opts.Persistence,
		debounce: NewDebouncer(opts.Delay, opts.Timers),
		now:      opts.Now,
		newID:    opts.NewID,
		log:      opts.Logger,
		answers:  model.Answers{},
	}
}

// LoadExisting switches the store to a new attempt and seeds it from any
// prior draft or submitted response. A pending autosave of the previous
// attempt is cancelled first. On a lookup failure the store starts empty
// and the error is returned.
func (s *Store) LoadExisting(ctx context.Context, a *model.Assessment, candidateID string) error {
	s.Start(a, candidateID, nil)
	if s.persist == nil {
		return nil
	}
	existing, err := s.persist.FindResponse(ctx, a.ID, candidateID)
	if err != nil {
		return fmt.Errorf("load response: %w", err)
	}
	if existing != nil {
		s.Start(a, candidateID, existing)
	}
	return nil
}

// Start switches the store to a new attempt seeded from existing, which may
// be nil.
func (s *Store) Start(a *model.Assessment, candidateID string, existing *model.AssessmentResponse) {
	s.debounce.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.assessment = a
	s.candidateID = candidateID
	s.responseID = ""
	s.answers = model.Answers{}
	s.submittedAt = nil
	if existing != nil {
		s.responseID = existing.ID
		s.answers = existing.Responses.Clone()
		if existing.SubmittedAt != nil {
			at := *existing.SubmittedAt
			s.submittedAt = &at
		}
	}
}

// Reset empties the store and cancels any pending autosave.
func (s *Store) Reset() {
	s.debounce.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.assessment = nil
	s.candidateID = ""
	s.responseID = ""
	s.answers = model.Answers{}
	s.submittedAt = nil
}

// SetAnswer replaces one answer and schedules a draft autosave.
func (s *Store) SetAnswer(questionID string, v model.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assessment == nil {
		return ErrNotStarted
	}
	if s.submittedAt != nil {
		return ErrAlreadySubmitted
	}
	if _, ok := s.assessment.FindQuestion(questionID); !ok {
		return ErrUnknownQuestion
	}
	if v.Present() {
		s.answers[questionID] = v
	} else {
		delete(s.answers, questionID)
	}

	if s.persist != nil {
		epoch := s.epoch
		s.debounce.Trigger(func() { s.autosave(epoch) })
	}
	return nil
}

// Answers returns a copy of the current answers.
func (s *Store) Answers() model.Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Assessment returns the assessment being taken.
func (s *Store) Assessment() *model.Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assessment
}

// ResponseID returns the id of the persisted response, if any.
func (s *Store) ResponseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responseID
}

// Submitted reports whether the attempt is terminal.
func (s *Store) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submittedAt != nil
}

// Progress returns the answered share of all questions, hidden included.
func (s *Store) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assessment == nil {
		return 0
	}
	return assessment.Progress(s.assessment, s.answers)
}

// Validate runs field validation over every visible question.
func (s *Store) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assessment == nil {
		return ErrNotStarted
	}
	return assessment.ValidateAnswers(s.assessment, s.answers)
}

// Submit validates every visible question and persists the answers as a
// submitted response. On any failure nothing is persisted, the answers are
// kept and the error is returned: *assessment.FieldErrors for invalid
// answers, the collaborator's error otherwise. A store without persistence
// only validates.
func (s *Store) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.assessment == nil {
		s.mu.Unlock()
		return "", ErrNotStarted
	}
	if s.submittedAt != nil {
		s.mu.Unlock()
		return "", ErrAlreadySubmitted
	}
	if err := assessment.ValidateAnswers(s.assessment, s.answers); err != nil {
		s.mu.Unlock()
		return "", err
	}
	if s.persist == nil {
		s.mu.Unlock()
		return "", nil
	}

	id := s.responseID
	if id == "" {
		id = s.newID()
	}
	now := s.now()
	resp := &model.AssessmentResponse{
		ID:           id,
		AssessmentID: s.assessment.ID,
		CandidateID:  s.candidateID,
		Responses:    s.answers.Clone(),
		SubmittedAt:  &now,
		UpdatedAt:    now,
	}
	epoch := s.epoch
	s.mu.Unlock()

	hadPending := s.debounce.Cancel()

	s.writeMu.Lock()
	err := s.persist.SaveSubmitted(ctx, resp)
	if resp.ID != "" {
		id = resp.ID
	}
	s.mu.Lock()
	current := epoch == s.epoch
	if err == nil && current {
		s.responseID = id
		s.submittedAt = &now
	}
	if err != nil && hadPending && current {
		s.debounce.Trigger(func() { s.autosave(epoch) })
	}
	s.mu.Unlock()
	s.writeMu.Unlock()

	if err != nil {
		return "", fmt.Errorf("submit response: %w", err)
	}
	return id, nil
}

// Flush writes a pending draft immediately.
func (s *Store) Flush() bool {
	return s.debounce.Flush()
}

// PendingAutosave reports whether a draft write is waiting.
func (s *Store) PendingAutosave() bool {
	return s.debounce.Pending()
}

func (s *Store) autosave(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.submittedAt != nil || s.assessment == nil {
		s.mu.Unlock()
		return
	}
	if s.responseID == "" {
		s.responseID = s.newID()
	}
	resp := &model.AssessmentResponse{
		ID:           s.responseID,
		AssessmentID: s.assessment.ID,
		CandidateID:  s.candidateID,
		Responses:    s.answers.Clone(),
		UpdatedAt:    s.now(),
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Re-check under the write lock: a submit may have landed while waiting.
	s.mu.Lock()
	stale := epoch != s.epoch || s.submittedAt != nil
	s.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()
	if err := s.persist.SaveDraft(ctx, resp); err != nil {
		s.log.Error().Err(err).
			Str("assessment_id", resp.AssessmentID).
			Str("candidate_id", resp.CandidateID).
			Msg("Draft autosave failed")
		return
	}
	if resp.ID != "" {
		s.mu.Lock()
		if epoch == s.epoch {
			s.responseID = resp.ID
		}
		s.mu.Unlock()
	}
	s.log.Debug().
		Str("assessment_id", resp.AssessmentID).
		Str("candidate_id", resp.CandidateID).
		Int("answers", len(resp.Responses)).
		Msg("Draft autosaved")
}
