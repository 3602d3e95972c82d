// Package engine drives a quiz session: question progression, answer
// timing, scoring with streak bonuses, and token-lifecycle recovery
// against the trivia provider.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizzle/internal/domain"
)

// State of a quiz session. A session moves AwaitingToken -> Loading ->
// (AwaitingAnswer -> Revealing per question) -> Completed. Failures keep
// the session in the state where they happened with Err surfaced.
type State string

const (
	StateAwaitingToken  State = "awaiting_token"
	StateLoading        State = "loading"
	StateAwaitingAnswer State = "awaiting_answer"
	StateRevealing      State = "revealing"
	StateCompleted      State = "completed"
)

// TokenSource provides and refreshes provider session tokens.
type TokenSource interface {
	Acquire(ctx context.Context) (string, error)
	Regenerate(ctx context.Context) (string, error)
}

// QuestionSource fetches normalized questions for a token.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, opts domain.QuizOptions, token string) ([]domain.Question, error)
}

// Config wires a session. AnswerTimeout and RevealDwell default to the
// game constants; Now defaults to time.Now. Tests shrink the timers and
// pin the clock.
type Config struct {
	Options   domain.QuizOptions
	Tokens    TokenSource
	Questions QuestionSource

	AnswerTimeout time.Duration
	RevealDwell   time.Duration
	Now           func() time.Time
	Logger        *zap.Logger
}

// Snapshot is an immutable view of the session for rendering. Question
// is nil until the session is in progress.
type Snapshot struct {
	State         State
	Err           error
	QuestionIndex int
	QuestionCount int
	Question      *domain.Question
	Picked        string
	AwardedPoints int
	TotalScore    int
	Streak        int
	TimeRemaining time.Duration
}

// Session is a single quiz run. All state is guarded by mu; the two
// timers (answer deadline, reveal dwell) re-validate the question
// generation under the lock before acting, so a stale timer from a
// previous question is always a no-op.
type Session struct {
	id  string
	cfg Config
	log *zap.Logger

	mu          sync.Mutex
	state       State
	err         error
	questions   []domain.Question
	idx         int
	askedAt     time.Time
	picked      string
	awarded     int
	streak      int
	total       int
	gen         int
	deadline    *time.Timer
	dwell       *time.Timer
	closed      bool
	subscribers map[chan Snapshot]struct{}
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Tokens == nil || cfg.Questions == nil {
		return nil, errors.New("engine: token and question sources are required")
	}
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = AnswerTimeLimit
	}
	if cfg.RevealDwell <= 0 {
		cfg.RevealDwell = RevealDwell
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	id := uuid.NewString()
	return &Session{
		id:          id,
		cfg:         cfg,
		log:         cfg.Logger.With(zap.String("session", id)),
		state:       StateAwaitingToken,
		subscribers: make(map[chan Snapshot]struct{}),
	}, nil
}

// ID returns the session's correlation ID.
func (s *Session) ID() string { return s.id }

// Start acquires a token, fetches the question batch, and enters the
// first question. It blocks until the session is in progress or the
// startup failed. A token-expired signal during loading triggers exactly
// one regenerate-and-refetch cycle; a second expiry surfaces as a fetch
// failure rather than looping.
func (s *Session) Start(ctx context.Context) error {
	token, err := s.cfg.Tokens.Acquire(ctx)
	if err != nil {
		s.log.Warn("token acquisition failed", zap.Error(err))
		return s.fail(err)
	}

	s.setState(StateLoading)

	questions, err := s.cfg.Questions.FetchQuestions(ctx, s.cfg.Options, token)
	if errors.Is(err, domain.ErrTokenExpired) {
		s.log.Info("session token expired, regenerating")
		token, err = s.cfg.Tokens.Regenerate(ctx)
		if err == nil {
			questions, err = s.cfg.Questions.FetchQuestions(ctx, s.cfg.Options, token)
			if errors.Is(err, domain.ErrTokenExpired) {
				err = fmt.Errorf("%w: token expired again after regeneration", domain.ErrQuestionFetch)
			}
		}
	}
	if err != nil {
		s.log.Warn("question fetch failed", zap.Error(err))
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}

	s.questions = questions
	if len(questions) == 0 {
		// Provider starvation: nothing to ask, the game ends with zero score.
		s.state = StateCompleted
		s.broadcastLocked()
		return nil
	}

	s.log.Info("quiz started", zap.Int("questions", len(questions)))
	s.beginQuestionLocked(0)
	return nil
}

// PickAnswer records the player's answer for the current question. Only
// the first pick per question counts; later calls are no-ops. An
// alternative that is not part of the current question is rejected.
func (s *Session) PickAnswer(alternative string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.state != StateAwaitingAnswer || s.picked != "" {
		return nil
	}

	q := s.questions[s.idx]
	if !containsAlternative(q.Alternatives, alternative) {
		return domain.ErrUnknownAlternative
	}

	s.picked = alternative
	elapsed := s.cfg.Now().Sub(s.askedAt)

	if alternative == q.CorrectAlternative {
		s.streak++
		points := CalculatePoints(elapsed, q.Difficulty) + StreakBonus(s.streak)
		s.awarded = points
		s.total += points
	} else {
		s.streak = 0
		s.awarded = 0
	}

	s.enterRevealingLocked(s.gen)
	return nil
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// TimeRemaining reports the cosmetic countdown for display; the
// authoritative timeout is the deadline timer.
func (s *Session) TimeRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeRemainingLocked()
}

// Result returns the accumulated score and the category it was played
// in, for leaderboard submission once the session completes.
func (s *Session) Result() (score int, categoryID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, s.cfg.Options.CategoryID
}

// Subscribe returns a channel receiving a snapshot on every transition,
// starting with the current one. The cancel function must be called to
// avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close tears the session down: pending timers are canceled and no
// further state mutation happens. Used when the player abandons a game.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimersLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) beginQuestionLocked(i int) {
	s.idx = i
	s.picked = ""
	s.awarded = 0
	s.askedAt = s.cfg.Now()
	s.state = StateAwaitingAnswer
	s.gen++

	gen := s.gen
	s.stopTimersLocked()
	s.deadline = time.AfterFunc(s.cfg.AnswerTimeout, func() { s.onDeadline(gen) })
	s.broadcastLocked()
}

// onDeadline is the authoritative timeout path. The picked guard makes
// the race with a last-moment manual pick single-winner: whichever path
// runs first under the lock wins, the other is a no-op.
func (s *Session) onDeadline(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen || s.state != StateAwaitingAnswer || s.picked != "" {
		return
	}

	q := s.questions[s.idx]
	s.picked = q.CorrectAlternative // revealed for display; a timeout never scores
	s.awarded = 0
	s.streak = 0
	s.enterRevealingLocked(gen)
}

func (s *Session) enterRevealingLocked(gen int) {
	s.state = StateRevealing
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	s.dwell = time.AfterFunc(s.cfg.RevealDwell, func() { s.onDwell(gen) })
	s.broadcastLocked()
}

func (s *Session) onDwell(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.gen || s.state != StateRevealing {
		return
	}

	if s.idx+1 < len(s.questions) {
		s.beginQuestionLocked(s.idx + 1)
		return
	}

	s.state = StateCompleted
	s.log.Info("quiz completed", zap.Int("score", s.total))
	s.broadcastLocked()
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.broadcastLocked()
	return err
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.broadcastLocked()
}

func (s *Session) stopTimersLocked() {
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	if s.dwell != nil {
		s.dwell.Stop()
		s.dwell = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:         s.state,
		Err:           s.err,
		QuestionIndex: s.idx,
		QuestionCount: len(s.questions),
		Picked:        s.picked,
		AwardedPoints: s.awarded,
		TotalScore:    s.total,
		Streak:        s.streak,
		TimeRemaining: s.timeRemainingLocked(),
	}
	if s.idx < len(s.questions) && (s.state == StateAwaitingAnswer || s.state == StateRevealing) {
		q := s.questions[s.idx]
		snap.Question = &q
	}
	return snap
}

func (s *Session) timeRemainingLocked() time.Duration {
	if s.state != StateAwaitingAnswer {
		return 0
	}
	remaining := s.cfg.AnswerTimeout - s.cfg.Now().Sub(s.askedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest update so a slow reader never blocks a transition.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func containsAlternative(alternatives []string, alternative string) bool {
	for _, a := range alternatives {
		if a == alternative {
			return true
		}
	}
	return false
}
