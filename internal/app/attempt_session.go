package app

import (
	"math/rand"
	"sync"
	"time"

	"quizlink/internal/domain"
	"quizlink/internal/scoring"
)

// SessionState tracks one participant's pass through one quiz.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateSubmitted  SessionState = "submitted"
	StateCompleted  SessionState = "completed"
)

// SubmitTrigger distinguishes an explicit submission from countdown expiry.
type SubmitTrigger string

const (
	TriggerUser   SubmitTrigger = "user"
	TriggerTimeUp SubmitTrigger = "time_up"
)

// SessionHooks receive cooperative timer ticks and the forced-submission
// result. Hooks run on the session's timer goroutines and must not block.
type SessionHooks struct {
	OnElapsed   func(seconds int)
	OnRemaining func(seconds int)
	OnExpire    func(result scoring.Result)
}

// AttemptSession is the per-participant quiz session: it holds the in-memory
// answer set, applies the presentation-only shuffle, runs the countdown and
// elapsed timers, and rejects answer mutation once submitted. Exactly one
// participant mutates a session, but timer goroutines observe it, so access
// is serialized with a mutex.
type AttemptSession struct {
	mu        sync.Mutex
	quiz      domain.Quiz
	presented []domain.Question
	responses map[string]domain.Submission
	state     SessionState
	startedAt time.Time
	deadline  time.Time
	result    scoring.Result
	trigger   SubmitTrigger

	now         func() time.Time
	interval    time.Duration
	shuffleSeed *int64
	hooks       SessionHooks
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// SessionOption tweaks session construction, mainly for tests.
type SessionOption func(*AttemptSession)

// WithSessionClock injects a deterministic clock.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *AttemptSession) { s.now = now }
}

// WithTickInterval overrides the one-second timer tick.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *AttemptSession) { s.interval = d }
}

// WithShuffleSeed makes the presentation shuffle reproducible.
func WithShuffleSeed(seed int64) SessionOption {
	return func(s *AttemptSession) { s.shuffleSeed = &seed }
}

// NewAttemptSession prepares a session in NotStarted. If the quiz sets the
// shuffle flag the questions are permuted for presentation only; storage
// order is untouched.
func NewAttemptSession(quiz domain.Quiz, hooks SessionHooks, opts ...SessionOption) *AttemptSession {
	s := &AttemptSession{
		quiz:      quiz,
		responses: make(map[string]domain.Submission),
		state:     StateNotStarted,
		now:       time.Now,
		interval:  time.Second,
		hooks:     hooks,
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.presented = make([]domain.Question, len(quiz.Questions))
	copy(s.presented, quiz.Questions)
	if quiz.ShuffleQuestions {
		seed := s.now().UnixNano()
		if s.shuffleSeed != nil {
			seed = *s.shuffleSeed
		}
		rnd := rand.New(rand.NewSource(seed))
		rnd.Shuffle(len(s.presented), func(i, j int) {
			s.presented[i], s.presented[j] = s.presented[j], s.presented[i]
		})
	}
	return s
}

// Start moves the session to InProgress and launches the elapsed ticker and,
// when the quiz has a time limit, the countdown.
func (s *AttemptSession) Start() error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return domain.ErrSessionSubmitted
	}
	s.state = StateInProgress
	s.startedAt = s.now()
	limited := s.quiz.TimeLimitMinutes > 0
	if limited {
		s.deadline = s.startedAt.Add(time.Duration(s.quiz.TimeLimitMinutes) * time.Minute)
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.elapsedLoop()
	if limited {
		s.wg.Add(1)
		go s.countdownLoop()
	}
	return nil
}

// Questions returns the presentation-ordered question list.
func (s *AttemptSession) Questions() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Question, len(s.presented))
	copy(out, s.presented)
	return out
}

// State returns the current session state.
func (s *AttemptSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetAnswer records or overwrites the response to one question. Navigation is
// free-form; any question may be answered in any order, repeatedly, while the
// session is InProgress.
func (s *AttemptSession) SetAnswer(questionID string, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateNotStarted:
		return domain.ErrSessionNotStarted
	case StateInProgress:
	default:
		return domain.ErrSessionSubmitted
	}
	for _, q := range s.presented {
		if q.ID == questionID {
			s.responses[questionID] = sub
			return nil
		}
	}
	return domain.ErrQuizNotFound
}

// ClearAnswer removes a recorded response while the session is InProgress.
func (s *AttemptSession) ClearAnswer(questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.ErrSessionSubmitted
	}
	delete(s.responses, questionID)
	return nil
}

// Responses returns a snapshot of the current answer set.
func (s *AttemptSession) Responses() map[string]domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Submission, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

// Elapsed reports whole seconds since Start.
func (s *AttemptSession) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNotStarted {
		return 0
	}
	return int(s.now().Sub(s.startedAt) / time.Second)
}

// Submit grades whatever answers exist and moves to Submitted, stopping both
// timers. Late mutations and repeat submissions are rejected.
func (s *AttemptSession) Submit(trigger SubmitTrigger) (scoring.Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateNotStarted:
		s.mu.Unlock()
		return scoring.Result{}, domain.ErrSessionNotStarted
	case StateInProgress:
	default:
		s.mu.Unlock()
		return scoring.Result{}, domain.ErrSessionSubmitted
	}
	s.state = StateSubmitted
	s.trigger = trigger
	s.result = scoring.Score(s.quiz.Questions, s.responses)
	result := s.result
	s.mu.Unlock()

	s.stopTimers()
	return result, nil
}

// Complete marks the scoring result as durably recorded. Terminal.
func (s *AttemptSession) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitted {
		return domain.ErrSessionSubmitted
	}
	s.state = StateCompleted
	return nil
}

// Abandon cancels an in-progress session silently: timers stop and no attempt
// record is ever written. Safe to call on any exit path, repeatedly.
func (s *AttemptSession) Abandon() {
	s.stopTimers()
}

// Result returns the grading outcome once submitted.
func (s *AttemptSession) Result() (scoring.Result, SubmitTrigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitted && s.state != StateCompleted {
		return scoring.Result{}, "", false
	}
	return s.result, s.trigger, true
}

func (s *AttemptSession) stopTimers() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Wait blocks until the timer goroutines have exited. Test helper.
func (s *AttemptSession) Wait() {
	s.wg.Wait()
}

func (s *AttemptSession) elapsedLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.hooks.OnElapsed != nil {
				s.hooks.OnElapsed(s.Elapsed())
			}
		case <-s.stop:
			return
		}
	}
}

// countdownLoop ticks the remaining budget and fires forced submission once
// at zero. The expiry submission still produces a scored result from whatever
// answers exist at that moment.
func (s *AttemptSession) countdownLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			remaining := int(s.deadline.Sub(s.now()) / time.Second)
			s.mu.Unlock()
			if remaining > 0 {
				if s.hooks.OnRemaining != nil {
					s.hooks.OnRemaining(remaining)
				}
				continue
			}
			result, err := s.Submit(TriggerTimeUp)
			if err == nil && s.hooks.OnExpire != nil {
				s.hooks.OnExpire(result)
			}
			return
		case <-s.stop:
			return
		}
	}
}
