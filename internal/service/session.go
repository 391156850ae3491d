package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
)

// DefaultFeedbackDelay is how long answer feedback stays on screen before advancing.
const DefaultFeedbackDelay = time.Second

var (
	ErrSessionClosed = errors.New("quiz session is closed")
	ErrNotInProgress = errors.New("quiz is not in progress")
	ErrAnswerPending = errors.New("previous answer is still being shown")
	ErrEmptyAnswer   = errors.New("answer must not be empty")
)

// Listener is called after every state change, outside the session lock.
type Listener func(s *Session, st entities.QuizState)

// SessionConfig holds the collaborators of a Session.
type SessionConfig struct {
	Key           string
	Frontend      string
	Loader        Loader
	Scheduler     Scheduler
	FeedbackDelay time.Duration
	Logger        *zap.Logger
}

// Session owns one quiz state machine together with its fetch and its deferred advance.
type Session struct {
	key       string
	frontend  string
	loader    Loader
	scheduler Scheduler
	delay     time.Duration
	logger    *zap.Logger

	mu         sync.Mutex
	state      entities.QuizState
	timer      Timer
	cancelLoad context.CancelFunc
	listeners  []Listener
	closed     bool
	startedAt  time.Time
	loads      int
}

// NewSession creates a session in the Loading phase. Call Start to fetch questions.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler
	}
	if cfg.FeedbackDelay <= 0 {
		cfg.FeedbackDelay = DefaultFeedbackDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Session{
		key:       cfg.Key,
		frontend:  cfg.Frontend,
		loader:    cfg.Loader,
		scheduler: cfg.Scheduler,
		delay:     cfg.FeedbackDelay,
		logger:    cfg.Logger.With(zap.String("session", cfg.Key), zap.String("frontend", cfg.Frontend)),
		state:     entities.NewQuizState(0),
	}
}

// Key returns the session key.
func (s *Session) Key() string { return s.key }

// Frontend returns the name of the front-end that owns the session.
func (s *Session) Frontend() string { return s.frontend }

// Subscribe registers fn for every subsequent state change.
func (s *Session) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Start triggers the fetch for the current epoch. It is a no-op once a fetch ran.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.cancelLoad != nil || s.state.Phase() != entities.PhaseLoading {
		return nil
	}

	s.startLoadLocked()
	return nil
}

// Submit records option as the answer to the current question and schedules the advance.
func (s *Session) Submit(option string) (entities.QuizState, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return entities.QuizState{}, ErrSessionClosed
	}

	st := s.state
	switch {
	case option == "":
		s.mu.Unlock()
		return st, ErrEmptyAnswer
	case st.Phase() != entities.PhaseInProgress:
		s.mu.Unlock()
		return st, ErrNotInProgress
	case st.SelectedAnswer != "":
		s.mu.Unlock()
		return st, ErrAnswerPending
	}

	s.state = entities.Reduce(st, entities.AnswerSubmitted{Option: option})

	epoch, index := s.state.Epoch, s.state.CurrentIndex
	s.timer = s.scheduler.AfterFunc(s.delay, func() {
		s.advance(epoch, index)
	})

	s.logger.Debug("answer submitted",
		zap.Int("index", index),
		zap.Bool("correct", s.state.IsCorrect == entities.CorrectnessCorrect),
		zap.Int("score", s.state.Score),
	)

	next, listeners := s.state, s.copyListenersLocked()
	s.mu.Unlock()

	s.notify(listeners, next)
	return next, nil
}

// Restart drops the current run entirely and fetches a fresh batch.
func (s *Session) Restart() (entities.QuizState, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return entities.QuizState{}, ErrSessionClosed
	}

	s.stopLocked()
	s.state = entities.Reduce(s.state, entities.RestartRequested{})
	s.startedAt = time.Time{}
	s.startLoadLocked()

	s.logger.Debug("session restarted", zap.Int("epoch", s.state.Epoch))

	next, listeners := s.state, s.copyListenersLocked()
	s.mu.Unlock()

	s.notify(listeners, next)
	return next, nil
}

// Close cancels the pending fetch and advance. No state changes happen afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopLocked()
	s.logger.Debug("session closed")
}

// Snapshot returns the current state.
func (s *Session) Snapshot() entities.QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartedAt returns when the current batch finished loading.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Loads returns how many fetches the session has started.
func (s *Session) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) startLoadLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelLoad = cancel
	s.loads++

	go s.runLoad(ctx, s.state.Epoch)
}

func (s *Session) runLoad(ctx context.Context, epoch int) {
	questions, err := s.loader.Load(ctx)
	if ctx.Err() != nil {
		return
	}

	var ev entities.Event
	if err != nil {
		s.logger.Warn("load failed", zap.Int("epoch", epoch), zap.Error(err))
		ev = entities.LoadFailed{Epoch: epoch, Message: err.Error()}
	} else {
		ev = entities.LoadSucceeded{Epoch: epoch, Questions: questions}
	}

	s.dispatch(ev)
}

func (s *Session) advance(epoch, index int) {
	s.dispatch(entities.AdvanceTimerFired{Epoch: epoch, Index: index})
}

// dispatch applies ev and notifies listeners when the state changed.
func (s *Session) dispatch(ev entities.Event) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	prev := s.state
	s.state = entities.Reduce(prev, ev)
	if !stateChanged(prev, s.state) {
		s.mu.Unlock()
		return
	}

	switch ev.(type) {
	case entities.LoadSucceeded, entities.LoadFailed:
		if s.cancelLoad != nil {
			s.cancelLoad()
			s.cancelLoad = nil
		}
		if s.state.Phase() == entities.PhaseInProgress {
			s.startedAt = time.Now()
		}
		s.logger.Debug("load finished", zap.String("phase", string(s.state.Phase())))
	case entities.AdvanceTimerFired:
		s.timer = nil
		if s.state.Completed {
			s.logger.Info("quiz completed",
				zap.Int("score", s.state.Score),
				zap.Int("total", s.state.Total()),
			)
		}
	}

	next, listeners := s.state, s.copyListenersLocked()
	s.mu.Unlock()

	s.notify(listeners, next)
}

func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
}

func (s *Session) copyListenersLocked() []Listener {
	out := make([]Listener, len(s.listeners))
	copy(out, s.listeners)
	return out
}

func (s *Session) notify(listeners []Listener, st entities.QuizState) {
	for _, fn := range listeners {
		fn(s, st)
	}
}

func stateChanged(a, b entities.QuizState) bool {
	return a.Epoch != b.Epoch ||
		a.CurrentIndex != b.CurrentIndex ||
		a.Score != b.Score ||
		a.SelectedAnswer != b.SelectedAnswer ||
		a.IsCorrect != b.IsCorrect ||
		a.Completed != b.Completed ||
		a.LoadError != b.LoadError ||
		len(a.Questions) != len(b.Questions)
}
