package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz/internal/storage"
)

const recordTimeout = 5 * time.Second

// SessionManager creates sessions per front-end key and records finished runs.
type SessionManager struct {
	store     *storage.SessionStore[*Session]
	loader    Loader
	scheduler Scheduler
	delay     time.Duration
	recorder  ResultRecorder
	logger    *zap.Logger

	mu       sync.Mutex
	recorded map[string]int // session key -> last recorded epoch+1
	onEvict  []func(key string)
}

// NewSessionManager creates a manager. A nil recorder disables score history.
func NewSessionManager(
	loader Loader,
	scheduler Scheduler,
	delay time.Duration,
	recorder ResultRecorder,
	logger *zap.Logger,
) *SessionManager {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		store:     storage.NewSessionStore[*Session](),
		loader:    loader,
		scheduler: scheduler,
		delay:     delay,
		recorder:  recorder,
		logger:    logger,
		recorded:  make(map[string]int),
	}
}

// Acquire returns the live session for key, creating and starting one when absent.
// listener, if non-nil, is subscribed only on creation.
func (m *SessionManager) Acquire(key, frontend string, listener Listener) (*Session, bool, error) {
	sess, created := m.store.GetOrCreate(key, func() *Session {
		s := NewSession(SessionConfig{
			Key:           key,
			Frontend:      frontend,
			Loader:        m.loader,
			Scheduler:     m.scheduler,
			FeedbackDelay: m.delay,
			Logger:        m.logger,
		})
		s.Subscribe(m.recordOnCompletion)
		if listener != nil {
			s.Subscribe(listener)
		}
		return s
	})

	if created {
		m.logger.Debug("session created", zap.String("session", key), zap.String("frontend", frontend))
		if err := sess.Start(); err != nil {
			return nil, false, err
		}
	}

	return sess, created, nil
}

// OnEvict registers fn to be called with the key of every session removed by
// Sweep or Drop.
func (m *SessionManager) OnEvict(fn func(key string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = append(m.onEvict, fn)
}

// Get returns the live session for key.
func (m *SessionManager) Get(key string) (*Session, bool) {
	return m.store.Get(key)
}

// Drop closes and forgets the session for key.
func (m *SessionManager) Drop(key string) {
	m.store.Delete(key)
	m.forget(key)
}

// Sweep closes sessions idle longer than ttl and returns how many were evicted.
func (m *SessionManager) Sweep(ttl time.Duration) int {
	keys := m.store.Sweep(ttl)
	for _, k := range keys {
		m.forget(k)
	}
	return len(keys)
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	return m.store.Len()
}

// Close tears down every live session.
func (m *SessionManager) Close() {
	m.store.CloseAll()
}

// RecentResults returns the latest recorded scores.
func (m *SessionManager) RecentResults(ctx context.Context, limit int) ([]*entities.QuizResult, error) {
	return m.recorder.Recent(ctx, limit)
}

func (m *SessionManager) recordOnCompletion(s *Session, st entities.QuizState) {
	if st.Phase() != entities.PhaseCompleted {
		return
	}

	m.mu.Lock()
	if m.recorded[s.Key()] == st.Epoch+1 {
		m.mu.Unlock()
		return
	}
	m.recorded[s.Key()] = st.Epoch + 1
	m.mu.Unlock()

	result := entities.NewQuizResult(s.Key(), s.Frontend(), st, s.StartedAt())

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := m.recorder.Record(ctx, result); err != nil {
		m.logger.Error("failed to record quiz result",
			zap.String("session", s.Key()),
			zap.Int("score", result.Score),
			zap.Int("total", result.Total),
			zap.Error(err),
		)
	}
}

func (m *SessionManager) forget(key string) {
	m.mu.Lock()
	delete(m.recorded, key)
	hooks := append([]func(string){}, m.onEvict...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(key)
	}
}
