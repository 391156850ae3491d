package service

import (
	"context"
	"time"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz/internal/infra/opentdb"
)

// QuestionFetcher performs the single outbound request for a question batch.
type QuestionFetcher interface {
	FetchQuestions(ctx context.Context) ([]opentdb.RawQuestion, error)
}

// Loader produces the normalized question list for a session.
type Loader interface {
	Load(ctx context.Context) ([]entities.Question, error)
}

// ResultRecorder persists completed-session scores.
type ResultRecorder interface {
	Record(ctx context.Context, r *entities.QuizResult) error
	Recent(ctx context.Context, limit int) ([]*entities.QuizResult, error)
}

// Timer is a pending deferred callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
var RealScheduler Scheduler = realScheduler{}

// NopRecorder discards results.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *entities.QuizResult) error { return nil }

func (NopRecorder) Recent(context.Context, int) ([]*entities.QuizResult, error) { return nil, nil }
