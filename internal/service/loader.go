package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz/internal/infra/opentdb"
)

const incorrectPerQuestion = entities.OptionsPerQuestion - 1

var (
	ErrNoQuestions     = errors.New("no questions returned")
	ErrMalformedRecord = errors.New("malformed question record")
)

// FetchFailure is the only error kind the loader reports.
type FetchFailure struct {
	Err error
}

func (f *FetchFailure) Error() string {
	return "failed to fetch questions: " + f.Err.Error()
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// QuestionLoader fetches one batch and turns it into shuffled, decoded questions.
type QuestionLoader struct {
	fetcher QuestionFetcher
	logger  *zap.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewQuestionLoader creates a loader. A nil rng is seeded from the clock.
func NewQuestionLoader(fetcher QuestionFetcher, rng *rand.Rand, logger *zap.Logger) *QuestionLoader {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionLoader{
		fetcher: fetcher,
		rng:     rng,
		logger:  logger,
	}
}

// Load performs exactly one fetch. Any failure is returned as *FetchFailure.
func (l *QuestionLoader) Load(ctx context.Context) ([]entities.Question, error) {
	start := time.Now()

	raw, err := l.fetcher.FetchQuestions(ctx)
	if err != nil {
		l.logger.Warn("fetch questions failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &FetchFailure{Err: err}
	}

	if len(raw) == 0 {
		return nil, &FetchFailure{Err: ErrNoQuestions}
	}

	l.mu.Lock()
	questions, err := BuildQuestions(raw, l.shuffle)
	l.mu.Unlock()
	if err != nil {
		return nil, &FetchFailure{Err: err}
	}

	l.logger.Info("questions loaded",
		zap.Int("count", len(questions)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return questions, nil
}

func (l *QuestionLoader) shuffle(options []string) {
	l.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

// BuildQuestions decodes every text field once and shuffles each question's options.
func BuildQuestions(raw []opentdb.RawQuestion, shuffle func([]string)) ([]entities.Question, error) {
	questions := make([]entities.Question, 0, len(raw))

	for i, r := range raw {
		if len(r.IncorrectAnswers) != incorrectPerQuestion {
			return nil, fmt.Errorf("%w: record %d has %d incorrect answers",
				ErrMalformedRecord, i, len(r.IncorrectAnswers))
		}

		correct := html.UnescapeString(r.CorrectAnswer)
		options := buildOptionsWithCorrect(correct, decodeAll(r.IncorrectAnswers), shuffle)

		q, err := entities.NewQuestion(html.UnescapeString(r.Question), options, correct)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedRecord, i, err)
		}

		questions = append(questions, q)
	}

	return questions, nil
}

func buildOptionsWithCorrect(correct string, distractors []string, shuffle func([]string)) []string {
	options := make([]string, 0, 1+len(distractors))
	options = append(options, distractors...)
	options = append(options, correct)

	if shuffle != nil {
		shuffle(options)
	}

	return options
}

func decodeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = html.UnescapeString(s)
	}
	return out
}
