package entities

import "time"

// QuizResult is the score summary recorded when a session completes.
type QuizResult struct {
	ID          int64     // storage id, zero until recorded
	SessionID   string    // session key the result belongs to
	Frontend    string    // "web", "telegram" or "discord"
	Score       int       // correct answers
	Total       int       // questions in the batch
	StartedAt   time.Time // when the batch finished loading
	CompletedAt time.Time // when the final deferred advance fired
}

// NewQuizResult builds a result from a completed state.
func NewQuizResult(sessionID, frontend string, s QuizState, startedAt time.Time) *QuizResult {
	return &QuizResult{
		SessionID:   sessionID,
		Frontend:    frontend,
		Score:       s.Score,
		Total:       s.Total(),
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
	}
}

// Percentage returns the score as a percentage of Total.
func (r *QuizResult) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) * 100 / float64(r.Total)
}
