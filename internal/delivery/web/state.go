package web

import (
	"github.com/aliskhannn/trivia-quiz/internal/delivery/view"
	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
)

// stateResponse is the public view of a session. The correct answer is only
// included once the player has answered the current question.
type stateResponse struct {
	Phase         entities.Phase   `json:"phase"`
	Epoch         int              `json:"epoch"`
	Index         int              `json:"index"`
	Total         int              `json:"total"`
	Score         int              `json:"score"`
	Counter       string           `json:"counter,omitempty"`
	Question      *questionPayload `json:"question,omitempty"`
	Selected      string           `json:"selected,omitempty"`
	Correct       *bool            `json:"correct,omitempty"`
	CorrectAnswer string           `json:"correct_answer,omitempty"`
	Feedback      string           `json:"feedback,omitempty"`
	Summary       string           `json:"summary,omitempty"`
	Error         string           `json:"error,omitempty"`
}

type questionPayload struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string         `json:"error"`
	State *stateResponse `json:"state,omitempty"`
}

type resultPayload struct {
	Frontend    string  `json:"frontend"`
	Score       int     `json:"score"`
	Total       int     `json:"total"`
	Percent     float64 `json:"percent"`
	CompletedAt string  `json:"completed_at"`
}

func newStateResponse(st entities.QuizState) stateResponse {
	resp := stateResponse{
		Phase: st.Phase(),
		Epoch: st.Epoch,
		Index: st.CurrentIndex,
		Total: st.Total(),
		Score: st.Score,
	}

	switch resp.Phase {
	case entities.PhaseLoadFailed:
		resp.Error = view.LoadError(st)
	case entities.PhaseCompleted:
		resp.Summary = view.Score(st)
	case entities.PhaseInProgress:
		q, _ := st.Current()
		resp.Counter = view.Counter(st)
		resp.Question = &questionPayload{
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		}
		if st.SelectedAnswer != "" {
			correct := st.IsCorrect == entities.CorrectnessCorrect
			resp.Selected = st.SelectedAnswer
			resp.Correct = &correct
			resp.CorrectAnswer = q.CorrectAnswer
			resp.Feedback = view.Feedback(st)
		}
	}

	return resp
}
