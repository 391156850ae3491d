package entities

// Phase is the user-visible stage of a quiz session, derived from QuizState.
type Phase string

const (
	PhaseLoading    Phase = "loading"     // questions not fetched yet
	PhaseInProgress Phase = "in_progress" // questions loaded, not all answered
	PhaseCompleted  Phase = "completed"   // every question answered
	PhaseLoadFailed Phase = "load_failed" // fetch failed, terminal until restart
)

// Correctness is a tri-state flag: unknown until an answer is submitted.
type Correctness int

const (
	CorrectnessUnknown Correctness = iota
	CorrectnessCorrect
	CorrectnessIncorrect
)

// QuizState is the single immutable value describing a quiz session.
// It is only ever changed by Reduce.
type QuizState struct {
	Epoch          int         // bumped on every restart; stale events are dropped
	Questions      []Question  // loaded question batch, empty while loading
	CurrentIndex   int         // index of the question on screen, len(Questions) once completed
	Score          int         // number of correct answers so far
	SelectedAnswer string      // non-empty only while feedback is displayed
	IsCorrect      Correctness // correctness of SelectedAnswer
	Completed      bool        // true once the final deferred advance fired
	LoadError      string      // human-readable fetch failure, exclusive with Questions
}

// NewQuizState returns the initial Loading state for the given epoch.
func NewQuizState(epoch int) QuizState {
	return QuizState{Epoch: epoch}
}

// Phase derives the session phase.
func (s QuizState) Phase() Phase {
	switch {
	case s.LoadError != "":
		return PhaseLoadFailed
	case len(s.Questions) == 0:
		return PhaseLoading
	case s.Completed:
		return PhaseCompleted
	default:
		return PhaseInProgress
	}
}

// Total returns the number of loaded questions.
func (s QuizState) Total() int {
	return len(s.Questions)
}

// Current returns the question on screen. ok is false outside InProgress.
func (s QuizState) Current() (Question, bool) {
	if s.Phase() != PhaseInProgress || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// AwaitingAdvance reports whether feedback is on screen and a deferred advance is due.
func (s QuizState) AwaitingAdvance() bool {
	return s.Phase() == PhaseInProgress && s.SelectedAnswer != ""
}

// Event is an input to the quiz reducer.
type Event interface {
	isEvent()
}

// LoadSucceeded carries the question batch fetched for an epoch.
type LoadSucceeded struct {
	Epoch     int
	Questions []Question
}

// LoadFailed carries the fetch failure message for an epoch.
type LoadFailed struct {
	Epoch   int
	Message string
}

// AnswerSubmitted is the player picking an option for the current question.
type AnswerSubmitted struct {
	Option string
}

// AdvanceTimerFired is the deferred advance scheduled after feedback for Index.
type AdvanceTimerFired struct {
	Epoch int
	Index int
}

// RestartRequested reinitialises the whole session.
type RestartRequested struct{}

func (LoadSucceeded) isEvent()     {}
func (LoadFailed) isEvent()        {}
func (AnswerSubmitted) isEvent()   {}
func (AdvanceTimerFired) isEvent() {}
func (RestartRequested) isEvent()  {}

// emptyLoadMessage is stored when the provider returned no questions.
const emptyLoadMessage = "no questions available"

// Reduce applies ev to s and returns the next state. It never mutates s.
// Events that are not valid in the current phase return s unchanged.
func Reduce(s QuizState, ev Event) QuizState {
	switch e := ev.(type) {
	case LoadSucceeded:
		if e.Epoch != s.Epoch || s.Phase() != PhaseLoading {
			return s
		}
		if len(e.Questions) == 0 {
			s.LoadError = emptyLoadMessage
			return s
		}
		qs := make([]Question, len(e.Questions))
		copy(qs, e.Questions)
		s.Questions = qs
		s.CurrentIndex = 0
		return s

	case LoadFailed:
		if e.Epoch != s.Epoch || s.Phase() != PhaseLoading {
			return s
		}
		s.LoadError = e.Message
		if s.LoadError == "" {
			s.LoadError = "failed to fetch questions"
		}
		return s

	case AnswerSubmitted:
		if s.Phase() != PhaseInProgress || s.SelectedAnswer != "" || e.Option == "" {
			return s
		}
		s.SelectedAnswer = e.Option
		if s.Questions[s.CurrentIndex].IsCorrect(e.Option) {
			s.IsCorrect = CorrectnessCorrect
			s.Score++
		} else {
			s.IsCorrect = CorrectnessIncorrect
		}
		return s

	case AdvanceTimerFired:
		if e.Epoch != s.Epoch || e.Index != s.CurrentIndex || !s.AwaitingAdvance() {
			return s
		}
		s.SelectedAnswer = ""
		s.IsCorrect = CorrectnessUnknown
		s.CurrentIndex++
		if s.CurrentIndex >= len(s.Questions) {
			s.CurrentIndex = len(s.Questions)
			s.Completed = true
		}
		return s

	case RestartRequested:
		return NewQuizState(s.Epoch + 1)
	}

	return s
}
