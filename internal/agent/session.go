package agent

import (
	"github.com/google/uuid"

	"github.com/temirov/scout/internal/commands"
)

// State is a step of the session state machine.
type State int

// Session states in the order a passing iteration visits them.
const (
	StateUnderstanding State = iota
	StatePlanning
	StateExecuting
	StateAnswering
	StateReviewing
	StateDone
)

var stateNames = map[State]string{
	StateUnderstanding: "understanding",
	StatePlanning:      "planning",
	StateExecuting:     "executing",
	StateAnswering:     "answering",
	StateReviewing:     "reviewing",
	StateDone:          "done",
}

func (state State) String() string {
	if name, found := stateNames[state]; found {
		return name
	}
	return "unknown"
}

// Session holds everything gathered while answering one question. A session is created for each
// question and owned by the controller that runs it.
type Session struct {
	ID             string
	Question       string
	Intent         string
	Plan           []string
	CommandResults []commands.CommandResult
	Answer         string
	Answered       bool
	ReviewVerdict  string
	Iterations     int
	State          State
}

func newSession(question string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Question: question,
		State:    StateUnderstanding,
	}
}
