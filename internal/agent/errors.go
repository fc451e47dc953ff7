package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChoices reports a model response without a usable choice.
	ErrNoChoices = errors.New("language model returned no choices")
	// ErrEmptyPlan reports a planning response that contained nothing to run.
	ErrEmptyPlan = errors.New("generated plan contains no commands")
	// ErrNoAnswerToReview reports a review step reached without a synthesized answer.
	ErrNoAnswerToReview = errors.New("no answer available to review")
	// ErrNoAnswerProduced reports that the iteration limit was reached before any answer existed.
	ErrNoAnswerProduced = errors.New("no answer produced before reaching iteration limit")
)

const stepErrorFormat = "%s step failed: %v"

// StepError wraps the failure that aborted a session together with the step it occurred in.
type StepError struct {
	State State
	Err   error
}

func (stepError *StepError) Error() string {
	return fmt.Sprintf(stepErrorFormat, stepError.State, stepError.Err)
}

// Unwrap returns the underlying failure.
func (stepError *StepError) Unwrap() error {
	return stepError.Err
}

func newStepError(state State, err error) *StepError {
	return &StepError{State: state, Err: err}
}
