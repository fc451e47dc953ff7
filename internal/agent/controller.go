// Package agent runs the understand, plan, execute, answer and review loop that answers
// questions about a repository.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/scout/internal/commands"
	"github.com/temirov/scout/internal/llm"
	"github.com/temirov/scout/internal/tokenizer"
	"github.com/temirov/scout/internal/utils"
)

// DefaultMaxIterations bounds the plan to review cycles of one question.
const DefaultMaxIterations = 3

// IterationLimitNoteFormat is appended to an answer that never passed review.
const IterationLimitNoteFormat = "\n\n(Note: reached iteration limit of %d attempts without a passing review.)"

const (
	logFieldSessionID  = "session_id"
	logFieldState      = "state"
	logFieldIteration  = "iteration"
	logMessageStep     = "session step"
	logMessageIntent   = "intent extraction"
	logMessageNoIntent = "intent extraction returned no choices"
	logMessagePlan     = "plan"
	logMessageAnswer   = "generated answer"
	logMessageReview   = "review result"
	logMessageRetry    = "review failed, re-planning"
	logMessageLimit    = "reached iteration limit"
	logMessageTokens   = "prompt tokens"
	logMessageTokenErr = "prompt token estimate failed"
)

// PlanExecutor runs plan commands and returns their results in plan order.
type PlanExecutor interface {
	ExecutePlan(ctx context.Context, plan []string) ([]commands.CommandResult, error)
}

// Options configures a Controller.
type Options struct {
	// ModelID is passed to every completion. Empty selects the completer's default model.
	ModelID string
	// MaxIterations bounds plan to review cycles. Values below one use DefaultMaxIterations.
	MaxIterations int
	// Review classifies review responses. The zero value uses DefaultReviewPolicy.
	Review ReviewPolicy
	// TokenCounter, when set, estimates prompt sizes for debug logs.
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

// Result is the outcome of a question.
type Result struct {
	SessionID    string
	Answer       string
	Iterations   int
	LimitReached bool
}

// Controller answers questions with a language model and plan executor.
type Controller struct {
	completer llm.Completer
	executor  PlanExecutor
	options   Options
	logger    *zap.Logger
}

// NewController constructs a Controller.
func NewController(completer llm.Completer, executor PlanExecutor, options Options) *Controller {
	if options.MaxIterations < 1 {
		options.MaxIterations = DefaultMaxIterations
	}
	if len(options.Review.Affirmative) == 0 && len(options.Review.Negative) == 0 {
		options.Review = DefaultReviewPolicy()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{completer: completer, executor: executor, options: options, logger: logger}
}

// ProcessQuery answers question with a fresh session. Model and execution failures abort the
// question. A review that never passes ends the loop after MaxIterations cycles and returns the
// last answer with an iteration limit note.
func (controller *Controller) ProcessQuery(ctx context.Context, question string) (Result, error) {
	session := newSession(question)
	logger := controller.logger.With(zap.String(logFieldSessionID, session.ID))

	if understandError := controller.understand(ctx, session, logger); understandError != nil {
		return Result{}, understandError
	}

	for {
		session.Iterations++
		iterationLogger := logger.With(zap.Int(logFieldIteration, session.Iterations))

		if planError := controller.plan(ctx, session, iterationLogger); planError != nil {
			return Result{}, planError
		}
		if executeError := controller.execute(ctx, session, iterationLogger); executeError != nil {
			return Result{}, executeError
		}
		if answerError := controller.answer(ctx, session, iterationLogger); answerError != nil {
			return Result{}, answerError
		}
		passed, reviewError := controller.review(ctx, session, iterationLogger)
		if reviewError != nil {
			return Result{}, reviewError
		}
		if passed {
			controller.transition(session, StateDone, iterationLogger)
			return Result{SessionID: session.ID, Answer: session.Answer, Iterations: session.Iterations}, nil
		}
		if session.Iterations >= controller.options.MaxIterations {
			break
		}
		iterationLogger.Info(logMessageRetry, zap.Int("next_iteration", session.Iterations+1))
	}

	logger.Warn(logMessageLimit, zap.Int(logFieldIteration, session.Iterations))
	controller.transition(session, StateDone, logger)
	if !session.Answered {
		return Result{}, ErrNoAnswerProduced
	}
	return Result{
		SessionID:    session.ID,
		Answer:       session.Answer + fmt.Sprintf(IterationLimitNoteFormat, controller.options.MaxIterations),
		Iterations:   session.Iterations,
		LimitReached: true,
	}, nil
}

func (controller *Controller) understand(ctx context.Context, session *Session, logger *zap.Logger) error {
	controller.transition(session, StateUnderstanding, logger)
	intent, found, completeError := controller.complete(ctx, StateUnderstanding, understandingMessages(session.Question), logger)
	if completeError != nil {
		return completeError
	}
	if !found {
		logger.Warn(logMessageNoIntent)
		return nil
	}
	session.Intent = intent
	logger.Debug(logMessageIntent, zap.String("intent", intent))
	return nil
}

func (controller *Controller) plan(ctx context.Context, session *Session, logger *zap.Logger) error {
	controller.transition(session, StatePlanning, logger)
	response, found, completeError := controller.complete(ctx, StatePlanning, planningMessages(session), logger)
	if completeError != nil {
		return completeError
	}
	if !found {
		return newStepError(StatePlanning, ErrNoChoices)
	}
	planCommands, extractError := ExtractPlanCommands(response)
	if extractError != nil {
		return newStepError(StatePlanning, extractError)
	}
	session.Plan = planCommands
	logger.Info(logMessagePlan, zap.Strings("commands", planCommands))
	return nil
}

func (controller *Controller) execute(ctx context.Context, session *Session, logger *zap.Logger) error {
	controller.transition(session, StateExecuting, logger)
	results, executeError := controller.executor.ExecutePlan(ctx, session.Plan)
	if executeError != nil {
		return newStepError(StateExecuting, executeError)
	}
	session.CommandResults = results
	return nil
}

func (controller *Controller) answer(ctx context.Context, session *Session, logger *zap.Logger) error {
	controller.transition(session, StateAnswering, logger)
	messages := answeringMessages(session.Question, session.CommandResults)
	answer, found, completeError := controller.complete(ctx, StateAnswering, messages, logger)
	if completeError != nil {
		return completeError
	}
	if !found {
		return newStepError(StateAnswering, ErrNoChoices)
	}
	session.Answer = answer
	session.Answered = true
	logger.Debug(logMessageAnswer, zap.String("preview", utils.TrimPreview(answer, utils.CommandPreviewLength)))
	return nil
}

func (controller *Controller) review(ctx context.Context, session *Session, logger *zap.Logger) (bool, error) {
	controller.transition(session, StateReviewing, logger)
	if !session.Answered {
		return false, newStepError(StateReviewing, ErrNoAnswerToReview)
	}
	verdict, found, completeError := controller.complete(ctx, StateReviewing, reviewingMessages(session.Question, session.Answer), logger)
	if completeError != nil {
		return false, completeError
	}
	if !found {
		return false, newStepError(StateReviewing, ErrNoChoices)
	}
	session.ReviewVerdict = verdict
	passed := controller.options.Review.Passed(verdict)
	logger.Info(logMessageReview, zap.Bool("passed", passed), zap.String("verdict", utils.TrimPreview(verdict, utils.CommandPreviewLength)))
	return passed, nil
}

// complete sends messages and returns the first choice. A capability failure is returned as a
// StepError for state; a response without choices reports found as false.
func (controller *Controller) complete(ctx context.Context, state State, messages []llm.Message, logger *zap.Logger) (string, bool, error) {
	controller.logPromptTokens(state, messages, logger)
	response, completeError := controller.completer.Complete(ctx, messages, controller.options.ModelID)
	if completeError != nil {
		return "", false, newStepError(state, completeError)
	}
	choice, found := response.FirstChoice()
	if !found {
		return "", false, nil
	}
	return choice.Content, true, nil
}

func (controller *Controller) logPromptTokens(state State, messages []llm.Message, logger *zap.Logger) {
	if controller.options.TokenCounter == nil {
		return
	}
	tokens, countError := tokenizer.CountMessages(controller.options.TokenCounter, messages)
	if countError != nil {
		logger.Debug(logMessageTokenErr, zap.Stringer(logFieldState, state), zap.Error(countError))
		return
	}
	logger.Debug(logMessageTokens,
		zap.Stringer(logFieldState, state),
		zap.Int("tokens", tokens),
		zap.String("tokenizer", controller.options.TokenCounter.Name()),
	)
}

func (controller *Controller) transition(session *Session, state State, logger *zap.Logger) {
	session.State = state
	logger.Debug(logMessageStep, zap.Stringer(logFieldState, state))
}
