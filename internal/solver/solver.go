package solver

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/nkapur/solvent/internal/observability"
)

// failedReasoning is shown when every attempt died before producing an
// execution result, so there is nothing to summarize.
const failedReasoning = "The agent could not find a consistent solution after verification."

// Solver drives the plan -> execute -> verify pipeline against an
// injected model gateway. A Solver is stateless between Solve calls and
// safe for concurrent use as long as its Gateway is.
type Solver struct {
	Gateway Gateway
	Prompts *PromptManager
	Logger  *observability.Logger
	Params  PhaseParams
}

func New(gateway Gateway, prompts *PromptManager, logger *observability.Logger) *Solver {
	if prompts == nil {
		prompts = NewPromptManager("")
	}
	return &Solver{
		Gateway: gateway,
		Prompts: prompts,
		Logger:  logger,
		Params:  DefaultPhaseParams(),
	}
}

// The solve loop is an explicit state machine. Attempt counting lives
// in loop state, not in error-handling control flow, so the max-attempts
// boundary is testable in isolation from the gateway.
type state int

const (
	stateAttemptStart state = iota
	statePlanning
	stateExecuting
	stateVerifying
	stateAccepted
	stateExhausted
)

// Solve answers a word problem, retrying the full pipeline until the
// verifier accepts or the retry budget is spent. maxRetries counts
// attempts beyond the first: 0 means exactly one attempt. Gateway
// failures and malformed model output each consume one attempt and
// never escape; the only error returned is a *ConfigError for
// precondition violations.
func (s *Solver) Solve(ctx context.Context, question string, maxRetries int) (SolveResult, error) {
	if strings.TrimSpace(question) == "" {
		return SolveResult{}, &ConfigError{Reason: "question must not be empty"}
	}
	if maxRetries < 0 {
		return SolveResult{}, &ConfigError{Reason: "max_retries must not be negative"}
	}
	if s.Gateway == nil {
		return SolveResult{}, &ConfigError{Reason: "no model gateway configured"}
	}

	defer observability.SetPhase(observability.PhaseIdle, "")

	var (
		attempt  int
		planText string
		exec     *ExecutionResult
		meta     Metadata
	)

	st := stateAttemptStart
	for {
		switch st {
		case stateAttemptStart:
			// Fresh attempt: nothing carries over except accumulated
			// checks and the counter. meta.Plan keeps the newest plan
			// produced so far, so an attempt that dies in planning
			// leaves the previous attempt's plan in the failed result.
			meta.Retries = attempt
			exec = nil
			st = statePlanning

		case statePlanning:
			p, err := s.plan(ctx, question, attempt)
			if err != nil {
				st = s.failAttempt(&attempt, maxRetries, phasePlanner, err)
				continue
			}
			planText = p
			meta.Plan = p
			s.Logger.LogPlan(attempt, p)
			st = stateExecuting

		case stateExecuting:
			res, err := s.execute(ctx, question, planText, attempt)
			if err != nil {
				st = s.failAttempt(&attempt, maxRetries, phaseExecutor, err)
				continue
			}
			exec = &res
			s.Logger.LogExecution(attempt, res.ProposedAnswer)
			st = stateVerifying

		case stateVerifying:
			verdict, err := s.verify(ctx, question, *exec, attempt)
			if err != nil {
				st = s.failAttempt(&attempt, maxRetries, phaseVerifier, err)
				continue
			}
			meta.Checks = append(meta.Checks, verdict.Checks...)
			s.Logger.LogVerification(attempt, verdict.Passed, verdict.Issues)
			if verdict.Passed {
				st = stateAccepted
				continue
			}
			log.Printf("[Solver] attempt %d rejected by verifier: %s", attempt, verdict.Issues)
			if attempt < maxRetries {
				attempt++
				st = stateAttemptStart
			} else {
				st = stateExhausted
			}

		case stateAccepted:
			return SolveResult{
				Answer:    exec.ProposedAnswer,
				Status:    StatusSuccess,
				Reasoning: Summarize(*exec),
				Metadata:  meta,
			}, nil

		case stateExhausted:
			res := SolveResult{
				Status:    StatusFailed,
				Reasoning: failedReasoning,
				Metadata:  meta,
			}
			// Surface the last attempt's unverified answer when the
			// attempt made it through execution before being rejected.
			if exec != nil {
				res.Answer = exec.ProposedAnswer
				res.Reasoning = Summarize(*exec)
			}
			return res, nil
		}
	}
}

// failAttempt converts a phase error into retry-or-exhaust. Both error
// kinds consume one attempt; they are logged apart because a malformed
// response points at the model while a gateway failure points at the
// transport.
func (s *Solver) failAttempt(attempt *int, maxRetries int, phase string, err error) state {
	reason := "gateway failure"
	if errors.Is(err, ErrMalformedOutput) {
		reason = "malformed output"
	}
	log.Printf("[Solver] attempt %d failed in %s (%s): %v", *attempt, phase, reason, err)
	s.Logger.LogAttemptFailure(*attempt, phase, reason)

	if *attempt < maxRetries {
		*attempt++
		return stateAttemptStart
	}
	return stateExhausted
}
