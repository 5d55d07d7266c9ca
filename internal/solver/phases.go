package solver

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkapur/solvent/internal/observability"
)

const (
	phasePlanner  = "planner"
	phaseExecutor = "executor"
	phaseVerifier = "verifier"
)

// PhaseParams holds the generation parameters for each phase. The
// planner gets some temperature for plan diversity across retries, the
// executor stays low, and the verifier runs cold.
type PhaseParams struct {
	Planner  GenParams
	Executor GenParams
	Verifier GenParams
}

func DefaultPhaseParams() PhaseParams {
	return PhaseParams{
		Planner:  GenParams{Temperature: 0.4, MaxTokens: 512},
		Executor: GenParams{Temperature: 0.2, MaxTokens: 1024},
		Verifier: GenParams{Temperature: 0.0, MaxTokens: 768},
	}
}

// plan asks the model for a numbered plan. The plan is consumed only as
// context for the executor, so no schema is enforced beyond trimming.
func (s *Solver) plan(ctx context.Context, question string, attempt int) (string, error) {
	observability.SetPhase(observability.PhasePlanning, question)

	prompt := s.Prompts.PlannerPrompt(question)
	raw, err := s.Gateway.Generate(ctx, prompt, s.Params.Planner)
	if err != nil {
		return "", fmt.Errorf("planner: %w: %v", ErrGateway, err)
	}
	s.Logger.LogLLM(phasePlanner, attempt, prompt, raw)

	planText := strings.TrimSpace(stripFences(raw))
	if planText == "" {
		return "", fmt.Errorf("planner: %w: empty plan", ErrMalformedOutput)
	}
	return planText, nil
}

// execute runs the plan and parses the executor's JSON result.
func (s *Solver) execute(ctx context.Context, question, planText string, attempt int) (ExecutionResult, error) {
	observability.SetPhase(observability.PhaseExecuting, question)

	prompt := s.Prompts.ExecutorPrompt(question, planText)
	raw, err := s.Gateway.Generate(ctx, prompt, s.Params.Executor)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("executor: %w: %v", ErrGateway, err)
	}
	s.Logger.LogLLM(phaseExecutor, attempt, prompt, raw)

	return parseExecution(raw)
}

// verify asks the model to judge the execution result and parses the
// verdict.
func (s *Solver) verify(ctx context.Context, question string, exec ExecutionResult, attempt int) (VerificationResult, error) {
	observability.SetPhase(observability.PhaseVerifying, question)

	prompt := s.Prompts.VerifierPrompt(question, exec)
	raw, err := s.Gateway.Generate(ctx, prompt, s.Params.Verifier)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("verifier: %w: %v", ErrGateway, err)
	}
	s.Logger.LogLLM(phaseVerifier, attempt, prompt, raw)

	return parseVerification(raw)
}
