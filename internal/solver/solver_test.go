package solver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedResponse struct {
	text string
	err  error
}

// scriptedGateway routes each call to a per-phase queue by the role tag
// embedded in the prompt template.
type scriptedGateway struct {
	planner  []scriptedResponse
	executor []scriptedResponse
	verifier []scriptedResponse

	plannerCalls  int
	executorCalls int
	verifierCalls int
}

func (g *scriptedGateway) next(queue []scriptedResponse, idx int) (string, error) {
	if idx >= len(queue) {
		return "", errors.New("no scripted response available")
	}
	r := queue[idx]
	return r.text, r.err
}

func (g *scriptedGateway) Generate(_ context.Context, prompt string, _ GenParams) (string, error) {
	switch {
	case strings.Contains(prompt, "[PLANNER]"):
		defer func() { g.plannerCalls++ }()
		return g.next(g.planner, g.plannerCalls)
	case strings.Contains(prompt, "[EXECUTOR]"):
		defer func() { g.executorCalls++ }()
		return g.next(g.executor, g.executorCalls)
	case strings.Contains(prompt, "[VERIFIER]"):
		defer func() { g.verifierCalls++ }()
		return g.next(g.verifier, g.verifierCalls)
	}
	return "", errors.New("unknown prompt role")
}

func ok(text string) scriptedResponse  { return scriptedResponse{text: text} }
func fail(msg string) scriptedResponse { return scriptedResponse{err: errors.New(msg)} }

const goodPlan = "1. Extract quantities.\n2. Add them.\n3. Format the answer."

const goodExec = `{"proposed_answer": "4", "explanation": "2 plus 2 equals 4.", "intermediate": "2+2=4"}`

const passVerdict = `{"passed": true, "checks": [{"check_name": "arithmetic", "passed": true, "details": "sum is correct"}], "issues": ""}`

const rejectVerdict = `{"passed": false, "checks": [{"check_name": "arithmetic", "passed": false, "details": "sum is wrong"}], "issues": "arithmetic error"}`

func newTestSolver(gw Gateway) *Solver {
	return New(gw, nil, nil)
}

func TestSolveFirstAttemptSuccess(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan)},
		executor: []scriptedResponse{ok(goodExec)},
		verifier: []scriptedResponse{ok(passVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 1)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "4", res.Answer)
	assert.Equal(t, 0, res.Metadata.Retries)
	assert.Equal(t, goodPlan, res.Metadata.Plan)
	require.Len(t, res.Metadata.Checks, 1)
	assert.Equal(t, "arithmetic", res.Metadata.Checks[0].CheckName)

	// No further attempts once the verifier accepts.
	assert.Equal(t, 1, gw.plannerCalls)
	assert.Equal(t, 1, gw.executorCalls)
	assert.Equal(t, 1, gw.verifierCalls)
}

func TestSolveRejectedWithZeroRetries(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan)},
		executor: []scriptedResponse{ok(goodExec)},
		verifier: []scriptedResponse{ok(rejectVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 0)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 0, res.Metadata.Retries)
	// The last attempt's unverified answer is still surfaced.
	assert.Equal(t, "4", res.Answer)
	require.Len(t, res.Metadata.Checks, 1)
	assert.False(t, res.Metadata.Checks[0].Passed)

	// max_retries = 0 means exactly one attempt.
	assert.Equal(t, 1, gw.plannerCalls)
}

func TestSolveSucceedsOnThirdAttempt(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan), ok(goodPlan), ok(goodPlan)},
		executor: []scriptedResponse{ok(goodExec), ok(goodExec), ok(goodExec)},
		verifier: []scriptedResponse{ok(rejectVerdict), ok(rejectVerdict), ok(passVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 2)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Metadata.Retries)
	// Checks accumulate across all three attempts, in attempt order.
	require.Len(t, res.Metadata.Checks, 3)
	assert.False(t, res.Metadata.Checks[0].Passed)
	assert.False(t, res.Metadata.Checks[1].Passed)
	assert.True(t, res.Metadata.Checks[2].Passed)

	assert.Equal(t, 3, gw.plannerCalls)
	assert.Equal(t, 3, gw.executorCalls)
	assert.Equal(t, 3, gw.verifierCalls)
}

func TestSolveExhaustedAfterRepeatedRejection(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan), ok(goodPlan), ok(goodPlan)},
		executor: []scriptedResponse{ok(goodExec), ok(goodExec), ok(goodExec)},
		verifier: []scriptedResponse{ok(rejectVerdict), ok(rejectVerdict), ok(rejectVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 2)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 2, res.Metadata.Retries)
	assert.Len(t, res.Metadata.Checks, 3)
	assert.Equal(t, 3, gw.plannerCalls)
}

func TestSolveMalformedExecutorOutputConsumesAttempt(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan), ok(goodPlan)},
		executor: []scriptedResponse{ok("not json at all"), ok(goodExec)},
		verifier: []scriptedResponse{ok(passVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 1)
	require.NoError(t, err, "malformed output must not escape Solve")

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Metadata.Retries)
	// The broken attempt never reached the verifier.
	assert.Equal(t, 1, gw.verifierCalls)
}

func TestSolveMalformedVerifierOutputConsumesAttempt(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan), ok(goodPlan)},
		executor: []scriptedResponse{ok(goodExec), ok(goodExec)},
		verifier: []scriptedResponse{ok(`{"checks": [], "issues": "no verdict"}`), ok(passVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 1)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Metadata.Retries)
	// A parse failure contributes no checks; only the clean attempt does.
	assert.Len(t, res.Metadata.Checks, 1)
}

func TestSolveGatewayFailureConsumesAttempt(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{fail("connection reset"), ok(goodPlan)},
		executor: []scriptedResponse{ok(goodExec)},
		verifier: []scriptedResponse{ok(passVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 1)
	require.NoError(t, err, "gateway failures must not escape Solve")

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Metadata.Retries)
	assert.Equal(t, 2, gw.plannerCalls)
}

func TestSolveAttemptBoundOnPersistentFailure(t *testing.T) {
	gw := &scriptedGateway{
		planner: []scriptedResponse{fail("timeout"), fail("timeout"), fail("timeout"), fail("timeout")},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 2)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 2, res.Metadata.Retries)
	assert.Empty(t, res.Answer)
	assert.Equal(t, failedReasoning, res.Reasoning)
	// At most max_retries+1 attempts.
	assert.Equal(t, 3, gw.plannerCalls)
	assert.Equal(t, 0, gw.executorCalls)
}

func TestSolveExhaustedInPlanningKeepsNewestPlan(t *testing.T) {
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan), fail("timeout")},
		executor: []scriptedResponse{ok(goodExec)},
		verifier: []scriptedResponse{ok(rejectVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 1)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, res.Metadata.Retries)
	// The final attempt never produced a plan; the newest one survives
	// in the metadata.
	assert.Equal(t, goodPlan, res.Metadata.Plan)
	assert.Empty(t, res.Answer)
}

func TestSolveFencedExecutorOutput(t *testing.T) {
	fenced := "```json\n" + goodExec + "\n```"
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan)},
		executor: []scriptedResponse{ok(fenced)},
		verifier: []scriptedResponse{ok(passVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "2+2?", 0)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "4", res.Answer)
}

func TestSolveReasoningNeverLeaksIntermediate(t *testing.T) {
	exec := `{"proposed_answer": "7", "explanation": "Subtract and add.", "intermediate": "SECRET-WORKING-NOTES"}`
	gw := &scriptedGateway{
		planner:  []scriptedResponse{ok(goodPlan)},
		executor: []scriptedResponse{ok(exec)},
		verifier: []scriptedResponse{ok(passVerdict)},
	}

	res, err := newTestSolver(gw).Solve(context.Background(), "15-7+... ?", 0)
	require.NoError(t, err)
	assert.NotContains(t, res.Reasoning, "SECRET-WORKING-NOTES")
}

func TestSolveConfigErrors(t *testing.T) {
	gw := &scriptedGateway{}
	s := newTestSolver(gw)
	ctx := context.Background()

	_, err := s.Solve(ctx, "   ", 1)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	_, err = s.Solve(ctx, "2+2?", -1)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	_, err = New(nil, nil, nil).Solve(ctx, "2+2?", 1)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	// Precondition failures happen before any gateway call.
	assert.Equal(t, 0, gw.plannerCalls)
	assert.Equal(t, 0, gw.executorCalls)
	assert.Equal(t, 0, gw.verifierCalls)
}
