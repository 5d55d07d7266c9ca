package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExecution(t *testing.T) {
	raw := `{"proposed_answer": " 42 ", "explanation": "six times seven", "intermediate": "6*7=42"}`
	res, err := parseExecution(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", res.ProposedAnswer)
	assert.Equal(t, "six times seven", res.Explanation)
	assert.Equal(t, "6*7=42", res.Intermediate)
}

func TestParseExecutionFenced(t *testing.T) {
	raw := "```json\n{\"proposed_answer\": \"42\", \"explanation\": \"six times seven\"}\n```"
	res, err := parseExecution(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", res.ProposedAnswer)
	assert.Empty(t, res.Intermediate)
}

func TestParseExecutionIntermediateObject(t *testing.T) {
	// The original schema nests intermediate as an object; keep the raw
	// JSON text rather than rejecting it.
	raw := `{"proposed_answer": "42", "explanation": "ok", "intermediate": {"notes": "6*7"}}`
	res, err := parseExecution(raw)
	require.NoError(t, err)
	assert.Contains(t, res.Intermediate, "notes")
}

func TestParseExecutionMissingFields(t *testing.T) {
	cases := map[string]string{
		"missing proposed_answer": `{"explanation": "ok"}`,
		"missing explanation":     `{"proposed_answer": "42"}`,
		"invalid json":            `{"proposed_answer": "42",`,
		"plain text":              `The answer is 42.`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseExecution(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestParseVerification(t *testing.T) {
	raw := `{
		"passed": false,
		"checks": [
			{"check_name": "arithmetic", "passed": true, "details": "sum ok"},
			{"check_name": "constraints", "passed": false, "details": "count went negative"}
		],
		"issues": "constraint violation"
	}`
	res, err := parseVerification(raw)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.Len(t, res.Checks, 2)
	assert.Equal(t, "constraints", res.Checks[1].CheckName)
	assert.False(t, res.Checks[1].Passed)
	assert.Equal(t, "constraint violation", res.Issues)
}

func TestParseVerificationEmptyChecks(t *testing.T) {
	res, err := parseVerification(`{"passed": true, "checks": [], "issues": ""}`)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Empty(t, res.Checks)
}

func TestParseVerificationMalformed(t *testing.T) {
	cases := map[string]string{
		"missing passed":       `{"checks": [], "issues": ""}`,
		"check missing name":   `{"passed": true, "checks": [{"passed": true, "details": "x"}]}`,
		"check missing passed": `{"passed": true, "checks": [{"check_name": "arith", "details": "x"}]}`,
		"invalid json":         `passed: yes`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseVerification(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}
