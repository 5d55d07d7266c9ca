package solver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes markdown code-fence markers the model sometimes
// wraps around its JSON despite instructions, and trims whitespace.
func stripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// executionPayload mirrors the executor's JSON schema. Pointer fields
// let us distinguish "missing" from "empty" during validation.
type executionPayload struct {
	ProposedAnswer *string         `json:"proposed_answer"`
	Explanation    *string         `json:"explanation"`
	Intermediate   json.RawMessage `json:"intermediate"`
}

func parseExecution(raw string) (ExecutionResult, error) {
	cleaned := stripFences(raw)

	var payload executionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return ExecutionResult{}, fmt.Errorf("%w: executor returned invalid JSON: %v", ErrMalformedOutput, err)
	}
	if payload.ProposedAnswer == nil {
		return ExecutionResult{}, fmt.Errorf("%w: executor response missing proposed_answer", ErrMalformedOutput)
	}
	if payload.Explanation == nil {
		return ExecutionResult{}, fmt.Errorf("%w: executor response missing explanation", ErrMalformedOutput)
	}

	res := ExecutionResult{
		ProposedAnswer: strings.TrimSpace(*payload.ProposedAnswer),
		Explanation:    strings.TrimSpace(*payload.Explanation),
	}
	// Intermediate may be a string, an object, or absent. Keep the raw
	// JSON text; it is only ever echoed into the verifier prompt.
	if len(payload.Intermediate) > 0 && string(payload.Intermediate) != "null" {
		var s string
		if err := json.Unmarshal(payload.Intermediate, &s); err == nil {
			res.Intermediate = s
		} else {
			res.Intermediate = string(payload.Intermediate)
		}
	}
	return res, nil
}

type checkPayload struct {
	CheckName *string `json:"check_name"`
	Passed    *bool   `json:"passed"`
	Details   string  `json:"details"`
}

type verificationPayload struct {
	Passed *bool          `json:"passed"`
	Checks []checkPayload `json:"checks"`
	Issues string         `json:"issues"`
}

// parseVerification decodes the verifier's verdict. A missing passed
// flag or a malformed check entry is a parse error, not a silent
// passed=false: a parse failure indicts the model, a negative verdict
// indicts the answer, and the orchestrator logs them differently.
func parseVerification(raw string) (VerificationResult, error) {
	cleaned := stripFences(raw)

	var payload verificationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return VerificationResult{}, fmt.Errorf("%w: verifier returned invalid JSON: %v", ErrMalformedOutput, err)
	}
	if payload.Passed == nil {
		return VerificationResult{}, fmt.Errorf("%w: verifier response missing passed flag", ErrMalformedOutput)
	}

	res := VerificationResult{
		Passed: *payload.Passed,
		Issues: strings.TrimSpace(payload.Issues),
	}
	for i, c := range payload.Checks {
		if c.CheckName == nil || strings.TrimSpace(*c.CheckName) == "" {
			return VerificationResult{}, fmt.Errorf("%w: verifier check %d missing check_name", ErrMalformedOutput, i)
		}
		if c.Passed == nil {
			return VerificationResult{}, fmt.Errorf("%w: verifier check %q missing passed flag", ErrMalformedOutput, *c.CheckName)
		}
		res.Checks = append(res.Checks, CheckItem{
			CheckName: strings.TrimSpace(*c.CheckName),
			Passed:    *c.Passed,
			Details:   strings.TrimSpace(c.Details),
		})
	}
	return res, nil
}
