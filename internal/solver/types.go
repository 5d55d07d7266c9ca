package solver

// Status is the terminal outcome of a solve call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ExecutionResult is the structured output of the executor phase.
type ExecutionResult struct {
	ProposedAnswer string `json:"proposed_answer"`
	Explanation    string `json:"explanation"`
	// Intermediate carries free-form working notes. It is shown to the
	// verifier for context but must never reach the user-facing summary.
	Intermediate string `json:"intermediate,omitempty"`
}

// CheckItem is a single named pass/fail assertion from the verifier.
type CheckItem struct {
	CheckName string `json:"check_name"`
	Passed    bool   `json:"passed"`
	Details   string `json:"details"`
}

// VerificationResult is the structured output of the verifier phase.
// Passed is the sole gate for loop termination.
type VerificationResult struct {
	Passed bool        `json:"passed"`
	Checks []CheckItem `json:"checks"`
	Issues string      `json:"issues"`
}

// Metadata accumulates across attempts within one solve call.
// Plan holds the last attempt's plan; Checks is the concatenation of
// every attempt's check items in attempt order; Retries is the
// zero-based index of the attempt that produced the final result.
type Metadata struct {
	Plan    string      `json:"plan"`
	Checks  []CheckItem `json:"checks"`
	Retries int         `json:"retries"`
}

// SolveResult is the externally visible outcome of a solve call.
type SolveResult struct {
	Answer    string   `json:"answer"`
	Status    Status   `json:"status"`
	Reasoning string   `json:"reasoning_visible_to_user"`
	Metadata  Metadata `json:"metadata"`
}
