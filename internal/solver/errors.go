package solver

import "errors"

// ErrGateway marks a failed model call (timeout, transport, quota).
// It consumes one attempt and never escapes Solve.
var ErrGateway = errors.New("model gateway failure")

// ErrMalformedOutput marks a model response that failed structural
// parsing or validation. Retried the same way as ErrGateway, but logged
// separately because it points at the model rather than the transport.
var ErrMalformedOutput = errors.New("malformed model output")

// ConfigError is a precondition violation (missing credential, invalid
// retry budget, empty question). It is the only error Solve returns to
// the caller; it is never consumed by the retry policy.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
