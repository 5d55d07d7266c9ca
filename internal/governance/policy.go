package governance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of an inbound question to be evaluated.
type Request struct {
	Question string
	Source   string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates inbound questions against a set of rules
// before they reach the solve pipeline.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	MaxQuestionLen int
	DeniedRegex    []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		MaxQuestionLen: 2000,
		DeniedRegex:    make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Question) == "" {
		return Result{
			Effect: EffectDeny,
			Reason: "Question is empty",
		}, nil
	}

	if e.MaxQuestionLen > 0 && len(req.Question) > e.MaxQuestionLen {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Question exceeds the maximum length of %d characters", e.MaxQuestionLen),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Question) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Question matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
