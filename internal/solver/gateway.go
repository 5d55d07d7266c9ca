package solver

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// GenParams are the generation parameters for one gateway call.
type GenParams struct {
	Temperature float64
	MaxTokens   int
}

// Gateway is the model-serving endpoint invoked by each phase. It is an
// explicit dependency of the Solver so tests can inject a scripted
// implementation and callers can wrap a rate-limited one. A Gateway
// must be safe for concurrent independent calls.
type Gateway interface {
	Generate(ctx context.Context, prompt string, params GenParams) (string, error)
}

// modelGateway adapts a langchaingo llms.Model to the Gateway interface.
type modelGateway struct {
	model llms.Model
}

func NewModelGateway(model llms.Model) Gateway {
	return &modelGateway{model: model}
}

func (g *modelGateway) Generate(ctx context.Context, prompt string, params GenParams) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
		llms.WithTemperature(params.Temperature),
		llms.WithMaxTokens(params.MaxTokens),
	)
}
