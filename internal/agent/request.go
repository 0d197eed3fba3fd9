package agent

import (
	"github.com/tmarsden/orc/internal/llm"
)

// loopSystemPrompt is the fixed system instruction for every round trip.
const loopSystemPrompt = `You are a helpful assistant with access to tools. ` +
	`Use the provided tools whenever they help you answer the request. ` +
	`When you have everything you need, reply with a terse final answer and make no further tool calls.`

// buildGenConfig assembles the generation parameters for one round trip.
// On the last permitted iteration tool choice is forced to "none" so the
// provider produces a final natural-language answer instead of requesting
// more tools; the iteration bound still holds even if the provider ignores
// the hint.
func (a *Agent) buildGenConfig(req Request, lastIteration bool) llm.GenConfig {
	config := llm.GenConfig{
		Model:       a.model,
		MaxTokens:   req.MaxTokens,
		Temperature: a.temperature,
		ToolChoice:  llm.ToolChoiceAuto,
	}
	if lastIteration {
		config.ToolChoice = llm.ToolChoiceNone
	}
	return config
}
