package tfljourney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"tfljourney/tools"
)

// systemPrompt seeds every run with the assistant persona and tool policy.
const systemPrompt = "You are an agent that can help plan journeys on Transport for London (TFL). " +
	"Use the stop_point apis to get information about TFL stop points, " +
	"then use the `journey_planner` tool to return the potential journeys between the relevant two stop points. " +
	"Be concise, reply with one sentence."

// CompletionsClient is the slice of the OpenAI chat-completions surface the
// agent needs. *openai.ChatCompletionService implements it; tests use a
// scripted double.
type CompletionsClient interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Agent runs the conversation loop: it sends the prompt and the tool
// definitions to the model, executes requested tool calls through the
// registry, feeds results back, and returns the model's final text.
type Agent struct {
	completions CompletionsClient
	registry    *tools.Registry
	model       openai.ChatModel
	logger      *slog.Logger
	maxTurns    int
	maxRetries  int
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithModel overrides the chat model (default gpt-4o).
func WithModel(model string) AgentOption {
	return func(a *Agent) { a.model = openai.ChatModel(model) }
}

// WithAgentLogger sets the structured logger. Defaults to slog.Default().
func WithAgentLogger(l *slog.Logger) AgentOption {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMaxTurns caps the number of model turns per run.
func WithMaxTurns(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

// WithRetries sets the per-tool self-correction budget (default 2).
func WithRetries(n int) AgentOption {
	return func(a *Agent) {
		if n >= 0 {
			a.maxRetries = n
		}
	}
}

// New creates an Agent over the given completions client and tool registry.
func New(completions CompletionsClient, registry *tools.Registry, opts ...AgentOption) *Agent {
	a := &Agent{
		completions: completions,
		registry:    registry,
		model:       openai.ChatModelGPT4o,
		logger:      slog.Default(),
		maxTurns:    20,
		maxRetries:  2,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes one conversation: seed with the system prompt and the user
// prompt, loop until the model answers without tool calls or a limit is
// hit. Retryable tool failures are returned to the model as tool results
// for self-correction, bounded by the per-tool retry budget; fatal tool
// failures abort the run.
func (a *Agent) Run(ctx context.Context, prompt string) (string, error) {
	runID := uuid.NewString()
	log := a.logger.With("run_id", runID)

	params := openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Tools: a.toolParams(),
	}
	retries := make(map[string]int)

	for turn := 0; turn < a.maxTurns; turn++ {
		completion, err := a.completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return "", errors.New("chat completion returned no choices")
		}
		msg := completion.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			log.Info("run finished", "turns", turn+1)
			return msg.Content, nil
		}

		params.Messages = append(params.Messages, assistantParam(msg))

		calls := make([]tools.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			calls = append(calls, tools.ToolCall{
				ID:       tc.ID,
				ToolName: tc.Function.Name,
				Args:     json.RawMessage(tc.Function.Arguments),
			})
		}
		for _, res := range a.registry.ExecuteBatch(ctx, calls) {
			switch {
			case res.Error == nil:
				params.Messages = append(params.Messages, openai.ToolMessage(string(res.Result), res.CallID))
			case tools.IsClientError(res.Error):
				retries[res.ToolName]++
				if retries[res.ToolName] > a.maxRetries {
					return "", fmt.Errorf("tool %s: retry budget (%d) exhausted: %w", res.ToolName, a.maxRetries, res.Error)
				}
				log.Warn("tool asked for retry", "tool", res.ToolName, "attempt", retries[res.ToolName], "error", res.Error)
				params.Messages = append(params.Messages,
					openai.ToolMessage(res.Error.Error()+" Fix the arguments and try again.", res.CallID))
			default:
				return "", fmt.Errorf("tool %s: %w", res.ToolName, res.Error)
			}
		}
	}
	return "", fmt.Errorf("no final answer after %d turns", a.maxTurns)
}

// toolParams exports the registry's tools as chat-completion function
// definitions.
func (a *Agent) toolParams() []openai.ChatCompletionToolUnionParam {
	all := a.registry.GetAllTools()
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(all))
	for _, t := range all {
		out = append(out, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name(),
					Description: openai.String(t.Description()),
					Parameters:  openai.FunctionParameters(t.Parameters()),
				},
			},
		})
	}
	return out
}

// assistantParam rebuilds the assistant turn from the response message so
// the next request carries the tool-call context. Built by hand (rather
// than ToParam) so scripted completions without raw JSON behave the same
// as live ones.
func assistantParam(msg openai.ChatCompletionMessage) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		assistant.Content.OfString = openai.String(msg.Content)
	}
	for _, tc := range msg.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}
