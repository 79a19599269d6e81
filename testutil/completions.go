package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ScriptedCompletions is a chat-completions double that returns canned
// responses in order and records every request it receives. It implements
// the agent's CompletionsClient interface.
type ScriptedCompletions struct {
	mu        sync.Mutex
	responses []*openai.ChatCompletion
	requests  []openai.ChatCompletionNewParams
}

// NewScriptedCompletions creates a double that plays back the given
// responses in order. A call past the end of the script fails.
func NewScriptedCompletions(responses ...*openai.ChatCompletion) *ScriptedCompletions {
	return &ScriptedCompletions{responses: responses}
}

// New pops the next scripted response.
func (s *ScriptedCompletions) New(_ context.Context, params openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, params)
	if len(s.responses) == 0 {
		return nil, errors.New("scripted completions exhausted")
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

// Requests returns a copy of the requests seen so far.
func (s *ScriptedCompletions) Requests() []openai.ChatCompletionNewParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]openai.ChatCompletionNewParams(nil), s.requests...)
}

// AssistantText builds a completion whose single choice is a plain text
// answer.
func AssistantText(text string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    "assistant",
				Content: text,
			},
		}},
	}
}

// ToolCallSpec describes one scripted tool call.
type ToolCallSpec struct {
	ID   string
	Name string
	Args string
}

// AssistantToolCalls builds a completion whose single choice requests the
// given tool calls.
func AssistantToolCalls(calls ...ToolCallSpec) *openai.ChatCompletion {
	msg := openai.ChatCompletionMessage{Role: "assistant"}
	for _, c := range calls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ChatCompletionMessageToolCallUnion{
			ID:   c.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageFunctionToolCallFunction{
				Name:      c.Name,
				Arguments: c.Args,
			},
		})
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{Message: msg}},
	}
}
