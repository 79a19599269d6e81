package tfljourney

import (
	"context"
	"net/http"
	"testing"

	"github.com/openai/openai-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfljourney/testutil"
	"tfljourney/tools"
)

// toolMessages extracts tool-role messages from a recorded request, keyed by
// tool call id.
func toolMessages(params openai.ChatCompletionNewParams) map[string]string {
	out := make(map[string]string)
	for _, m := range params.Messages {
		if m.OfTool != nil {
			out[m.OfTool.ToolCallID] = m.OfTool.Content.OfString.Value
		}
	}
	return out
}

func TestAgent_PlainAnswer(t *testing.T) {
	reg := newTestToolset(t, testutil.NewStubAPI())
	script := testutil.NewScriptedCompletions(
		testutil.AssistantText("Take the Northern line from Camden Town to Bank, then the Central line to Liverpool Street."),
	)
	agent := New(script, reg)

	answer, err := agent.Run(context.Background(), "how do i get from camden town to liverpool street?")
	require.NoError(t, err)
	assert.Contains(t, answer, "Northern line")

	reqs := script.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].Tools, 3, "all three tools are advertised to the model")
	require.Len(t, reqs[0].Messages, 2)
	assert.NotNil(t, reqs[0].Messages[0].OfSystem)
	assert.NotNil(t, reqs[0].Messages[1].OfUser)
}

func TestAgent_ToolCallRoundTrip(t *testing.T) {
	stub := testutil.NewStubAPI().Route("/StopPoint/Type/", http.StatusOK, metroStationsBody)
	reg := newTestToolset(t, stub)
	script := testutil.NewScriptedCompletions(
		testutil.AssistantToolCalls(testutil.ToolCallSpec{
			ID:   "call_1",
			Name: "stop_point_list",
			Args: `{"stop_point_type": "NaptanMetroStation"}`,
		}),
		testutil.AssistantText("Found the stations."),
	)
	agent := New(script, reg)

	answer, err := agent.Run(context.Background(), "list the underground stations")
	require.NoError(t, err)
	assert.Equal(t, "Found the stations.", answer)

	reqs := script.Requests()
	require.Len(t, reqs, 2)

	// The follow-up request replays the assistant tool call and its result.
	var sawAssistant bool
	for _, m := range reqs[1].Messages {
		if m.OfAssistant != nil && len(m.OfAssistant.ToolCalls) == 1 {
			sawAssistant = true
			assert.Equal(t, "call_1", m.OfAssistant.ToolCalls[0].OfFunction.ID)
		}
	}
	assert.True(t, sawAssistant)

	tms := toolMessages(reqs[1])
	require.Contains(t, tms, "call_1")
	assert.Contains(t, tms["call_1"], "Camden Town Underground Station")
	assert.NotContains(t, tms["call_1"], "Oxford Circus", "filtered stop points never reach the model")
}

func TestAgent_RetryableErrorIsFedBack(t *testing.T) {
	reg := newTestToolset(t, testutil.NewStubAPI()) // 404 on every lookup
	script := testutil.NewScriptedCompletions(
		testutil.AssistantToolCalls(testutil.ToolCallSpec{
			ID:   "call_1",
			Name: "stop_point_list",
			Args: `{"stop_point_type": "Nonsense"}`,
		}),
		testutil.AssistantText("I could not find that stop point type."),
	)
	agent := New(script, reg)

	answer, err := agent.Run(context.Background(), "list nonsense stops")
	require.NoError(t, err)
	assert.Equal(t, "I could not find that stop point type.", answer)

	reqs := script.Requests()
	require.Len(t, reqs, 2)
	tms := toolMessages(reqs[1])
	require.Contains(t, tms, "call_1")
	assert.Contains(t, tms["call_1"], "invalid stop point type provided!")
	assert.Contains(t, tms["call_1"], "Fix the arguments and try again.")
}

func TestAgent_RetryBudgetExhausted(t *testing.T) {
	reg := newTestToolset(t, testutil.NewStubAPI())
	script := testutil.NewScriptedCompletions(
		testutil.AssistantToolCalls(testutil.ToolCallSpec{
			ID:   "call_1",
			Name: "stop_point_list",
			Args: `{"stop_point_type": "Nonsense"}`,
		}),
	)
	agent := New(script, reg, WithRetries(0))

	_, err := agent.Run(context.Background(), "list nonsense stops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry budget")
	assert.Contains(t, err.Error(), "stop_point_list")
}

func TestAgent_FatalToolErrorAbortsRun(t *testing.T) {
	stub := testutil.NewStubAPI().
		Route("/StopPoint/Type/", http.StatusInternalServerError, `{"message":"boom"}`)
	reg := newTestToolset(t, stub)
	script := testutil.NewScriptedCompletions(
		testutil.AssistantToolCalls(testutil.ToolCallSpec{
			ID:   "call_1",
			Name: "stop_point_list",
			Args: `{"stop_point_type": "NaptanMetroStation"}`,
		}),
		testutil.AssistantText("never reached"),
	)
	agent := New(script, reg)

	_, err := agent.Run(context.Background(), "list the underground stations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop_point_list")
	assert.Len(t, script.Requests(), 1, "a fatal tool error ends the run without another model turn")
}

func TestAgent_UnknownToolIsFatal(t *testing.T) {
	reg := newTestToolset(t, testutil.NewStubAPI())
	script := testutil.NewScriptedCompletions(
		testutil.AssistantToolCalls(testutil.ToolCallSpec{
			ID:   "call_1",
			Name: "teleport",
			Args: `{}`,
		}),
	)
	agent := New(script, reg)

	_, err := agent.Run(context.Background(), "beam me up")
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrToolNotFound)
}

func TestAgent_MaxTurns(t *testing.T) {
	stub := testutil.NewStubAPI().
		Route("/StopPoint/meta/stoptypes", http.StatusOK, `["NaptanMetroStation"]`)
	reg := newTestToolset(t, stub)
	script := testutil.NewScriptedCompletions(
		testutil.AssistantToolCalls(testutil.ToolCallSpec{
			ID:   "call_1",
			Name: "stop_point_types",
			Args: `{}`,
		}),
		testutil.AssistantText("never reached"),
	)
	agent := New(script, reg, WithMaxTurns(1))

	_, err := agent.Run(context.Background(), "what stop point types exist?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no final answer after 1 turns")
}

func TestAgent_CompletionErrorSurfaces(t *testing.T) {
	reg := newTestToolset(t, testutil.NewStubAPI())
	agent := New(testutil.NewScriptedCompletions(), reg)

	_, err := agent.Run(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}
