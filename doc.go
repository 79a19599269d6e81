// Package tfljourney is a conversational journey-planning assistant for
// the London public transport network.
//
// # Overview
//
// A language model drives the conversation; this package gives it three
// tools over the TFL Unified API and runs the tool-call loop:
//
//   - stop_point_types: the raw list of stop point types (meta endpoint)
//   - stop_point_list: stop points of a given type, filtered to a bounded,
//     relevant subset before entering the model context
//   - journey_planner: unique leg instruction summaries between two
//     naptan identifiers
//
// Pipeline: prompt → Agent.Run → chat completion → tool calls →
// tools.Registry → tfl.Client → tool results → final answer text.
//
// Tool failures are classified at the tool surface: a retryable
// ClientError (e.g. an unknown stop point type, HTTP 404) is fed back to
// the model for self-correction within a bounded retry budget; everything
// else is fatal and ends the run.
//
// # Example
//
//	deps := tfljourney.Deps{
//	    TFL:   tfl.NewClient(tfl.WithAppKey(os.Getenv("TFL_API_KEY"))),
//	    Match: tfl.MatchLocalities("camden", "liverpool"),
//	}
//	reg, err := tfljourney.NewToolset(deps)
//	if err != nil { ... }
//	client := openai.NewClient(option.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	agent := tfljourney.New(&client.Chat.Completions, reg)
//	answer, err := agent.Run(ctx, "how can i get from camden town to liverpool street?")
package tfljourney
