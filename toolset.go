package tfljourney

import (
	"context"
	"encoding/json"
	"fmt"

	"tfljourney/tfl"
	"tfljourney/tools"
)

// Deps is the per-run dependency bundle shared by every tool call: the TFL
// client (which owns the HTTP handle and the API key) and the stop-point
// filter predicate. It is immutable for the duration of a run.
type Deps struct {
	TFL *tfl.Client
	// Match bounds the stop-point payload forwarded into the model context.
	// Nil keeps every stop point.
	Match tfl.MatchFunc
}

// StopPointTypesArgs is the (empty) argument set of stop_point_types.
type StopPointTypesArgs struct{}

// StopPointTypesResult wraps the raw meta/stoptypes payload.
type StopPointTypesResult struct {
	StopPointTypes json.RawMessage `json:"stop_point_types"`
}

// StopPointListArgs selects which class of stop points to list.
type StopPointListArgs struct {
	StopPointType string `json:"stop_point_type" description:"A stop point type as returned by the stop_point_types tool, e.g. NaptanMetroStation"`
}

// JourneyPlannerArgs are the endpoints of the requested journey.
type JourneyPlannerArgs struct {
	FromNaptanID string `json:"from_naptan_id" description:"naptanId of the origin stop point"`
	ToNaptanID   string `json:"to_naptan_id" description:"naptanId of the destination stop point"`
}

// NewToolset builds the registry with the three TFL tools wired to deps.
// Additional registry options (timeouts, hooks) are appended after the
// defaults, so callers can override them.
func NewToolset(deps Deps, opts ...tools.RegistryOption) (*tools.Registry, error) {
	if deps.TFL == nil {
		return nil, fmt.Errorf("toolset: deps.TFL must not be nil")
	}

	stopPointTypes, err := tools.NewTool(
		"stop_point_types",
		"Returns a list of all stop point types",
		func(ctx context.Context, _ StopPointTypesArgs) (StopPointTypesResult, error) {
			raw, err := deps.TFL.StopPointTypes(ctx)
			if err != nil {
				return StopPointTypesResult{}, err
			}
			return StopPointTypesResult{StopPointTypes: raw}, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("toolset: stop_point_types: %w", err)
	}

	stopPointList, err := tools.NewTool(
		"stop_point_list",
		"Returns a list of stop points for a given stop point type",
		func(ctx context.Context, args StopPointListArgs) ([]tfl.StopPoint, error) {
			return deps.TFL.StopPointsByType(ctx, args.StopPointType, deps.Match)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("toolset: stop_point_list: %w", err)
	}

	journeyPlanner, err := tools.NewTool(
		"journey_planner",
		"Returns potential journeys based on a 'from' stop point naptanId and a 'to' stop point naptanId",
		func(ctx context.Context, args JourneyPlannerArgs) ([]string, error) {
			return deps.TFL.PlanJourney(ctx, args.FromNaptanID, args.ToNaptanID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("toolset: journey_planner: %w", err)
	}

	defaults := []tools.RegistryOption{
		tools.WithDefaultTimeout(tfl.DefaultTimeout),
		tools.WithMaxConcurrency(4),
		tools.WithRecoverPanics(true),
	}
	reg := tools.NewRegistry(append(defaults, opts...)...)
	reg.Register(stopPointTypes)
	reg.Register(stopPointList)
	reg.Register(journeyPlanner)
	return reg, nil
}
