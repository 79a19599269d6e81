package tfl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
)

// journeyResults mirrors the slice of the JourneyResults payload we care
// about: journeys, their legs, and each leg's instruction summary.
type journeyResults struct {
	Journeys []struct {
		Legs []struct {
			Instruction struct {
				Summary string `json:"summary"`
			} `json:"instruction"`
		} `json:"legs"`
	} `json:"journeys"`
}

// PlanJourney fetches journey options between two naptan identifiers and
// returns the set of unique leg instruction summaries flattened across all
// options, sorted for deterministic output. Duplicate leg text across
// journey options collapses to one entry.
//
// Any non-2xx status is fatal; this call is not guarded by the Gate.
func (c *Client) PlanJourney(ctx context.Context, fromNaptanID, toNaptanID string) ([]string, error) {
	c.logger.Info("retrieving journey plan", "from", fromNaptanID, "to", toNaptanID)
	path := "/Journey/JourneyResults/" + url.PathEscape(fromNaptanID) + "/to/" + url.PathEscape(toNaptanID)
	resp, err := c.Get(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	body, err := drainBody(resp)
	if err != nil {
		return nil, err
	}
	if !statusOK(resp.StatusCode) {
		return nil, fmt.Errorf("tfl: journey plan %s to %s: unexpected status %d", fromNaptanID, toNaptanID, resp.StatusCode)
	}
	var res journeyResults
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("tfl: decode journey results: %w", err)
	}
	seen := make(map[string]struct{})
	summaries := make([]string, 0)
	for _, journey := range res.Journeys {
		for _, leg := range journey.Legs {
			s := leg.Instruction.Summary
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			summaries = append(summaries, s)
		}
	}
	slices.Sort(summaries)
	return summaries, nil
}
