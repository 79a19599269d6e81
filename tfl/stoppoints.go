package tfl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tfljourney/tools"
)

// ErrStopPointTypeNotFound reports a stop point type the API does not know.
// It is wrapped in a retryable ClientError so the agent can correct the
// argument and try again.
var ErrStopPointTypeNotFound = errors.New("stop point type not found")

// StopPoint is the projection of a raw stop-point record returned to the
// agent: a human-readable name and its stable naptan identifier. Both
// fields are always populated; records missing either are dropped.
type StopPoint struct {
	Name     string `json:"name"`
	NaptanID string `json:"naptanId"`
}

// MatchFunc decides whether a stop point, identified by its name, is kept
// by the result filter. A nil MatchFunc keeps everything.
type MatchFunc func(name string) bool

// MatchLocalities returns a case-insensitive substring matcher over the
// given locality names. It is the filter used to bound the volume of stop
// points forwarded into the model context; an empty match set is valid
// output, not a failure.
func MatchLocalities(localities ...string) MatchFunc {
	lowered := make([]string, 0, len(localities))
	for _, loc := range localities {
		if loc != "" {
			lowered = append(lowered, strings.ToLower(loc))
		}
	}
	return func(name string) bool {
		n := strings.ToLower(name)
		for _, loc := range lowered {
			if strings.Contains(n, loc) {
				return true
			}
		}
		return false
	}
}

// stopPointRecord is the subset of the raw API record the filter projects.
type stopPointRecord struct {
	CommonName string `json:"commonName"`
	NaptanID   string `json:"naptanId"`
}

// filterStopPoints projects raw records to {name, naptanId} and keeps only
// those whose name matches. Records without both fields are skipped.
func filterStopPoints(records []stopPointRecord, match MatchFunc) []StopPoint {
	out := make([]StopPoint, 0, len(records))
	for _, rec := range records {
		if rec.CommonName == "" || rec.NaptanID == "" {
			continue
		}
		if match != nil && !match(rec.CommonName) {
			continue
		}
		out = append(out, StopPoint{Name: rec.CommonName, NaptanID: rec.NaptanID})
	}
	return out
}

// StopPointsByType fetches all stop points of the given type and returns
// the filtered projection. The whole call runs under the client's Gate, so
// at most one of these is in flight per process.
//
// A 404 from the API means the type string itself was wrong and is
// classified as a retryable ClientError; any other non-2xx status is fatal.
func (c *Client) StopPointsByType(ctx context.Context, stopPointType string, match MatchFunc) ([]StopPoint, error) {
	var out []StopPoint
	err := c.gate.Do(ctx, func() error {
		c.logger.Info("retrieving stop points", "stop_point_type", stopPointType)
		resp, err := c.Get(ctx, "/StopPoint/Type/"+url.PathEscape(stopPointType), nil, nil)
		if err != nil {
			return err
		}
		body, err := drainBody(resp)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusNotFound {
			return &tools.ClientError{
				Reason:    "invalid stop point type provided!",
				Retryable: true,
				Err:       ErrStopPointTypeNotFound,
			}
		}
		if !statusOK(resp.StatusCode) {
			return fmt.Errorf("tfl: stop point list for %q: unexpected status %d", stopPointType, resp.StatusCode)
		}
		var records []stopPointRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return fmt.Errorf("tfl: decode stop points: %w", err)
		}
		out = filterStopPoints(records, match)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
