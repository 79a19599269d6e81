package tfl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// StopPointTypes returns the raw meta/stoptypes payload, verbatim from the
// API. The payload is near-static reference data, so it is cached
// in-process and refetched only after the TTL expires (WithStopTypesTTL;
// zero disables the cache). Any non-2xx status is fatal; this call is not
// guarded by the Gate.
//
// The returned slice is a copy; callers may retain or mutate it.
func (c *Client) StopPointTypes(ctx context.Context) (json.RawMessage, error) {
	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	if c.typesRaw != nil && c.typesTTL > 0 && time.Since(c.typesFetched) < c.typesTTL {
		return append(json.RawMessage(nil), c.typesRaw...), nil
	}

	c.logger.Info("retrieving stop types")
	resp, err := c.Get(ctx, "/StopPoint/meta/stoptypes", nil, nil)
	if err != nil {
		return nil, err
	}
	body, err := drainBody(resp)
	if err != nil {
		return nil, err
	}
	if !statusOK(resp.StatusCode) {
		return nil, fmt.Errorf("tfl: stop point types: unexpected status %d", resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("tfl: stop point types: response is not valid JSON")
	}

	if c.typesTTL > 0 {
		c.typesRaw = append(json.RawMessage(nil), body...)
		c.typesFetched = time.Now()
	}
	return body, nil
}
