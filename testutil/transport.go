// Package testutil provides test doubles for tfljourney: a scriptable HTTP
// transport for the TFL client and a scripted chat-completions client for
// the agent loop.
package testutil

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// DoerFunc adapts a function to the tfl.Doer interface.
type DoerFunc func(*http.Request) (*http.Response, error)

// Do calls f.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// JSONResponse builds an *http.Response with the given status and body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type stubRoute struct {
	status int
	body   string
}

// StubAPI routes requests by URL path prefix and records every request it
// sees. Unrouted paths get a 404. Safe for concurrent use; each hit gets a
// fresh response body, so a route may be served repeatedly.
type StubAPI struct {
	mu       sync.Mutex
	routes   map[string]stubRoute
	requests []*http.Request
}

// NewStubAPI creates an empty StubAPI.
func NewStubAPI() *StubAPI {
	return &StubAPI{routes: make(map[string]stubRoute)}
}

// Route serves the given status/body for requests whose path starts with prefix.
func (s *StubAPI) Route(prefix string, status int, body string) *StubAPI {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[prefix] = stubRoute{status: status, body: body}
	return s
}

// Do implements tfl.Doer.
func (s *StubAPI) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	for prefix, route := range s.routes {
		if strings.HasPrefix(req.URL.Path, prefix) {
			return JSONResponse(route.status, route.body), nil
		}
	}
	return JSONResponse(http.StatusNotFound, `{"message":"not found"}`), nil
}

// Requests returns a copy of all requests seen so far.
func (s *StubAPI) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}
