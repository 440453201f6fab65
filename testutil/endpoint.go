// Package testutil provides a scriptable in-process SPARQL endpoint for
// tests. It records every request it receives and replays a configured
// sequence of responses, so retry behavior and header handling can be
// asserted without a real triplestore.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// Response is one scripted endpoint reply.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// JSONResponse returns a 200 reply with a SPARQL-JSON body.
func JSONResponse(body string) Response {
	return Response{Status: http.StatusOK, ContentType: "application/sparql-results+json", Body: body}
}

// XMLResponse returns a 200 reply with a SPARQL-XML body.
func XMLResponse(body string) Response {
	return Response{Status: http.StatusOK, ContentType: "application/sparql-results+xml", Body: body}
}

// ErrorResponse returns a reply with the given status and a plain-text body.
func ErrorResponse(status int) Response {
	return Response{Status: status, ContentType: "text/plain", Body: http.StatusText(status)}
}

// RecordedRequest captures what the endpoint saw for one request.
type RecordedRequest struct {
	Method string
	Header http.Header
	Query  string
	Form   url.Values
}

// Endpoint is a fake SPARQL endpoint backed by httptest.Server.
type Endpoint struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses []Response
	requests  []RecordedRequest
}

// NewEndpoint starts a fake endpoint that replays the given responses in
// order. Once the script is exhausted the last response repeats. The server
// is shut down automatically when the test finishes.
func NewEndpoint(t *testing.T, responses ...Response) *Endpoint {
	t.Helper()
	if len(responses) == 0 {
		responses = []Response{JSONResponse(EmptySelectJSON)}
	}

	e := &Endpoint{responses: responses}
	e.Server = httptest.NewServer(http.HandlerFunc(e.handle))
	t.Cleanup(e.Server.Close)
	return e
}

// NewSlowEndpoint starts a fake endpoint that sleeps before answering each
// request, for exercising per-attempt timeouts.
func NewSlowEndpoint(t *testing.T, delay time.Duration, responses ...Response) *Endpoint {
	t.Helper()
	if len(responses) == 0 {
		responses = []Response{JSONResponse(EmptySelectJSON)}
	}

	e := &Endpoint{responses: responses}
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		e.handle(w, r)
	}))
	t.Cleanup(e.Server.Close)
	return e
}

// URL returns the endpoint's base URL.
func (e *Endpoint) URL() string {
	return e.Server.URL
}

func (e *Endpoint) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	form, _ := url.ParseQuery(string(body))

	e.mu.Lock()
	rec := RecordedRequest{
		Method: r.Method,
		Header: r.Header.Clone(),
		Query:  form.Get("query"),
		Form:   form,
	}
	e.requests = append(e.requests, rec)

	idx := len(e.requests) - 1
	if idx >= len(e.responses) {
		idx = len(e.responses) - 1
	}
	resp := e.responses[idx]
	e.mu.Unlock()

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

// Requests returns a copy of all recorded requests.
func (e *Endpoint) Requests() []RecordedRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]RecordedRequest, len(e.requests))
	copy(out, e.requests)
	return out
}

// RequestCount returns how many requests the endpoint has served.
func (e *Endpoint) RequestCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

// LastRequest returns the most recent recorded request.
func (e *Endpoint) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		t.Fatal("endpoint received no requests")
	}
	return e.requests[len(e.requests)-1]
}
