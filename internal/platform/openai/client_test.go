package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/yungbote/cinematch-backend/internal/embedding"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

// scriptedTransport feeds Embed a fixed sequence of responses and records
// every request it sees.
type scriptedTransport struct {
	responses []*http.Response
	requests  []capturedRequest
}

type capturedRequest struct {
	method string
	path   string
	auth   string
	body   embeddingsRequest
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body embeddingsRequest
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(raw, &body)
	}
	s.requests = append(s.requests, capturedRequest{
		method: req.Method,
		path:   req.URL.Path,
		auth:   req.Header.Get("Authorization"),
		body:   body,
	})

	if len(s.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newTestClient(t *testing.T, transport *scriptedTransport) *Client {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_EMBED_MODEL", "text-embedding-3-small")
	t.Setenv("OPENAI_MAX_RETRIES", "1")
	c, err := NewClient(logger.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c.WithHTTPClient(&http.Client{Transport: transport})
}

func TestEmbedRequestShapeAndIndexReassembly(t *testing.T) {
	tr := &scriptedTransport{responses: []*http.Response{
		// Data arrives out of order; the index field must govern placement.
		jsonResponse(200, `{"data":[
			{"index":1,"embedding":[0.3,0.4]},
			{"index":0,"embedding":[0.1,0.2]}
		]}`),
	}}
	c := newTestClient(t, tr)

	vecs, err := c.Embed(t.Context(), []string{"premier", "second"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("vectors: want=2 got=%d", len(vecs))
	}
	if vecs[0][0] != 0.1 || vecs[1][0] != 0.3 {
		t.Fatalf("index reassembly wrong: got=%v", vecs)
	}

	if len(tr.requests) != 1 {
		t.Fatalf("requests: want=1 got=%d", len(tr.requests))
	}
	req := tr.requests[0]
	if req.method != http.MethodPost || req.path != "/v1/embeddings" {
		t.Fatalf("request target: got %s %s", req.method, req.path)
	}
	if req.auth != "Bearer test-key" {
		t.Fatalf("authorization header: got=%q", req.auth)
	}
	if req.body.Model != "text-embedding-3-small" {
		t.Fatalf("model: got=%q", req.body.Model)
	}
	if len(req.body.Input) != 2 || req.body.Input[0] != "premier" {
		t.Fatalf("inputs: got=%v", req.body.Input)
	}
}

func TestEmbedPadsEmptyInput(t *testing.T) {
	tr := &scriptedTransport{responses: []*http.Response{
		jsonResponse(200, `{"data":[{"index":0,"embedding":[0.5]}]}`),
	}}
	c := newTestClient(t, tr)

	if _, err := c.Embed(t.Context(), []string{"   "}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got := tr.requests[0].body.Input[0]; got != " " {
		t.Fatalf("blank input must be padded to a single space, got=%q", got)
	}
}

func TestEmbedRetriesOn429(t *testing.T) {
	retry := jsonResponse(http.StatusTooManyRequests, `{"error":"rate limited"}`)
	retry.Header.Set("Retry-After", "1")
	tr := &scriptedTransport{responses: []*http.Response{
		retry,
		jsonResponse(200, `{"data":[{"index":0,"embedding":[0.9]}]}`),
	}}
	c := newTestClient(t, tr)

	vecs, err := c.Embed(t.Context(), []string{"texte"})
	if err != nil {
		t.Fatalf("Embed after retry: %v", err)
	}
	if len(tr.requests) != 2 {
		t.Fatalf("requests: want=2 got=%d", len(tr.requests))
	}
	if vecs[0][0] != 0.9 {
		t.Fatalf("vector: want=[0.9] got=%v", vecs[0])
	}
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	tr := &scriptedTransport{responses: []*http.Response{
		jsonResponse(http.StatusBadRequest, `{"error":"bad request"}`),
	}}
	c := newTestClient(t, tr)

	_, err := c.Embed(t.Context(), []string{"texte"})
	if err == nil {
		t.Fatalf("want error for 400 response")
	}
	if len(tr.requests) != 1 {
		t.Fatalf("400 must not retry: requests=%d", len(tr.requests))
	}

	var pe *embedding.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("want ProviderError, got %v", err)
	}
	if pe.Op != "embed" || pe.Model != "text-embedding-3-small" {
		t.Fatalf("provider error fields: got=%+v", pe)
	}
	var he *httpError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		t.Fatalf("want wrapped httpError with status 400, got %v", err)
	}
}

func TestEmbedPositionalFallbackWithoutIndices(t *testing.T) {
	// Compatible endpoints may omit the index field entirely; when counts
	// line up the response order is trusted.
	tr := &scriptedTransport{responses: []*http.Response{
		jsonResponse(200, `{"data":[
			{"embedding":[0.1]},
			{"embedding":[0.2]}
		]}`),
	}}
	c := newTestClient(t, tr)

	vecs, err := c.Embed(t.Context(), []string{"un", "deux"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vecs[0][0] != 0.1 || vecs[1][0] != 0.2 {
		t.Fatalf("positional fallback wrong: got=%v", vecs)
	}
}

func TestEmbedEmptyInputListShortCircuits(t *testing.T) {
	tr := &scriptedTransport{}
	c := newTestClient(t, tr)

	vecs, err := c.Embed(t.Context(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 0 {
		t.Fatalf("want empty result, got=%v", vecs)
	}
	if len(tr.requests) != 0 {
		t.Fatalf("empty input must not hit the API")
	}
}
