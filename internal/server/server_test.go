package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bramp/objectgraph/pkg/cache"
	"github.com/bramp/objectgraph/pkg/observability"
	"github.com/bramp/objectgraph/pkg/report"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return New(cfg)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(s, http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Build.Version == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestTraverse_JSON(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(s, http.MethodPost, "/v1/traverse", `{"a": [1, 2], "b": "x"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != contentTypeJSON {
		t.Errorf("Content-Type = %q", ct)
	}

	r, err := report.Unmarshal(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not a report: %v", err)
	}
	// map, "a", [1 2], "b", "x", 1, 2
	if len(r.Nodes) != 7 {
		t.Errorf("got %d nodes, want 7", len(r.Nodes))
	}
	if r.Root != "map[string]interface {}" {
		t.Errorf("Root = %q", r.Root)
	}
}

func TestTraverse_Options(t *testing.T) {
	s := newTestServer(t, Config{})

	tests := []struct {
		name      string
		target    string
		body      string
		wantNodes int
		stopped   bool
	}{
		{"max", "/v1/traverse?max=2", `[1, 2, 3]`, 2, true},
		{"exclude strings", "/v1/traverse?exclude=string", `{"a": "b"}`, 1, false},
		{"exclude numbers", "/v1/traverse?exclude=number,string", `[1, "x", true]`, 2, false},
		{"toml input", "/v1/traverse?input=toml", "a = 1\n", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
			}
			r, err := report.Unmarshal(rec.Body.Bytes())
			if err != nil {
				t.Fatal(err)
			}
			if len(r.Nodes) != tt.wantNodes || r.Stopped != tt.stopped {
				t.Errorf("got %d nodes (stopped=%v), want %d (stopped=%v)",
					len(r.Nodes), r.Stopped, tt.wantNodes, tt.stopped)
			}
		})
	}
}

func TestTraverse_DOT(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(s, http.MethodPost, "/v1/traverse?format=dot", `["x"]`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != contentTypeDOT {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "digraph G") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestTraverse_Errors(t *testing.T) {
	s := newTestServer(t, Config{MaxBody: 16})

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"bad max", "/v1/traverse?max=abc", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"zero max", "/v1/traverse?max=0", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "/v1/traverse?format=png", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad input", "/v1/traverse?input=yaml", `{}`, http.StatusUnsupportedMediaType, "UNSUPPORTED"},
		{"bad exclude", "/v1/traverse?exclude=widget", `{}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"malformed body", "/v1/traverse", `{"a":`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"body too large", "/v1/traverse", `{"aaaaaaaaaaaaaaaaaaaa": 1}`, http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body: %v", err)
			}
			if string(resp.Code) != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
		})
	}
}

func TestTraverse_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Config{Cache: c})

	first := do(s, http.MethodPost, "/v1/traverse?exclude=string,number", `[1]`)
	second := do(s, http.MethodPost, "/v1/traverse?exclude=number,string", `[1]`)

	if got := first.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	if got := second.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached body differs")
	}

	other := do(s, http.MethodPost, "/v1/traverse?format=dot&exclude=string,number", `[1]`)
	if got := other.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("different format X-Cache = %q, want miss", got)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, Config{})
	if rec := do(s, http.MethodGet, "/v1/unknown", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/v1/traverse", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests, responses, errors int
	lastStatus                  int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) { h.requests++ }

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.responses++
	h.lastStatus = status
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, error) { h.errors++ }

func TestHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	s := newTestServer(t, Config{})
	do(s, http.MethodGet, "/healthz", "")
	do(s, http.MethodPost, "/v1/traverse?max=x", "{}")

	if hooks.requests != 2 || hooks.responses != 2 || hooks.errors != 1 {
		t.Errorf("hooks = %+v", hooks)
	}
	if hooks.lastStatus != http.StatusBadRequest {
		t.Errorf("last status = %d", hooks.lastStatus)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := newTestServer(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after shutdown", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(context.Canceled); got != http.StatusInternalServerError {
		t.Errorf("statusFor(uncoded) = %d", got)
	}
}
