package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"go.uber.org/goleak"

	"github.com/matzehuels/boxlayout/pkg/cache"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const toolbarSource = `
hstack {
  element "icon" (width: 40)
  element "label"
  if badge {
    element "badge" (width: 20)
  }
}
`

const overfullSource = `
hstack {
  element "a" (width: 150)
  element "b" (width: 150)
}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), log.New(io.Discard))
	return New(runner, store.NewMemory(), WithLogger(log.New(io.Discard)))
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status": "ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		prefix      string
	}{
		{"default svg", "/v1/render?width=200&height=100", "image/svg+xml", "<svg"},
		{"json", "/v1/render?width=200&height=100&format=json&set=badge", "application/json", "{"},
		{"dot", "/v1/render?format=dot", "text/vnd.graphviz; charset=utf-8", "digraph G {"},
		{"png", "/v1/render?format=png&scale=1", "image/png", "\x89PNG"},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, toolbarSource)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.HasPrefix(rec.Body.String(), tt.prefix) {
				t.Errorf("body starts with %.20q, want %q", rec.Body.String(), tt.prefix)
			}
			if rec.Header().Get("X-Layout-Cache") != "miss" {
				t.Errorf("X-Layout-Cache = %q, want miss", rec.Header().Get("X-Layout-Cache"))
			}
		})
	}
}

func TestRenderJSONAppliesFlags(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/render?width=200&height=100&format=json&set=badge", toolbarSource)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	badge, ok := l.Frame("badge")
	if !ok {
		t.Fatal("badge frame missing")
	}
	if badge.X != 180 || badge.Width != 20 {
		t.Errorf("badge = %+v, want x=180 w=20", badge)
	}
}

func TestRenderDegraded(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/render?width=200&height=100", overfullSource)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Layout-Degraded") == "" {
		t.Error("X-Layout-Degraded header missing")
	}

	rec = do(t, s, http.MethodPost, "/v1/render?width=200&height=100&strict=true", overfullSource)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("strict status = %d, want 422", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "UNSATISFIABLE" {
		t.Errorf("code = %s, want UNSATISFIABLE", got)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"syntax", "/v1/render", "hstack {", http.StatusUnprocessableEntity, "INVALID_SOURCE"},
		{"unknown flag", "/v1/render?set=nope", toolbarSource, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad flag value", "/v1/render?set=badge=maybe", toolbarSource, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad width", "/v1/render?width=wide", toolbarSource, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative height", "/v1/render?height=-1", toolbarSource, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "/v1/render?format=gif", toolbarSource, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad style", "/v1/render?style=crayon", toolbarSource, http.StatusBadRequest, "INVALID_STYLE"},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if got := decodeError(t, rec).Code; string(got) != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestRenderBodyLimit(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), log.New(io.Discard))
	s := New(runner, nil, WithLogger(log.New(io.Discard)), WithMaxBody(8))

	rec := do(t, s, http.MethodPost, "/v1/render", toolbarSource)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLayoutLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/layouts/?width=200&height=100", toolbarSource)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created graph.Layout
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	loc := rec.Header().Get("Location")
	if loc != "/v1/layouts/"+created.ID {
		t.Fatalf("Location = %q, want id %s", loc, created.ID)
	}

	rec = do(t, s, http.MethodGet, "/v1/layouts/", "")
	var list []layoutSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID || list[0].Surfaces != 2 {
		t.Errorf("list = %+v", list)
	}

	rec = do(t, s, http.MethodGet, loc, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), created.ID) {
		t.Errorf("get status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, loc+"?format=svg&style=blueprint", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="grid"`) {
		t.Errorf("get svg status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, loc, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, loc, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, loc, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestLayoutErrors(t *testing.T) {
	s := newTestServer(t)

	if rec := do(t, s, http.MethodGet, "/v1/layouts/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/v1/layouts/?limit=0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
	rec := do(t, s, http.MethodGet, "/v1/layouts/?limit=5", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list = %d %q", rec.Code, rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		"INVALID_INPUT":    http.StatusBadRequest,
		"INVALID_SOURCE":   http.StatusUnprocessableEntity,
		"NOT_FOUND":        http.StatusNotFound,
		"REENTRANT_UPDATE": http.StatusConflict,
		"INTERNAL_ERROR":   http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusFor(errs.Code(code)); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestSolveLimit(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), log.New(io.Discard))
	s := New(runner, nil, WithLogger(log.New(io.Discard)), WithSolveLimit(0.001, 1))

	if rec := do(t, s, http.MethodPost, "/v1/render?format=dot", toolbarSource); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/v1/render?format=dot", toolbarSource)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Errorf("second status = %d, want 429 with Retry-After", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/v1/layouts/", ""); rec.Code != http.StatusOK {
		t.Errorf("list should not be limited, got %d", rec.Code)
	}
}
