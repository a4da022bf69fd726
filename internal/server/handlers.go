package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/boxlayout/pkg/buildinfo"
	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
	"github.com/matzehuels/boxlayout/pkg/store"
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:   "image/svg+xml",
	pipeline.FormatPNG:   "image/png",
	pipeline.FormatPDF:   "application/pdf",
	pipeline.FormatJSON:  "application/json",
	pipeline.FormatDOT:   "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatGraph: "image/svg+xml",
}

// layoutSummary is one entry of GET /v1/layouts.
type layoutSummary struct {
	ID        string  `json:"id"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Surfaces  int     `json:"surfaces"`
	Degraded  bool    `json:"degraded,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleRender solves the body and writes the single requested format.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.readOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Layout-Id", res.Layout.ID)
	w.Header().Set("X-Layout-Cache", cacheStatus(res.CacheInfo.LayoutHit))
	if res.Degraded() {
		w.Header().Set("X-Layout-Degraded", strconv.Itoa(res.Stats.Dropped))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// handleCreateLayout solves the body and archives the layout.
func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.readOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := pipeline.Parse(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layout, err := s.runner.Solve(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), layout); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "archive layout"))
		return
	}

	w.Header().Set("Location", "/v1/layouts/"+layout.ID)
	writeJSON(w, http.StatusCreated, layout)
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	layouts, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "list layouts"))
		return
	}
	out := make([]layoutSummary, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, layoutSummary{
			ID:        l.ID,
			Width:     l.Width,
			Height:    l.Height,
			Surfaces:  len(l.Surfaces()),
			Degraded:  l.Degraded(),
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetLayout returns an archived layout as JSON, or rendered when a
// format is given.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	layout, ok := s.loadLayout(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == pipeline.FormatJSON {
		writeJSON(w, http.StatusOK, layout)
		return
	}

	opts := pipeline.Options{
		Formats:     []string{format},
		Style:       r.URL.Query().Get("style"),
		Groups:      queryBool(r, "groups"),
		Constraints: queryBool(r, "constraints"),
		Soft:        queryBool(r, "soft"),
	}
	artifacts, err := s.runner.Render(r.Context(), layout, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, storeError(err, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadLayout(w http.ResponseWriter, r *http.Request) (graph.Layout, bool) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateLayoutID(id); err != nil {
		s.writeError(w, err)
		return graph.Layout{}, false
	}
	layout, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, storeError(err, id))
		return graph.Layout{}, false
	}
	return layout, true
}

func storeError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errs.Wrap(errs.ErrCodeNotFound, err, "layout %s not found", id)
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "load layout %s", id)
}

// readOptions reads the description body and the query parameters.
func (s *Server) readOptions(r *http.Request) (pipeline.Options, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "description exceeds %d bytes", s.maxBody)
		}
		return pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body")
	}

	q := r.URL.Query()
	flags, err := pipeline.ParseFlags(q["set"])
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Source:      string(body),
		Filename:    "request",
		Flags:       flags,
		Style:       q.Get("style"),
		Groups:      queryBool(r, "groups"),
		Constraints: queryBool(r, "constraints"),
		Soft:        queryBool(r, "soft"),
		Strict:      queryBool(r, "strict"),
	}
	for key, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height, "scale": &opts.Scale} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "invalid %s %q", key, v)
		}
		*dst = f
	}
	return opts, nil
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidStyle, errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeInvalidSource, errs.ErrCodeUnsatisfiable:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeReentrantUpdate:
		return http.StatusConflict
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}

	msg := errs.UserMessage(err)
	var src *errs.SourceError
	if errors.As(err, &src) {
		msg = src.Error()
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
