package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bramp/objectgraph/pkg/buildinfo"
	"github.com/bramp/objectgraph/pkg/cache"
	"github.com/bramp/objectgraph/pkg/errors"
	"github.com/bramp/objectgraph/pkg/objectgraph"
	"github.com/bramp/objectgraph/pkg/observability"
	"github.com/bramp/objectgraph/pkg/report"
	"github.com/bramp/objectgraph/pkg/source"
)

const (
	contentTypeJSON = "application/json"
	contentTypeDOT  = "text/vnd.graphviz"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// traverseRequest is the parsed query of a traversal request.
type traverseRequest struct {
	input source.Format
	key   cache.KeyOpts
	opts  objectgraph.Options
}

func (s *Server) parseTraverse(r *http.Request) (*traverseRequest, error) {
	q := r.URL.Query()
	req := &traverseRequest{
		input: source.FormatJSON,
		key:   cache.KeyOpts{MaxNodes: s.cfg.MaxNodes, Format: "json"},
	}

	if v := q.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "max must be a positive integer, got %q", v)
		}
		req.key.MaxNodes = n
	}
	if v := q.Get("format"); v != "" {
		if v != "json" && v != "dot" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "format must be json or dot, got %q", v)
		}
		req.key.Format = v
	}
	if v := q.Get("input"); v != "" {
		f, err := source.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		req.input = f
	}
	if v := q.Get("exclude"); v != "" {
		req.key.Exclude = strings.Split(v, ",")
	}
	req.key.IncludeStatic = q.Get("static") == "true"
	req.key.IncludeTransient = q.Get("transient") == "true"

	excluded, err := source.Types(req.key.Exclude)
	if err != nil {
		return nil, err
	}
	req.opts = objectgraph.Options{
		IncludeStatic:    req.key.IncludeStatic,
		IncludeTransient: req.key.IncludeTransient,
		ExcludedTypes:    excluded,
		Logger:           s.cfg.Logger,
	}
	return req, nil
}

func (s *Server) handleTraverse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := s.parseTraverse(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	contentType := contentTypeJSON
	if req.key.Format == "dot" {
		contentType = contentTypeDOT
	}

	key := cache.ReportKey(cache.Hash(body), req.key)
	if data, hit, err := s.cfg.Cache.Get(ctx, key); err != nil {
		s.cfg.Logger.Warn("cache get failed", "err", err)
	} else if hit {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", "hit")
		w.Write(data)
		return
	}

	doc, err := source.Decode(bytes.NewReader(body), req.input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := report.Build(doc, req.opts, req.key.MaxNodes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var data []byte
	if req.key.Format == "dot" {
		data = []byte(report.ToDOT(rep, report.DOTOptions{}))
	} else if data, err = report.Marshal(rep); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode report"))
		return
	}

	if err := s.cfg.Cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.cfg.Logger.Warn("cache set failed", "err", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "miss")
	w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
