package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/matzehuels/xdsmgen/pkg/buildinfo"
	"github.com/matzehuels/xdsmgen/pkg/errors"
	"github.com/matzehuels/xdsmgen/pkg/pipeline"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

// RenderRequest is the body of POST /api/v1/diagrams.
type RenderRequest struct {
	Data    json.RawMessage  `json:"data"`
	Options pipeline.Options `json:"options"`
}

// ValidateResponse is the body returned by POST /api/v1/validate.
type ValidateResponse struct {
	Valid  bool             `json:"valid"`
	Errors []viewer.Problem `json:"errors"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req RenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Data) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no data"))
		return
	}

	opts := req.Options
	if f := r.URL.Query().Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if len(opts.Formats) > 1 {
		s.writeError(w, r, errors.InvalidConfig("one format per request, got %d", len(opts.Formats)))
		return
	}
	if opts.StylesFile != "" {
		s.writeError(w, r, errors.InvalidConfig("styles_file is not accepted by the API"))
		return
	}
	opts.Logger = s.logger.With("request", RequestIDFrom(r.Context()))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RenderTimeout)
	defer cancel()

	result, err := s.runner.Execute(ctx, req.Data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := pipeline.DefaultFormat
	if len(opts.Formats) == 1 {
		format = opts.Formats[0]
	}
	cacheStatus := "miss"
	if result.CacheInfo.Hits[format] {
		cacheStatus = "hit"
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Document-ID", uuid.NewString())
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	problems, err := s.validator.Validate(body)
	if err != nil && len(problems) == 0 {
		s.writeError(w, r, err)
		return
	}
	if problems == nil {
		problems = []viewer.Problem{}
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: len(problems) == 0, Errors: problems})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return body, nil
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodePathNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)

	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestIDFrom(r.Context()), "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
