package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/field"
	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
	"github.com/telhawk-systems/telhawk-csv/internal/logging"
	"github.com/telhawk-systems/telhawk-csv/internal/model"
	"github.com/telhawk-systems/telhawk-csv/internal/parser"
	"github.com/telhawk-systems/telhawk-csv/internal/pipeline"
	"github.com/telhawk-systems/telhawk-csv/internal/service"
	"github.com/telhawk-systems/telhawk-csv/internal/store"
)

// HeaderHandler manages header codec HTTP endpoints.
type HeaderHandler struct {
	processor *service.Processor
	logger    *logging.Logger
}

// NewHeaderHandler constructs a new handler.
func NewHeaderHandler(p *service.Processor, logger *logging.Logger) *HeaderHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HeaderHandler{processor: p, logger: logger}
}

// DecodeRequest submits a raw header line for a source.
type DecodeRequest struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	LineNumber int64  `json:"line_number"`
	Line       string `json:"line"`
	ReceivedAt string `json:"received_at"`
}

// Decode handles POST /api/v1/headers/decode.
func (h *HeaderHandler) Decode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "source is required")
		return
	}

	envelope := model.NewHeaderEnvelope(req.Source, req.LineNumber, req.Line)
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "id must be a UUID")
			return
		}
		envelope.ID = id.String()
	}
	if req.ReceivedAt != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, req.ReceivedAt); err == nil {
			envelope.ReceivedAt = parsed
		}
	}

	block, err := h.processor.Process(r.Context(), envelope)
	if err != nil {
		h.writeProcessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

// ColumnSpec describes one column of an encode request.
type ColumnSpec struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
}

// EncodeRequest lists columns to encode into header properties.
type EncodeRequest struct {
	LineNumber int64        `json:"line_number"`
	Columns    []ColumnSpec `json:"columns"`
}

// EncodeResponse returns the properties of the encoded header block.
type EncodeResponse struct {
	Properties []model.PropertyView `json:"properties"`
}

// Encode handles POST /api/v1/headers/encode.
func (h *HeaderHandler) Encode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	fields := make([]field.Field, 0, len(req.Columns))
	for i, c := range req.Columns {
		typ, ok := field.TypeForTag(c.Type)
		if !ok {
			writeErrorDetails(w, http.StatusBadRequest, "invalid_column", "unknown column type "+strconv.Quote(c.Type),
				map[string]interface{}{"index": i})
			return
		}
		f, err := field.New(c.Name, typ, c.Format)
		if err != nil {
			writeErrorDetails(w, http.StatusBadRequest, "invalid_column", err.Error(),
				map[string]interface{}{"index": i})
			return
		}
		fields = append(fields, f)
	}

	writeJSON(w, http.StatusOK, EncodeResponse{Properties: model.Properties(headers.FromFields(req.LineNumber, fields).Properties())})
}

// Get handles GET /api/v1/headers/{source}.
func (h *HeaderHandler) Get(w http.ResponseWriter, r *http.Request) {
	block, err := h.processor.Lookup(r.Context(), r.PathValue("source"))
	if err != nil {
		h.writeProcessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

// Delete handles DELETE /api/v1/headers/{source}.
func (h *HeaderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.processor.Forget(r.Context(), r.PathValue("source")); err != nil {
		h.writeProcessError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz.
func (h *HeaderHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.processor.Health())
}

// writeProcessError maps codec, pipeline and store errors onto responses.
func (h *HeaderHandler) writeProcessError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		parseErr *parser.Error
		keyErr   *headers.KeyError
		seqErr   *headers.SequenceError
		tokenErr *headers.TokenError
	)

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, pipeline.ErrInvalidEnvelope):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &parseErr):
		details := map[string]interface{}{}
		if n, ok := parseErr.LineNumber(); ok {
			details["line_number"] = n
		}
		if parseErr.Position != nil {
			details["position"] = *parseErr.Position
		}
		writeErrorDetails(w, http.StatusUnprocessableEntity, "parse_error", err.Error(), details)
	case errors.As(err, &keyErr):
		writeErrorDetails(w, http.StatusUnprocessableEntity, "corrupt_headers", err.Error(),
			map[string]interface{}{"key": keyErr.Key})
	case errors.As(err, &seqErr):
		writeErrorDetails(w, http.StatusUnprocessableEntity, "corrupt_headers", err.Error(),
			map[string]interface{}{"key": seqErr.Key, "index": seqErr.Index, "expected": seqErr.Expected})
	case errors.As(err, &tokenErr):
		writeErrorDetails(w, http.StatusUnprocessableEntity, "corrupt_headers", err.Error(),
			map[string]interface{}{"key": tokenErr.Key, "token": tokenErr.Token})
	default:
		h.logger.ErrorContext(r.Context(), "header request failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
