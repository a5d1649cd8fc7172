// Package handler implements the HTTP and websocket endpoints of the LC
// calculator API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/health"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// maxBodySize bounds request bodies
const maxBodySize = 1 << 20

// CalculateRequest is the body of POST /calculate. Mode and empty target
// labels fall back to the server defaults.
type CalculateRequest struct {
	Inductance  calc.Quantity `json:"inductance"`
	Capacitance calc.Quantity `json:"capacitance"`
	Frequency   calc.Quantity `json:"frequency"`
	Mode        string        `json:"mode,omitempty"`
	Targets     calc.Targets  `json:"targets"`
}

// UnitsResponse is the reply to GET /units
type UnitsResponse struct {
	Kinds []units.KindInfo `json:"kinds"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handler handles HTTP requests for the calculator API
type Handler struct {
	calc      *calc.Orchestrator
	defaults  calc.Defaults
	health    *health.Registry
	logger    *logging.Logger
	startTime time.Time
	version   string
}

// NewHandler creates a new API handler
func NewHandler(version string, orchestrator *calc.Orchestrator, defaults calc.Defaults, registry *health.Registry, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.New("http-handler")
	}
	return &Handler{
		calc:      orchestrator,
		defaults:  defaults,
		health:    registry,
		logger:    logger,
		startTime: time.Now(),
		version:   version,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		h.handleRoot(w, r)
	case "health":
		h.handleHealth(w, r)
	case "units":
		h.handleUnits(w, r)
	case "calculate":
		h.handleCalculate(w, r)
	case "convert":
		h.handleConvert(w, r)
	default:
		h.writeError(w, mdwerror.New("endpoint not found").
			WithCode(mdwerror.CodeNotFound).
			WithDetail("path", r.URL.Path))
	}
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "lcc",
		"version": h.version,
		"uptime":  time.Since(h.startTime).String(),
		"endpoints": []string{
			"GET /api/v1/health",
			"GET /api/v1/units",
			"POST /api/v1/calculate",
			"POST /api/v1/convert",
			"GET /api/v1/ws",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	if h.health == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": string(health.StatusHealthy), "version": h.version})
		return
	}
	report := h.health.Check(r.Context())
	h.writeJSON(w, report.HTTPStatus(), report)
}

func (h *Handler) handleUnits(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	var kinds []units.Kind
	if name := r.URL.Query().Get("kind"); name != "" {
		kind, err := units.ParseKind(name)
		if err != nil {
			h.writeError(w, err)
			return
		}
		kinds = append(kinds, kind)
	}
	infos, err := units.Describe(kinds...)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, UnitsResponse{Kinds: infos})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	var body CalculateRequest
	if err := h.readJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	req, err := h.request(body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	requestID := requestIDFrom(r)
	w.Header().Set(RequestIDHeader, requestID)
	ctx := calc.WithRequestID(r.Context(), requestID)

	result, err := h.calc.Calculate(ctx, req, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	var body calc.ConvertRequest
	if err := h.readJSON(r, &body); err != nil {
		h.writeError(w, err)
		return
	}
	resp, err := calc.Convert(body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) request(body CalculateRequest) (calc.Request, error) {
	mode, targets, err := h.defaults.Resolve(body.Mode, body.Targets)
	if err != nil {
		return calc.Request{}, err
	}
	return calc.Request{
		Inductance:  body.Inductance,
		Capacitance: body.Capacitance,
		Frequency:   body.Frequency,
		Mode:        mode,
		Targets:     targets,
	}, nil
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error:   http.StatusText(http.StatusMethodNotAllowed),
		Code:    "METHOD_NOT_ALLOWED",
		Message: "use " + method,
	})
	return false
}

func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// Helper methods

func (h *Handler) readJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return mdwerror.Wrap(err, "failed to read request body").
			WithCode(mdwerror.CodeInvalidInput)
	}
	if len(body) > maxBodySize {
		return mdwerror.New("request body too large").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("limit", maxBodySize)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return mdwerror.Wrap(err, "invalid JSON body").
			WithCode(mdwerror.CodeInvalidFormat)
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	resp, status := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "code", resp.Code)
	}
	h.writeJSON(w, status, resp)
}

func errorResponse(err error) (ErrorResponse, int) {
	code := mdwerror.GetCode(err)
	status := code.HTTPStatus()
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Code:    string(code),
		Message: err.Error(),
	}
	var e *mdwerror.Error
	if errors.As(err, &e) {
		resp.Details = e.Details()
	}
	return resp, status
}
