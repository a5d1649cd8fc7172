package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/health"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
)

func newTestHandler(registry *health.Registry) *Handler {
	orchestrator := calc.New(formula.New(mathx.NewConstCache()), calc.Config{})
	defaults := calc.Defaults{Mode: formula.Series, ImpedanceUnit: "Ω", ReactanceUnit: "Ω", FrequencyUnit: "Hz"}
	return NewHandler("test", orchestrator, defaults, registry, logging.Wrap(mdwlog.Discard(), "test"))
}

func do(t *testing.T, h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestCalculate(t *testing.T) {
	h := newTestHandler(nil)
	body := `{
		"inductance": {"value": 10, "unit": "mH"},
		"frequency": {"value": "1000", "unit": "Hz"},
		"targets": {"resonant_frequency": "kHz"}
	}`
	rec := do(t, h, http.MethodPost, "/api/v1/calculate", body, http.Header{RequestIDHeader: {"req-7"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(RequestIDHeader); got != "req-7" {
		t.Errorf("%s = %q, want req-7", RequestIDHeader, got)
	}

	var result struct {
		Computed          bool   `json:"computed"`
		RequestID         string `json:"request_id"`
		Mode              string `json:"mode"`
		ResonantFrequency struct {
			Unit    string `json:"unit"`
			Display string `json:"display"`
		} `json:"resonant_frequency"`
		InductiveReactance struct {
			Unit    string `json:"unit"`
			Display string `json:"display"`
		} `json:"inductive_reactance"`
		Inferred []struct {
			Kind  string `json:"kind"`
			Value struct {
				Unit    string `json:"unit"`
				Display string `json:"display"`
			} `json:"value"`
		} `json:"inferred"`
	}
	decode(t, rec, &result)

	if !result.Computed || result.RequestID != "req-7" || result.Mode != "series" {
		t.Errorf("result = %+v", result)
	}
	if result.ResonantFrequency.Unit != "kHz" || result.ResonantFrequency.Display != "~1" {
		t.Errorf("f0 = %+v", result.ResonantFrequency)
	}
	if result.InductiveReactance.Unit != "Ω" || result.InductiveReactance.Display != "~62.8318530717959" {
		t.Errorf("Xl = %+v", result.InductiveReactance)
	}
	if len(result.Inferred) != 1 || result.Inferred[0].Kind != "Capacitance" || result.Inferred[0].Value.Unit != "F" {
		t.Errorf("inferred = %+v", result.Inferred)
	}
}

func TestCalculateGeneratesRequestID(t *testing.T) {
	rec := do(t, newTestHandler(nil), http.MethodPost, "/api/v1/calculate",
		`{"inductance": {"value": "1", "unit": "H"}, "capacitance": {"value": "1", "unit": "F"}}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Errorf("missing %s header", RequestIDHeader)
	}
}

func TestCalculateUnderdetermined(t *testing.T) {
	rec := do(t, newTestHandler(nil), http.MethodPost, "/api/v1/calculate",
		`{"inductance": {"value": "1", "unit": "H"}}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var result struct {
		Computed bool `json:"computed"`
	}
	decode(t, rec, &result)
	if result.Computed {
		t.Errorf("Computed = true for one quantity")
	}
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "malformed number",
			method:     http.MethodPost,
			body:       `{"inductance": {"value": "ten", "unit": "mH"}, "capacitance": {"value": "1"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(mdwerror.CodeInvalidInput),
			wantField:  "inductance",
		},
		{
			name:       "unknown unit",
			method:     http.MethodPost,
			body:       `{"inductance": {"value": "1", "unit": "mV"}, "capacitance": {"value": "1"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(mdwerror.CodeUnknownUnit),
		},
		{
			name:       "bad mode",
			method:     http.MethodPost,
			body:       `{"mode": "diagonal"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(mdwerror.CodeInvalidInput),
		},
		{
			name:       "broken json",
			method:     http.MethodPost,
			body:       `{"inductance": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(mdwerror.CodeInvalidFormat),
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "METHOD_NOT_ALLOWED",
		},
	}

	h := newTestHandler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, "/api/v1/calculate", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp ErrorResponse
			decode(t, rec, &resp)
			if resp.Code != tt.wantCode || resp.Error == "" || resp.Message == "" {
				t.Errorf("error body = %+v", resp)
			}
			if tt.wantField != "" && resp.Details["field"] != tt.wantField {
				t.Errorf("details = %v, want field %q", resp.Details, tt.wantField)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h, http.MethodPost, "/api/v1/convert", `{"value": "10", "from": "mH", "to": "H"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Kind  string     `json:"kind"`
		From  string     `json:"from"`
		Value calc.Value `json:"value"`
	}
	decode(t, rec, &resp)
	if resp.Kind != "Inductance" || resp.Value.Unit != "H" || resp.Value.Exact != "0.01" {
		t.Errorf("convert = %+v", resp)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/convert", `{"value": "2.2", "from": "uF"}`, nil)
	decode(t, rec, &resp)
	if resp.From != "μF" || resp.Value.Unit != "F" || resp.Value.Exact != "0.0000022" {
		t.Errorf("convert to base = %+v", resp)
	}

	for body, code := range map[string]string{
		`{"value": "1", "from": "V", "to": "mV"}`:                    string(mdwerror.CodeUnknownUnit),
		`{"value": "x", "from": "Hz", "to": "kHz"}`:                  string(mdwerror.CodeInvalidInput),
		`{"value": "1", "from": "Hz", "to": "mH"}`:                   string(mdwerror.CodeUnknownUnit),
		`{"value": "1", "kind": "voltage", "from": "Hz", "to": "Hz"}`: string(mdwerror.CodeInvalidInput),
	} {
		rec := do(t, h, http.MethodPost, "/api/v1/convert", body, nil)
		var errResp ErrorResponse
		decode(t, rec, &errResp)
		if rec.Code != http.StatusBadRequest || errResp.Code != code {
			t.Errorf("%s: status %d code %q, want 400 %q", body, rec.Code, errResp.Code, code)
		}
	}
}

func TestUnits(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h, http.MethodGet, "/api/v1/units", "", nil)
	var resp UnitsResponse
	decode(t, rec, &resp)
	if len(resp.Kinds) != len(units.AllKinds()) {
		t.Fatalf("kinds = %d, want %d", len(resp.Kinds), len(units.AllKinds()))
	}
	if resp.Kinds[0].Kind != units.Frequency || resp.Kinds[0].Base != "Hz" {
		t.Errorf("first kind = %+v", resp.Kinds[0])
	}

	rec = do(t, h, http.MethodGet, "/api/v1/units?kind=L", "", nil)
	decode(t, rec, &resp)
	if len(resp.Kinds) != 1 || resp.Kinds[0].Kind != units.Inductance || len(resp.Kinds[0].Units) != 5 {
		t.Errorf("inductance units = %+v", resp.Kinds)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/units?kind=voltage", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	registry := health.NewRegistry("lcc-http", "test")
	registry.Register(health.AlwaysHealthy("http"))
	h := newTestHandler(registry)

	rec := do(t, h, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report health.Report
	decode(t, rec, &report)
	if report.Status != health.StatusHealthy || len(report.Checks) != 1 {
		t.Errorf("report = %+v", report)
	}

	registry.Register(health.ProbeCheck("engine", func(ctx context.Context) error {
		return mdwerror.New("down")
	}))
	rec = do(t, h, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", rec.Code)
	}
}

func TestRouting(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(t, h, http.MethodGet, "/api/v1/", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/v1/calculate") {
		t.Errorf("root = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/nope", "", nil)
	var resp ErrorResponse
	decode(t, rec, &resp)
	if rec.Code != http.StatusNotFound || resp.Code != string(mdwerror.CodeNotFound) {
		t.Errorf("unknown path = %d %+v", rec.Code, resp)
	}

	rec = do(t, h, http.MethodOptions, "/api/v1/calculate", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight = %d %v", rec.Code, rec.Header())
	}
}
