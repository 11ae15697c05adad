package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/petrolex/contract-engine/internal/core/domain"
	"github.com/petrolex/contract-engine/internal/core/ports"
)

type analyzerFake struct {
	report  *domain.Report
	err     error
	lastReq ports.AnalyzeRequest
}

func (f *analyzerFake) Analyze(_ context.Context, req ports.AnalyzeRequest) (*domain.Report, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newAnalyzeRequest(t *testing.T, fields map[string]string, fileContents string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if fileContents != "" {
		part, err := writer.CreateFormFile("file", "contract.txt")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(fileContents)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeErrorCode(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload.Error.Code
}

func TestAnalyzeEndpointReturnsReport(t *testing.T) {
	fake := &analyzerFake{report: &domain.Report{
		Profile:     "msa",
		Analysis:    domain.ContractAnalysis{OverallRisk: "High"},
		Coverage:    domain.CoverageFull,
		GeneratedAt: time.Now().UTC(),
	}}
	handler := NewRouter(fake, 1<<20, RouterOptions{}).Handler()

	req := newAnalyzeRequest(t, map[string]string{
		"license_key": "ABCD-1234",
		"profile":     "msa",
		"party_role":  "buyer",
	}, "THIS AGREEMENT is made...")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var report domain.Report
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Analysis.OverallRisk != "High" {
		t.Fatalf("unexpected report: %+v", report)
	}

	if fake.lastReq.LicenseKey != "ABCD-1234" || fake.lastReq.ProfileID != "msa" {
		t.Fatalf("request fields not forwarded: %+v", fake.lastReq)
	}
	if string(fake.lastReq.Payload) != "THIS AGREEMENT is made..." {
		t.Fatalf("payload not forwarded")
	}
	if fake.lastReq.RequestID == "" {
		t.Fatalf("request id missing")
	}
}

func TestAnalyzeEndpointRequiresLicenseKey(t *testing.T) {
	handler := NewRouter(&analyzerFake{}, 1<<20, RouterOptions{}).Handler()

	req := newAnalyzeRequest(t, nil, "contract text")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if code := decodeErrorCode(t, res); code != "invalid_input" {
		t.Fatalf("expected invalid_input, got %q", code)
	}
}

func TestAnalyzeEndpointRequiresFile(t *testing.T) {
	handler := NewRouter(&analyzerFake{}, 1<<20, RouterOptions{}).Handler()

	req := newAnalyzeRequest(t, map[string]string{"license_key": "k"}, "")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAnalyzeEndpointMapsErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"license invalid", domain.WrapError(domain.ErrLicenseInvalid, "gate", errors.New("rejected")), http.StatusUnauthorized, "license_invalid"},
		{"provider down", domain.WrapError(domain.ErrLicenseProviderUnavailable, "gate", context.DeadlineExceeded), http.StatusServiceUnavailable, "license_provider_unavailable"},
		{"unsupported", domain.WrapError(domain.ErrUnsupportedFormat, "extract", context.Canceled), http.StatusUnsupportedMediaType, "unsupported_format"},
		{"too large", domain.WrapError(domain.ErrDocumentTooLarge, "extract", context.Canceled), http.StatusRequestEntityTooLarge, "document_too_large"},
		{"corrupt", domain.WrapError(domain.ErrCorruptDocument, "extract", context.Canceled), http.StatusUnprocessableEntity, "corrupt_document"},
		{"analysis timeout", domain.WrapError(domain.ErrAnalysisTimeout, "analysis", context.DeadlineExceeded), http.StatusGatewayTimeout, "analysis_timeout"},
		{"malformed output", domain.WrapError(domain.ErrMalformedModelOutput, "analysis", context.Canceled), http.StatusBadGateway, "malformed_model_output"},
		{"disposal failure", domain.WrapError(domain.ErrDisposalFailure, "dispose", context.Canceled), http.StatusInternalServerError, "disposal_failure"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewRouter(&analyzerFake{err: tc.err}, 1<<20, RouterOptions{}).Handler()
			req := newAnalyzeRequest(t, map[string]string{"license_key": "k"}, "contract")
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, res.Code)
			}
			if code := decodeErrorCode(t, res); code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, code)
			}
		})
	}
}

func TestAnalyzeEndpointRejectsNonPost(t *testing.T) {
	handler := NewRouter(&analyzerFake{}, 1<<20, RouterOptions{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/v1/analyze", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := NewRouter(&analyzerFake{}, 1<<20, RouterOptions{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}
