package httpadapter

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/petrolex/contract-engine/internal/core/domain"
	"github.com/petrolex/contract-engine/internal/core/ports"
)

const multipartMemoryLimit = 4 << 20

type Router struct {
	analyzer       ports.ContractAnalyzer
	maxUploadBytes int64
	opts           RouterOptions
}

type RouterOptions struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
	MetricsHandler http.Handler
}

func NewRouter(analyzer ports.ContractAnalyzer, maxUploadBytes int64, opts RouterOptions) *Router {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return &Router{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
		opts:           opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/analyze", rt.analyze)
	if rt.opts.MetricsHandler != nil {
		mux.Handle("/metrics", rt.opts.MetricsHandler)
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, 0)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	// One byte of headroom so the ceiling check downstream can tell
	// "at the limit" from "over it".
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, r, domain.WrapError(domain.ErrDocumentTooLarge, "parse multipart", err))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "read upload", err))
		return
	}
	defer file.Close()

	licenseKey := strings.TrimSpace(r.FormValue("license_key"))
	if licenseKey == "" {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "read form", errForm("license_key")))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(file, rt.maxUploadBytes+1))
	if err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "read upload", err))
		return
	}

	report, err := rt.analyzer.Analyze(r.Context(), ports.AnalyzeRequest{
		Filename:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Payload:     payload,
		LicenseKey:  licenseKey,
		RemoteIP:    clientIP(r),
		ProfileID:   r.FormValue("profile"),
		PartyRole:   r.FormValue("party_role"),
		DealContext: r.FormValue("deal_context"),
		RequestID:   requestIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type errForm string

func (e errForm) Error() string { return "form field '" + string(e) + "' is required" }

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.OutcomeCode(err)
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]any{
		"error": map[string]string{
			"code":      code,
			"message":   errorMessage(code),
			"requestId": requestIDFromContext(r.Context()),
		},
	})
}
