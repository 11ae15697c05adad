package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrolex/contract-engine/internal/core/domain"
	"github.com/petrolex/contract-engine/internal/core/ports"
)

// Options are the tunable pipeline parameters. Zero values fall back to the
// documented defaults.
type Options struct {
	MaxUploadBytes  int64
	LicenseTimeout  time.Duration
	ExtractTimeout  time.Duration
	AnalysisTimeout time.Duration
	SearchTimeout   time.Duration

	EntityLookupCap     int
	EntityLookupWorkers int

	RateWindow      time.Duration
	RateMaxRequests int
}

func (o Options) normalize() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 10 * 1024 * 1024
	}
	if o.LicenseTimeout <= 0 {
		o.LicenseTimeout = 5 * time.Second
	}
	if o.ExtractTimeout <= 0 {
		o.ExtractTimeout = 10 * time.Second
	}
	if o.AnalysisTimeout <= 0 {
		o.AnalysisTimeout = 60 * time.Second
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = 8 * time.Second
	}
	if o.EntityLookupCap <= 0 {
		o.EntityLookupCap = 8
	}
	if o.EntityLookupWorkers <= 0 {
		o.EntityLookupWorkers = 4
	}
	if o.RateWindow <= 0 {
		o.RateWindow = time.Hour
	}
	if o.RateMaxRequests <= 0 {
		o.RateMaxRequests = 30
	}
	return o
}

// AnalyzeContractUseCase orchestrates one ephemeral analysis request:
// license gate, extraction, model analysis, entity risk lookup, assembly.
// All content-bearing state lives in a domain.RequestScope that is disposed
// of on every exit path before the report reaches the transport layer.
type AnalyzeContractUseCase struct {
	license   ports.LicenseVerifier
	extractor ports.TextExtractor
	provider  ports.AnalysisProvider
	searcher  ports.EntitySearcher
	profiles  ports.ProfileCatalog
	audit     ports.AuditStore
	opts      Options

	// overridden in tests exercising the disposal-failure path
	disposeFn func(*domain.RequestScope) error
}

func NewAnalyzeContractUseCase(
	license ports.LicenseVerifier,
	extractor ports.TextExtractor,
	provider ports.AnalysisProvider,
	searcher ports.EntitySearcher,
	profiles ports.ProfileCatalog,
	audit ports.AuditStore,
	opts Options,
) *AnalyzeContractUseCase {
	return &AnalyzeContractUseCase{
		license:   license,
		extractor: extractor,
		provider:  provider,
		searcher:  searcher,
		profiles:  profiles,
		audit:     audit,
		opts:      opts.normalize(),
	}
}

func (uc *AnalyzeContractUseCase) Analyze(ctx context.Context, req ports.AnalyzeRequest) (report *domain.Report, err error) {
	start := time.Now()

	if len(req.Payload) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze", errors.New("empty payload"))
	}
	if strings.TrimSpace(req.LicenseKey) == "" {
		return nil, domain.WrapError(domain.ErrLicenseInvalid, "analyze", errors.New("license key missing"))
	}

	scope := domain.NewRequestScope(req.Payload)
	session := &domain.LicenseSession{
		LicenseKeyHash: domain.HashLicenseKey(req.LicenseKey),
		RequestIP:      req.RemoteIP,
		CheckedAt:      time.Now().UTC(),
	}

	// The disposal guard is the zero-retention invariant: it runs on every
	// exit path, including panics unwinding through this frame and client
	// disconnects. If the wipe itself cannot be verified the response is
	// withheld and the request is recorded as a security-relevant incident.
	defer func() {
		if dErr := uc.dispose(scope); dErr != nil {
			report = nil
			err = domain.WrapError(domain.ErrDisposalFailure, "dispose request scope", dErr)
			slog.Error("disposal_failure", "request_id", req.RequestID, "error", dErr)
		}
		uc.appendAudit(session, req.RequestID, err)
	}()

	if err = uc.gateLicense(ctx, session, req.LicenseKey); err != nil {
		return nil, err
	}

	// Byte ceiling before any parsing work.
	if int64(len(req.Payload)) > uc.opts.MaxUploadBytes {
		return nil, domain.WrapError(domain.ErrDocumentTooLarge, "analyze",
			fmt.Errorf("payload %d bytes exceeds ceiling %d", len(req.Payload), uc.opts.MaxUploadBytes))
	}

	prof, err := uc.profiles.Resolve(req.ProfileID)
	if err != nil {
		return nil, err
	}

	text, err := uc.extract(ctx, scope, req)
	if err != nil {
		return nil, err
	}

	analysis, err := uc.analyze(ctx, scope, domain.AnalysisRequest{
		Text:        text,
		Profile:     prof,
		PartyRole:   req.PartyRole,
		DealContext: req.DealContext,
	})
	if err != nil {
		return nil, err
	}

	candidates := SelectEntities(analysis.Entities, text, uc.opts.EntityLookupCap)
	entityRisks, coverage := uc.lookupEntities(ctx, candidates)

	// Assembly: snippets are spans of contract text and stay inside the scope.
	analysis.Entities = nil

	return &domain.Report{
		RequestID:   req.RequestID,
		Profile:     prof.ID,
		Analysis:    *analysis,
		EntityRisks: entityRisks,
		Coverage:    coverage,
		GeneratedAt: time.Now().UTC(),
		ElapsedMS:   time.Since(start).Milliseconds(),
	}, nil
}

// gateLicense validates the key before any paid processing and flags
// suspicious per-key request rates. Provider failures deny access.
func (uc *AnalyzeContractUseCase) gateLicense(ctx context.Context, session *domain.LicenseSession, key string) error {
	count, err := uc.audit.CountSince(ctx, session.LicenseKeyHash, time.Now().UTC().Add(-uc.opts.RateWindow))
	if err != nil {
		slog.Warn("audit_rate_check_failed", "error", err)
	} else if count >= uc.opts.RateMaxRequests {
		session.RateFlagged = true
		slog.Warn("license_rate_flagged", "license_key_hash", session.LicenseKeyHash, "count", count)
	}

	vctx, cancel := context.WithTimeout(ctx, uc.opts.LicenseTimeout)
	defer cancel()

	status, err := uc.license.Verify(vctx, key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Fail closed: a silent provider never grants access.
			return domain.WrapError(domain.ErrLicenseProviderUnavailable, "license gate", err)
		}
		return err
	}
	if !status.Valid {
		return domain.WrapError(domain.ErrLicenseInvalid, "license gate", errors.New("provider returned invalid"))
	}
	session.PlanTier = status.PlanTier
	return nil
}

func (uc *AnalyzeContractUseCase) extract(ctx context.Context, scope *domain.RequestScope, req ports.AnalyzeRequest) (string, error) {
	ectx, cancel := context.WithTimeout(ctx, uc.opts.ExtractTimeout)
	defer cancel()

	text, err := uc.extractor.Extract(ectx, scope.Payload(), req.MimeType, req.Filename)
	if err != nil {
		return "", err
	}
	scope.SetText(text)
	return string(text), nil
}

func (uc *AnalyzeContractUseCase) analyze(ctx context.Context, scope *domain.RequestScope, req domain.AnalysisRequest) (*domain.ContractAnalysis, error) {
	actx, cancel := context.WithTimeout(ctx, uc.opts.AnalysisTimeout)
	defer cancel()

	analysis, raw, err := uc.provider.Analyze(actx, req)
	scope.SetRawModelOutput(raw)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.WrapError(domain.ErrAnalysisTimeout, "analysis", err)
		}
		return nil, err
	}
	return analysis, nil
}

// lookupEntities fans out one bounded lookup per candidate and collects
// partial results: a failed entity becomes a LookupFailed marker, never a
// failed report.
func (uc *AnalyzeContractUseCase) lookupEntities(ctx context.Context, candidates []domain.EntityCandidate) ([]domain.EntityRisk, domain.RiskCoverage) {
	if len(candidates) == 0 {
		return nil, domain.CoverageFull
	}

	results := make([]domain.EntityRisk, len(candidates))
	sem := make(chan struct{}, uc.opts.EntityLookupWorkers)
	var wg sync.WaitGroup

	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand domain.EntityCandidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			lctx, cancel := context.WithTimeout(ctx, uc.opts.SearchTimeout)
			defer cancel()

			signal, err := uc.searcher.Lookup(lctx, cand.Name)
			if err != nil {
				// Entity names are content-derived; log position only.
				slog.Warn("entity_lookup_failed", "index", i, "error", err)
				signal = domain.RiskSignal{LookupFailed: true}
			}
			results[i] = domain.EntityRisk{Entity: cand, Signal: signal}
		}(i, cand)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Signal.LookupFailed {
			failed++
		}
	}
	switch {
	case failed == 0:
		return results, domain.CoverageFull
	case failed == len(results):
		return results, domain.CoverageNone
	default:
		return results, domain.CoveragePartial
	}
}

func (uc *AnalyzeContractUseCase) dispose(scope *domain.RequestScope) error {
	if uc.disposeFn != nil {
		return uc.disposeFn(scope)
	}
	return scope.Dispose()
}

// appendAudit writes the single metadata-only record for this request. It
// uses a fresh context so client disconnects cannot skip the trail.
func (uc *AnalyzeContractUseCase) appendAudit(session *domain.LicenseSession, requestID string, result error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rec := domain.AuditRecord{
		ID:             uuid.NewString(),
		LicenseKeyHash: session.LicenseKeyHash,
		RequestIP:      session.RequestIP,
		OutcomeCode:    domain.OutcomeCode(result),
		RateFlagged:    session.RateFlagged,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.audit.Append(ctx, rec); err != nil {
		slog.Error("audit_append_failed", "request_id", requestID, "error", err)
	}
}
