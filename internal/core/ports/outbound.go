package ports

import (
	"context"
	"time"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

// LicenseVerifier validates a license key against the licensing provider.
// Provider timeouts and transport failures surface as
// domain.ErrLicenseProviderUnavailable; the gate fails closed on them.
type LicenseVerifier interface {
	Verify(ctx context.Context, licenseKey string) (domain.LicenseStatus, error)
}

// TextExtractor converts an uploaded payload to normalized text, entirely in
// memory. Implementations must never write the payload to disk or cache.
type TextExtractor interface {
	Extract(ctx context.Context, payload []byte, mimeType, filename string) ([]byte, error)
}

// AnalysisProvider runs the model call and returns structured findings plus
// the raw model output, whose ownership transfers to the caller's request
// scope for guaranteed disposal.
type AnalysisProvider interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.ContractAnalysis, []byte, error)
}

// EntitySearcher queries the search provider for one entity name. Document
// content is never part of the query.
type EntitySearcher interface {
	Lookup(ctx context.Context, entityName string) (domain.RiskSignal, error)
}

// ProfileCatalog resolves an analysis profile id to its prompt tuning.
type ProfileCatalog interface {
	Resolve(id string) (domain.AnalysisProfile, error)
}

// AuditStore is the only durable state in the system: metadata-only records
// with a rolling retention window, shared across requests.
type AuditStore interface {
	Append(ctx context.Context, rec domain.AuditRecord) error
	CountSince(ctx context.Context, licenseKeyHash string, since time.Time) (int, error)
}
