package ports

import (
	"context"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

// AnalyzeRequest is one complete inbound unit of work. Payload ownership
// transfers to the pipeline, which disposes of it on every exit path.
type AnalyzeRequest struct {
	Filename    string
	MimeType    string
	Payload     []byte
	LicenseKey  string
	RemoteIP    string
	ProfileID   string
	PartyRole   string
	DealContext string
	RequestID   string
}

// ContractAnalyzer is the inbound contract for the whole analysis pipeline.
type ContractAnalyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*domain.Report, error)
}
