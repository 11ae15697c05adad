package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	ErrLicenseInvalid             = errors.New("license invalid")
	ErrLicenseExpired             = errors.New("license expired")
	ErrLicenseProviderUnavailable = errors.New("license provider unavailable")

	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrDocumentTooLarge  = errors.New("document too large")
	ErrExtractionTimeout = errors.New("extraction timeout")

	ErrAnalysisProvider     = errors.New("analysis provider error")
	ErrAnalysisTimeout      = errors.New("analysis timeout")
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrLookupFailed is per-entity and never fails the whole report.
	ErrLookupFailed = errors.New("entity lookup failed")

	ErrDisposalFailure = errors.New("disposal failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// OutcomeCode maps a pipeline result to the stable code recorded in audit
// metadata and surfaced in error responses. Codes never carry request content.
func OutcomeCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsKind(err, ErrLicenseInvalid):
		return "license_invalid"
	case IsKind(err, ErrLicenseExpired):
		return "license_expired"
	case IsKind(err, ErrLicenseProviderUnavailable):
		return "license_provider_unavailable"
	case IsKind(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case IsKind(err, ErrCorruptDocument):
		return "corrupt_document"
	case IsKind(err, ErrDocumentTooLarge):
		return "document_too_large"
	case IsKind(err, ErrExtractionTimeout):
		return "extraction_timeout"
	case IsKind(err, ErrAnalysisTimeout):
		return "analysis_timeout"
	case IsKind(err, ErrMalformedModelOutput):
		return "malformed_model_output"
	case IsKind(err, ErrAnalysisProvider):
		return "analysis_provider_error"
	case IsKind(err, ErrDisposalFailure):
		return "disposal_failure"
	case IsKind(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, context.Canceled):
		return "client_canceled"
	default:
		return "internal_error"
	}
}
