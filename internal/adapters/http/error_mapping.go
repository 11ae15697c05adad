package httpadapter

import (
	"net/http"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrLicenseInvalid), domain.IsKind(err, domain.ErrLicenseExpired):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrLicenseProviderUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case domain.IsKind(err, domain.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrCorruptDocument):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrExtractionTimeout), domain.IsKind(err, domain.ErrAnalysisTimeout):
		return http.StatusGatewayTimeout
	case domain.IsKind(err, domain.ErrAnalysisProvider), domain.IsKind(err, domain.ErrMalformedModelOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the user-facing message for a reason code. Responses
// never echo internals or fragments of the submitted document.
func errorMessage(code string) string {
	switch code {
	case "license_invalid":
		return "license key was rejected"
	case "license_expired":
		return "license is refunded or expired"
	case "license_provider_unavailable":
		return "license verification is temporarily unavailable"
	case "unsupported_format":
		return "unsupported document format; upload PDF, DOCX, XLSX or plain text"
	case "corrupt_document":
		return "document could not be read"
	case "document_too_large":
		return "document exceeds the size ceiling"
	case "extraction_timeout":
		return "text extraction timed out"
	case "analysis_timeout":
		return "analysis timed out"
	case "analysis_provider_error":
		return "analysis provider is unavailable"
	case "malformed_model_output":
		return "analysis produced unusable output; try again"
	case "invalid_input":
		return "request is missing required fields"
	default:
		return "internal error"
	}
}
