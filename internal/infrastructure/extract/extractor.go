// Package extract converts uploaded contract payloads to normalized text.
// All parsing happens over in-memory readers; nothing is ever written to a
// filesystem path, temp file or cache.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Extractor struct {
	maxTextChars int
}

func New(maxTextChars int) *Extractor {
	if maxTextChars <= 0 {
		maxTextChars = 400_000
	}
	return &Extractor{maxTextChars: maxTextChars}
}

func (e *Extractor) Extract(ctx context.Context, payload []byte, mimeType, filename string) ([]byte, error) {
	if len(payload) == 0 {
		return nil, domain.WrapError(domain.ErrCorruptDocument, "extract", errors.New("empty payload"))
	}

	text, err := e.dispatch(ctx, payload, mimeType, filename)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.WrapError(domain.ErrExtractionTimeout, "extract", err)
		}
		return nil, err
	}

	normalized := normalize(text)
	if len(normalized) == 0 {
		return nil, domain.WrapError(domain.ErrCorruptDocument, "extract", errors.New("no extractable text"))
	}
	// Reject rather than truncate: silently cutting the contract would
	// corrupt the analysis without signaling degraded accuracy.
	if len([]rune(normalized)) > e.maxTextChars {
		return nil, domain.WrapError(domain.ErrDocumentTooLarge, "extract",
			fmt.Errorf("extracted text exceeds %d chars", e.maxTextChars))
	}
	return []byte(normalized), nil
}

func (e *Extractor) dispatch(ctx context.Context, payload []byte, mimeType, filename string) (string, error) {
	switch resolveFormat(mimeType, filename) {
	case mimePDF:
		return extractPDF(ctx, payload)
	case mimeDOCX:
		return extractDOCX(ctx, payload)
	case mimeXLSX:
		return extractXLSX(ctx, payload)
	case "text/plain":
		return extractPlainText(payload)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract",
			fmt.Errorf("mime %q, file %q", mimeType, filepath.Ext(filename)))
	}
}

func resolveFormat(mimeType, filename string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case mimePDF, mimeDOCX, mimeXLSX:
		return mt
	case "text/plain", "text/markdown":
		return "text/plain"
	}

	// Browsers often send application/octet-stream; fall back to extension.
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".xlsx":
		return mimeXLSX
	case ".txt", ".md", ".text":
		return "text/plain"
	}
	return ""
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
