package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(doc.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	e := New(1000)
	out, err := e.Extract(context.Background(), []byte("DRILLING CONTRACT\r\nSection 1.\r\n"), "text/plain", "contract.txt")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if string(out) != "DRILLING CONTRACT\nSection 1." {
		t.Fatalf("unexpected normalized text: %q", out)
	}
}

func TestExtractDispatchesByExtensionWhenMimeIsGeneric(t *testing.T) {
	e := New(1000)
	out, err := e.Extract(context.Background(), []byte("lease terms"), "application/octet-stream", "lease.txt")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if string(out) != "lease terms" {
		t.Fatalf("unexpected text: %q", out)
	}
}

func TestExtractDOCX(t *testing.T) {
	payload := buildDOCX(t, []string{"MASTER SERVICE AGREEMENT", "between Alpha Drilling LLC and Operator"})

	e := New(10_000)
	out, err := e.Extract(context.Background(), payload,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "msa.docx")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "MASTER SERVICE AGREEMENT") || !strings.Contains(text, "Alpha Drilling LLC") {
		t.Fatalf("docx text missing paragraphs: %q", text)
	}
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "Dayrate"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B1", "32000"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	e := New(10_000)
	out, err := e.Extract(context.Background(), buf.Bytes(),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "rates.xlsx")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(string(out), "Dayrate\t32000") {
		t.Fatalf("xlsx rows missing: %q", out)
	}
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	e := New(1000)
	_, err := e.Extract(context.Background(), []byte("data"), "image/png", "scan.png")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	e := New(1000)
	_, err := e.Extract(context.Background(), []byte("%PDF-1.7 not actually a pdf"), "application/pdf", "broken.pdf")
	if !domain.IsKind(err, domain.ErrCorruptDocument) {
		t.Fatalf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestExtractRejectsCorruptDOCX(t *testing.T) {
	e := New(1000)
	_, err := e.Extract(context.Background(), []byte("not a zip archive"),
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "broken.docx")
	if !domain.IsKind(err, domain.ErrCorruptDocument) {
		t.Fatalf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestExtractRejectsInvalidUTF8PlainText(t *testing.T) {
	e := New(1000)
	_, err := e.Extract(context.Background(), []byte{0xff, 0xfe, 0x00, 0x41}, "text/plain", "weird.txt")
	if !domain.IsKind(err, domain.ErrCorruptDocument) {
		t.Fatalf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestExtractRejectsOversizedTextInsteadOfTruncating(t *testing.T) {
	e := New(10)
	_, err := e.Extract(context.Background(), []byte("this text is longer than ten characters"), "text/plain", "big.txt")
	if !domain.IsKind(err, domain.ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}
}

func TestExtractRejectsEmptyPayload(t *testing.T) {
	e := New(1000)
	_, err := e.Extract(context.Background(), nil, "text/plain", "empty.txt")
	if !domain.IsKind(err, domain.ErrCorruptDocument) {
		t.Fatalf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestExtractMapsContextDeadlineToExtractionTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload := buildDOCX(t, []string{"some paragraph"})
	e := New(1000)
	_, err := e.Extract(ctx, payload,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "msa.docx")
	if !domain.IsKind(err, domain.ErrExtractionTimeout) {
		t.Fatalf("expected ErrExtractionTimeout, got %v", err)
	}
}
