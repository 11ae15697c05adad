package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

// extractDOCX reads word/document.xml straight from the in-memory zip and
// collects text runs. Paragraphs become newlines, tabs and line breaks are
// preserved as whitespace.
func extractDOCX(ctx context.Context, payload []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx", err)
	}

	var docXML *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx", errors.New("word/document.xml missing"))
	}

	rc, err := docXML.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx", err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx", fmt.Errorf("decode document.xml: %w", err))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
