package extract

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

func extractPlainText(payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", domain.WrapError(domain.ErrCorruptDocument, "read plain text", errors.New("payload is not valid utf-8"))
	}
	return string(payload), nil
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("parser panic: %v", r)
}
