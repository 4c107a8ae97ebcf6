package intake

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Fingerprint returns the lowercase hex SHA-256 of data.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Check rejects empty input and anything that does not sniff as a PDF.
func Check(data []byte) error {
	if len(data) == 0 {
		return ErrNoInput
	}
	if http.DetectContentType(data) != "application/pdf" {
		return ErrUnsupportedFormat
	}
	return nil
}

// PageCount reads the page count of a PDF with pdfcpu.
func PageCount(data []byte) (*int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}
	return &count, nil
}

// ValidFingerprint reports whether s has the shape Fingerprint produces.
func ValidFingerprint(s string) bool {
	if len(s) != sha256.Size*2 || strings.ToLower(s) != s {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
