// Package precheck validates files locally before any upload, so obviously
// broken or unsupported documents fail without a network round trip.
package precheck

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Inspector sniffs file content and verifies PDF structure. The zero value
// is usable; MaxPhotoBytes only bounds CheckPhoto.
type Inspector struct {
	MaxPhotoBytes int64
}

func New(maxPhotoBytes int64) *Inspector {
	return &Inspector{MaxPhotoBytes: maxPhotoBytes}
}

// DetectKind classifies data as "pdf", "jpeg" or "png" by content sniffing.
// Content wins over the file extension; a .pdf full of junk is rejected.
func (i *Inspector) DetectKind(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%s: empty file", filepath.Base(filename))
	}
	switch contentType(data) {
	case "application/pdf":
		return "pdf", nil
	case "image/jpeg":
		return "jpeg", nil
	case "image/png":
		return "png", nil
	default:
		return "", fmt.Errorf("%s: unsupported document type", filepath.Base(filename))
	}
}

// CheckPDF accepts only structurally readable PDF files with at least one
// page.
func (i *Inspector) CheckPDF(filename string, data []byte) error {
	if contentType(data) != "application/pdf" {
		return fmt.Errorf("%s: not a PDF document", filepath.Base(filename))
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%s: unreadable PDF: %w", filepath.Base(filename), err)
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("%s: PDF has no pages", filepath.Base(filename))
	}
	return nil
}

// CheckPhoto accepts JPEG and PNG images within the configured size limit.
func (i *Inspector) CheckPhoto(filename string, data []byte) error {
	kind, err := i.DetectKind(filename, data)
	if err != nil {
		return err
	}
	if kind == "pdf" {
		return fmt.Errorf("%s: a profile photo must be an image", filepath.Base(filename))
	}
	if i.MaxPhotoBytes > 0 && int64(len(data)) > i.MaxPhotoBytes {
		return fmt.Errorf("%s: photo exceeds the %d byte limit", filepath.Base(filename), i.MaxPhotoBytes)
	}
	return nil
}

func contentType(data []byte) string {
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i > 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}
