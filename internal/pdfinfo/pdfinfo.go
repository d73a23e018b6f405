package pdfinfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"tailored-cv-web/internal/shared/storage/object"
)

// maxInspectBytes bounds how much of a stored profile is buffered for inspection.
const maxInspectBytes = 32 << 20

var ErrNotPDF = errors.New("not a pdf document")

// Info is what the dashboard shows about a selected profile. It is never used
// to accept or reject a file.
type Info struct {
	Pages int
}

// Inspect reads the stored object and counts its pages.
func Inspect(ctx context.Context, store object.ObjectStore, storageKey string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	body, err := store.Open(ctx, storageKey)
	if err != nil {
		return Info{}, fmt.Errorf("inspect key=%s: %w", storageKey, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, maxInspectBytes+1))
	if err != nil {
		return Info{}, fmt.Errorf("inspect key=%s: read: %w", storageKey, err)
	}
	if len(raw) > maxInspectBytes {
		return Info{}, fmt.Errorf("inspect key=%s: larger than %d bytes", storageKey, maxInspectBytes)
	}
	return InspectBytes(raw)
}

// InspectBytes counts the pages of an in-memory PDF.
func InspectBytes(data []byte) (info Info, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return Info{}, ErrNotPDF
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			info, err = Info{}, fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return Info{Pages: reader.NumPage()}, nil
}
