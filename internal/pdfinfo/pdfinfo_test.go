package pdfinfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	localstore "tailored-cv-web/internal/shared/storage/object/local"
)

// buildPDF writes a minimal document with n empty pages and a valid xref table.
func buildPDF(n int) []byte {
	var objs []string
	kids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestInspectBytesCountsPages(t *testing.T) {
	info, err := InspectBytes(buildPDF(2))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", info.Pages)
	}
}

func TestInspectBytesRejectsNonPDF(t *testing.T) {
	_, err := InspectBytes([]byte("hello world"))
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestInspectBytesTruncatedPDF(t *testing.T) {
	_, err := InspectBytes([]byte("%PDF-1.4\ngarbage"))
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestInspectReadsFromStore(t *testing.T) {
	store := localstore.New(t.TempDir())
	key, _, _, err := store.Save(context.Background(), "sess-1", "resume.pdf", bytes.NewReader(buildPDF(3)))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := Inspect(context.Background(), store, key)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", info.Pages)
	}
}

func TestInspectMissingKey(t *testing.T) {
	store := localstore.New(t.TempDir())
	if _, err := Inspect(context.Background(), store, "sess-1/missing.pdf"); err == nil {
		t.Fatal("expected error for missing key")
	}
}
