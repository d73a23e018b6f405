package telemetry

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = orig
	}()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read log output: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestErrorWritesJSONLine(t *testing.T) {
	out := captureStdout(t, func() {
		Error("tailor.request.failed", map[string]any{
			"session_id": "s-1",
			"status":     502,
		})
	})

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode log json %q: %v", out, err)
	}
	if payload["level"] != "error" {
		t.Fatalf("expected level error, got %v", payload["level"])
	}
	if payload["msg"] != "tailor.request.failed" {
		t.Fatalf("unexpected msg %v", payload["msg"])
	}
	if payload["session_id"] != "s-1" {
		t.Fatalf("unexpected session_id %v", payload["session_id"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
}

func TestInfoLevelName(t *testing.T) {
	out := captureStdout(t, func() {
		Info("session.login", nil)
	})
	if !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("expected info level, got %s", out)
	}
}
