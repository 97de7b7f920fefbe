package fio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeTool writes an executable shell script standing in for fio.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakefio")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(t *testing.T, body string) *Runner {
	t.Helper()
	r := NewRunner(Request{
		TargetPath:       t.TempDir(),
		Profile:          "test.fio",
		Engine:           "libaio",
		ExpectedDuration: time.Second,
	})
	r.Binary = fakeTool(t, body)
	r.Progress = nil
	return r
}

func TestRequestArgs(t *testing.T) {
	req := Request{TargetPath: "/mnt/data/", Profile: "cdm8.fio", Engine: "libaio"}

	got := req.Args()
	want := []string{"--directory=/mnt/data/", "cdm8.fio", "--output-format=json", "--ioengine=libaio"}
	if len(got) != len(want) {
		t.Fatalf("args = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunCompleted(t *testing.T) {
	r := newTestRunner(t, `cat <<'EOF'
fio: preamble warning
{"fio version": "fio-3.36", "global options": {"ioengine": "libaio"}, "jobs": []}
EOF`)

	doc, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if doc.Version != "fio-3.36" {
		t.Errorf("version = %q", doc.Version)
	}
}

func TestRunSubprocessFailure(t *testing.T) {
	r := newTestRunner(t, `echo "boom" >&2; exit 3`)

	_, err := r.Run(context.Background())
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("got %v, want *ExitError", err)
	}
	if exitErr.Stderr != "boom" {
		t.Errorf("stderr = %q, want \"boom\"", exitErr.Stderr)
	}
}

func TestRunMalformedOutput(t *testing.T) {
	r := newTestRunner(t, `echo "definitely not json"`)

	_, err := r.Run(context.Background())
	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("got %v, want *MalformedOutputError", err)
	}
}

func TestRunCancelled(t *testing.T) {
	r := newTestRunner(t, `sleep 30`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := r.Run(ctx)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation took %s, subprocess was not terminated", elapsed)
	}

	// A cancelled run leaves no artifacts behind in the target.
	entries, readErr := os.ReadDir(r.Cfg.TargetPath)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("target dir not empty after cancellation: %v", entries)
	}
}

func TestRunRemovesScratchFile(t *testing.T) {
	dir := t.TempDir()
	scratch := filepath.Join(dir, "diskmark.test")
	if err := os.WriteFile(scratch, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	body := fmt.Sprintf(`cat <<'EOF'
{"global options": {"directory": "%s", "filename": "diskmark.test"}, "jobs": []}
EOF`, dir)
	r := newTestRunner(t, body)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("scratch file still present after successful run")
	}
}

func TestRunLaunchFailure(t *testing.T) {
	r := NewRunner(Request{TargetPath: t.TempDir(), Profile: "x.fio", Engine: "libaio"})
	r.Binary = filepath.Join(t.TempDir(), "does-not-exist")
	r.Progress = nil

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected launch error")
	}
}
