package fio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteDefaultProfile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefaultProfile(dir)
	if err != nil {
		t.Fatalf("WriteDefaultProfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, job := range []string{"[SEQ-1M-Q8-T1]", "[SEQ-1M-Q1-T1]", "[RND-4K-Q32-T1]", "[RND-4K-Q1-T1]"} {
		if !strings.Contains(content, job) {
			t.Errorf("default profile missing %s", job)
		}
	}
}

func TestEstimateDuration(t *testing.T) {
	profile := `[global]
runtime=5
loops=2

[SEQ-1M-Q8-T1]
rw=read

[SEQ-1M-Q8-T1]
rw=write

[RND-4K-Q1-T1]
rw=randread
`
	path := filepath.Join(t.TempDir(), "test.fio")
	if err := os.WriteFile(path, []byte(profile), 0o644); err != nil {
		t.Fatal(err)
	}

	// 5s runtime x 2 loops x 3 jobs
	if got := EstimateDuration(path); got != 30*time.Second {
		t.Errorf("EstimateDuration = %s, want 30s", got)
	}
}

func TestEstimateDurationMissingFile(t *testing.T) {
	if got := EstimateDuration(filepath.Join(t.TempDir(), "nope.fio")); got != defaultJobRuntime {
		t.Errorf("EstimateDuration = %s, want %s", got, defaultJobRuntime)
	}
}

func TestEstimateDurationDefaultProfile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefaultProfile(dir)
	if err != nil {
		t.Fatal(err)
	}

	// 5s runtime x 5 loops x 8 jobs
	if got := EstimateDuration(path); got != 200*time.Second {
		t.Errorf("EstimateDuration = %s, want 200s", got)
	}
}
