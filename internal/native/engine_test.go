package native

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"diskmark/internal/fio"
)

func TestEngineRun(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(Config{
		TargetPath: dir,
		BlockSize:  4 << 10,
		FileSize:   64 << 10,
	})

	metrics, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(metrics))
	}

	read, write := metrics[0], metrics[1]
	if read.Direction != fio.DirectionRead || write.Direction != fio.DirectionWrite {
		t.Errorf("directions = %s, %s", read.Direction, write.Direction)
	}
	for _, m := range metrics {
		if m.Label != "Sequential" || m.QueueDepth != 1 || m.Threads != 1 {
			t.Errorf("unexpected metric shape: %+v", m)
		}
		if m.ThroughputMBps == "" || m.LatencyUs == "" {
			t.Errorf("metric missing measurements: %+v", m)
		}
		if m.IOPS <= 0 {
			t.Errorf("iops = %v, want > 0", m.IOPS)
		}
	}

	// Scratch file is cleaned up after the run.
	if _, err := os.Stat(filepath.Join(dir, scratchName)); !os.IsNotExist(err) {
		t.Error("scratch file left behind")
	}
}

func TestEngineRunCancelled(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(Config{TargetPath: dir, BlockSize: 4 << 10, FileSize: 64 << 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Run(ctx); !errors.Is(err, fio.ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, scratchName)); !os.IsNotExist(err) {
		t.Error("scratch file left behind after cancellation")
	}
}

func TestEngineRunBadTarget(t *testing.T) {
	e := NewEngine(Config{
		TargetPath: filepath.Join(t.TempDir(), "missing"),
		BlockSize:  4 << 10,
		FileSize:   64 << 10,
	})
	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing target directory")
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(Config{TargetPath: "/tmp"})
	if e.Cfg.BlockSize != defaultBlockSize {
		t.Errorf("block size = %d, want %d", e.Cfg.BlockSize, defaultBlockSize)
	}
	if e.Cfg.FileSize != defaultFileSize {
		t.Errorf("file size = %d, want %d", e.Cfg.FileSize, defaultFileSize)
	}
}
