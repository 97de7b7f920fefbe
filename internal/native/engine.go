// Package native is a built-in sequential I/O engine for hosts without
// fio. It runs a much smaller workload than the fio profiles and only
// reports the sequential Q1T1 pair.
package native

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"diskmark/internal/fio"
	"diskmark/internal/stats"
)

const (
	defaultBlockSize = 1 << 20   // 1 MiB
	defaultFileSize  = 256 << 20 // 256 MiB
	scratchName      = "diskmark.native.test"
)

// Config sizes the native workload.
type Config struct {
	TargetPath string
	BlockSize  int
	FileSize   int64
}

// Engine writes and reads back a scratch file in fixed blocks, recording
// per-operation latency.
type Engine struct {
	Cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = defaultBlockSize
	}
	if cfg.FileSize <= 0 {
		cfg.FileSize = defaultFileSize
	}
	return &Engine{Cfg: cfg}
}

// Run executes the write pass then the read pass and returns one metric
// per direction. The scratch file is removed on the way out.
func (e *Engine) Run(ctx context.Context) ([]fio.Metric, error) {
	path := filepath.Join(e.Cfg.TargetPath, scratchName)
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("could not remove native scratch file")
		}
	}()

	writeMetric, err := e.writePass(ctx, path)
	if err != nil {
		return nil, err
	}

	readMetric, err := e.readPass(ctx, path)
	if err != nil {
		return nil, err
	}

	return []fio.Metric{readMetric, writeMetric}, nil
}

func (e *Engine) writePass(ctx context.Context, path string) (fio.Metric, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fio.Metric{}, fmt.Errorf("creating scratch file: %w", err)
	}
	defer f.Close()

	block := make([]byte, e.Cfg.BlockSize)
	for i := range block {
		block[i] = byte(i)
	}

	hist := stats.NewSafeHistogram()
	start := time.Now()
	var written int64

	for written < e.Cfg.FileSize {
		if err := ctx.Err(); err != nil {
			return fio.Metric{}, fio.ErrCancelled
		}
		opStart := time.Now()
		n, err := f.Write(block)
		if err != nil {
			return fio.Metric{}, fmt.Errorf("writing scratch file: %w", err)
		}
		hist.Record(time.Since(opStart))
		written += int64(n)
	}
	if err := f.Sync(); err != nil {
		return fio.Metric{}, fmt.Errorf("syncing scratch file: %w", err)
	}

	return e.metric(fio.DirectionWrite, written, time.Since(start), hist), nil
}

func (e *Engine) readPass(ctx context.Context, path string) (fio.Metric, error) {
	f, err := os.Open(path)
	if err != nil {
		return fio.Metric{}, fmt.Errorf("opening scratch file: %w", err)
	}
	defer f.Close()

	block := make([]byte, e.Cfg.BlockSize)
	hist := stats.NewSafeHistogram()
	start := time.Now()
	var read int64

	for read < e.Cfg.FileSize {
		if err := ctx.Err(); err != nil {
			return fio.Metric{}, fio.ErrCancelled
		}
		opStart := time.Now()
		n, err := f.ReadAt(block, read)
		if n == 0 && err != nil {
			break
		}
		hist.Record(time.Since(opStart))
		read += int64(n)
	}

	return e.metric(fio.DirectionRead, read, time.Since(start), hist), nil
}

func (e *Engine) metric(dir fio.Direction, bytes int64, elapsed time.Duration, hist *stats.SafeHistogram) fio.Metric {
	secs := elapsed.Seconds()
	if secs <= 0 {
		secs = 1
	}
	bps := int64(float64(bytes) / secs)

	return fio.Metric{
		Label:          "Sequential",
		Direction:      dir,
		SizeValue:      e.Cfg.BlockSize >> 20,
		SizeUnit:       "MiB",
		QueueDepth:     1,
		Threads:        1,
		ThroughputMBps: fio.FormatThroughput(bps),
		IOPS:           float64(hist.TotalCount()) / secs,
		LatencyUs:      fmt.Sprintf("%.2f", hist.MeanUs()),
	}
}
