package fio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBinary is the fio executable name resolved via PATH.
const DefaultBinary = "fio"

// Request describes one benchmark invocation. It is immutable once built.
type Request struct {
	// TargetPath is the absolute directory to test, trailing separator
	// included.
	TargetPath string

	// Profile is the path to the fio job file.
	Profile string

	// Engine is the platform I/O engine name (libaio, posixaio, windowsaio).
	Engine string

	// ExpectedDuration drives the progress indicator. It is an estimate
	// derived from the workload profile, not a timeout: completion is
	// always signalled by fio exiting.
	ExpectedDuration time.Duration
}

// Args returns the deterministic fio command line for the request.
func (req Request) Args() []string {
	return []string{
		"--directory=" + req.TargetPath,
		req.Profile,
		"--output-format=json",
		"--ioengine=" + req.Engine,
	}
}

// Runner supervises a single fio subprocess and its progress indicator.
// The runner exclusively owns the subprocess lifecycle; cancellation is
// requested through the context passed to Run.
type Runner struct {
	Binary string
	Cfg    Request

	// Progress receives the textual progress bar. Nil disables it.
	Progress io.Writer
}

func NewRunner(cfg Request) *Runner {
	return &Runner{
		Binary:   DefaultBinary,
		Cfg:      cfg,
		Progress: os.Stderr,
	}
}

// Run executes fio and returns its decoded JSON document.
//
// The progress goroutine is always stopped before Run returns, and the
// stop signal is closed at most once regardless of which of completion
// or cancellation fires first.
func (r *Runner) Run(ctx context.Context) (*Document, error) {
	args := r.Cfg.Args()
	log.Debug().Str("binary", r.Binary).Strs("args", args).Msg("launching fio")

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launching %s: %w", r.Binary, err)
	}

	stop := make(chan struct{})
	var once sync.Once
	halt := func() { once.Do(func() { close(stop) }) }

	var wg sync.WaitGroup
	if r.Progress != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.renderProgress(stop)
		}()
	}

	err := cmd.Wait()

	// The stop signal must be observed by the progress goroutine before
	// control returns to the caller.
	halt()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	if err != nil {
		return nil, &ExitError{Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	doc, err := Decode(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	r.removeScratchFile(doc)
	return doc, nil
}

// renderProgress ticks once per second until the run duration elapses or
// the stop signal fires.
func (r *Runner) renderProgress(stop <-chan struct{}) {
	total := r.Cfg.ExpectedDuration
	if total <= 0 {
		total = time.Minute
	}

	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			fmt.Fprintf(r.Progress, "\r%s 100%%\n", progressBar(1.0, 40))
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			pct := elapsed.Seconds() / total.Seconds()
			if pct > 1.0 {
				pct = 1.0
			}
			fmt.Fprintf(r.Progress, "\r%s %3.0f%% | %s/%s",
				progressBar(pct, 40),
				pct*100,
				elapsed.Round(time.Second), total)
		}
	}
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

// removeScratchFile deletes the test file fio left behind in the target
// directory. Failure is logged, never fatal.
func (r *Runner) removeScratchFile(doc *Document) {
	dir, ok := doc.GlobalOption("directory")
	if !ok {
		return
	}
	name, ok := doc.GlobalOption("filename")
	if !ok {
		return
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := os.Remove(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not remove fio scratch file")
	}
}
