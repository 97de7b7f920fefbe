package fio

import (
	"bufio"
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// defaultProfile is the built-in CDM8-style workload: sequential and
// random jobs at the classic queue-depth/thread combinations, read and
// write variants of each.
//
//go:embed profiles/cdm8.fio
var defaultProfile string

// defaultJobRuntime matches the runtime= fallback fio applies when a
// profile omits it.
const defaultJobRuntime = 5 * time.Second

// WriteDefaultProfile materializes the embedded profile into dir so fio
// can read it, returning its path.
func WriteDefaultProfile(dir string) (string, error) {
	path := filepath.Join(dir, "diskmark-cdm8.fio")
	if err := os.WriteFile(path, []byte(defaultProfile), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// EstimateDuration derives the expected wall-clock time of a profile from
// its configured per-job runtime, loop count, and number of job sections.
// The estimate only paces the progress indicator; it is not a timeout.
func EstimateDuration(profilePath string) time.Duration {
	f, err := os.Open(profilePath)
	if err != nil {
		return defaultJobRuntime
	}
	defer f.Close()
	return estimateDuration(bufio.NewScanner(f))
}

func estimateDuration(scanner *bufio.Scanner) time.Duration {
	runtime := defaultJobRuntime
	loops := 1
	jobs := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			if !strings.EqualFold(line, "[global]") {
				jobs++
			}
		case strings.HasPrefix(line, "runtime="):
			if secs, err := strconv.Atoi(strings.TrimPrefix(line, "runtime=")); err == nil && secs > 0 {
				runtime = time.Duration(secs) * time.Second
			}
		case strings.HasPrefix(line, "loops="):
			if n, err := strconv.Atoi(strings.TrimPrefix(line, "loops=")); err == nil && n > 0 {
				loops = n
			}
		}
	}

	if jobs == 0 {
		jobs = 1
	}
	return runtime * time.Duration(loops) * time.Duration(jobs)
}
