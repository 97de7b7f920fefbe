package fio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Direction tags which sub-result a metric came from.
type Direction string

const (
	DirectionRead  Direction = "Read"
	DirectionWrite Direction = "Write"
)

// Metric is one normalized (job, direction) result.
type Metric struct {
	// Label is the decoded access pattern, e.g. "Sequential" or "Random".
	Label     string
	Direction Direction

	SizeValue  int
	SizeUnit   string // "KiB", "MiB"
	QueueDepth int
	Threads    int

	// ThroughputMBps and LatencyUs are fixed two-decimal strings, the
	// form the report prints them in.
	ThroughputMBps string
	IOPS           float64
	LatencyUs      string
}

// Diagnostic records a per-job parse problem. Jobs with diagnostics are
// skipped; parsing always continues.
type Diagnostic struct {
	Job    string
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("job %q: %s", d.Job, d.Reason)
}

// Parse converts a raw fio document into normalized metrics, one per
// (job, direction) pair with data. It never fails: malformed jobs are
// skipped with a diagnostic and an empty document yields an empty,
// non-nil slice.
func Parse(doc *Document) ([]Metric, []Diagnostic) {
	metrics := []Metric{}
	var diags []Diagnostic

	if doc == nil || len(doc.Jobs) == 0 {
		diags = append(diags, Diagnostic{Reason: "no jobs in fio results"})
		return metrics, diags
	}

	for _, job := range doc.Jobs {
		name, err := parseJobName(job.Name)
		if err != nil {
			diags = append(diags, Diagnostic{Job: job.Name, Reason: err.Error()})
			log.Debug().Str("job", job.Name).Err(err).Msg("skipping unparseable job")
			continue
		}

		if hasData(job.Read) {
			metrics = append(metrics, name.metric(DirectionRead, job.Read))
		}
		if hasData(job.Write) {
			metrics = append(metrics, name.metric(DirectionWrite, job.Write))
		}
	}

	return metrics, diags
}

func hasData(s DirStats) bool {
	return s.BWBytes > 0 || s.IOPS > 0
}

// jobName is the decoded form of the MODE-BLOCKSIZE-Qn-Tn convention.
type jobName struct {
	Label      string
	SizeValue  int
	SizeUnit   string
	QueueDepth int
	Threads    int
}

func (n jobName) metric(dir Direction, s DirStats) Metric {
	return Metric{
		Label:          n.Label,
		Direction:      dir,
		SizeValue:      n.SizeValue,
		SizeUnit:       n.SizeUnit,
		QueueDepth:     n.QueueDepth,
		Threads:        n.Threads,
		ThroughputMBps: FormatThroughput(s.BWBytes),
		IOPS:           s.IOPS,
		LatencyUs:      FormatLatency(s.LatNs.Mean),
	}
}

func parseJobName(name string) (jobName, error) {
	tokens := strings.Split(name, "-")
	if len(tokens) != 4 {
		return jobName{}, fmt.Errorf("expected 4 tokens, got %d", len(tokens))
	}

	// Unrecognized modes and units pass through verbatim so newer
	// profiles keep working.
	label := tokens[0]
	switch label {
	case "SEQ":
		label = "Sequential"
	case "RND":
		label = "Random"
	}

	sizeValue, sizeUnit, err := parseBlockSize(tokens[1])
	if err != nil {
		return jobName{}, err
	}

	depth, err := parsePrefixedInt(tokens[2], "Q")
	if err != nil {
		return jobName{}, err
	}

	threads, err := parsePrefixedInt(tokens[3], "T")
	if err != nil {
		return jobName{}, err
	}

	return jobName{
		Label:      label,
		SizeValue:  sizeValue,
		SizeUnit:   sizeUnit,
		QueueDepth: depth,
		Threads:    threads,
	}, nil
}

func parseBlockSize(token string) (int, string, error) {
	if len(token) < 2 {
		return 0, "", fmt.Errorf("block size token %q too short", token)
	}
	value, err := strconv.Atoi(token[:len(token)-1])
	if err != nil {
		return 0, "", fmt.Errorf("block size token %q: %w", token, err)
	}
	unit := token[len(token)-1:]
	switch unit {
	case "K":
		unit = "KiB"
	case "M":
		unit = "MiB"
	}
	return value, unit, nil
}

func parsePrefixedInt(token, prefix string) (int, error) {
	rest, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return 0, fmt.Errorf("token %q missing %q prefix", token, prefix)
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("token %q: %w", token, err)
	}
	return n, nil
}

// FormatThroughput converts bytes/second into a two-decimal MB/s string.
func FormatThroughput(bwBytes int64) string {
	return fmt.Sprintf("%.2f", float64(bwBytes)/(1024*1024))
}

// FormatLatency converts nanoseconds into a two-decimal microsecond string.
func FormatLatency(ns float64) string {
	return fmt.Sprintf("%.2f", ns/1000)
}
