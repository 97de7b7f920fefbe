package fio

import (
	"fmt"
	"testing"
)

func TestParseJobNameRoundTrip(t *testing.T) {
	cases := []struct {
		mode, unit string
		size, q, n int
		wantLabel  string
		wantUnit   string
	}{
		{"SEQ", "M", 1, 8, 1, "Sequential", "MiB"},
		{"SEQ", "M", 1, 1, 1, "Sequential", "MiB"},
		{"RND", "K", 4, 32, 1, "Random", "KiB"},
		{"RND", "K", 4, 1, 16, "Random", "KiB"},
		{"RND", "K", 128, 8, 8, "Random", "KiB"},
		// Unknown modes and units pass through verbatim.
		{"MIX", "G", 2, 4, 2, "MIX", "G"},
	}

	for _, tc := range cases {
		name := fmt.Sprintf("%s-%d%s-Q%d-T%d", tc.mode, tc.size, tc.unit, tc.q, tc.n)
		t.Run(name, func(t *testing.T) {
			parsed, err := parseJobName(name)
			if err != nil {
				t.Fatalf("parseJobName(%q): %v", name, err)
			}
			if parsed.Label != tc.wantLabel {
				t.Errorf("label = %q, want %q", parsed.Label, tc.wantLabel)
			}
			if parsed.SizeValue != tc.size || parsed.SizeUnit != tc.wantUnit {
				t.Errorf("size = %d %q, want %d %q", parsed.SizeValue, parsed.SizeUnit, tc.size, tc.wantUnit)
			}
			if parsed.QueueDepth != tc.q {
				t.Errorf("queue depth = %d, want %d", parsed.QueueDepth, tc.q)
			}
			if parsed.Threads != tc.n {
				t.Errorf("threads = %d, want %d", parsed.Threads, tc.n)
			}
		})
	}
}

func TestParseJobNameMalformed(t *testing.T) {
	bad := []string{
		"",
		"SEQ-1M-Q8",
		"SEQ-1M-Q8-T1-extra",
		"SEQ-XM-Q8-T1",
		"SEQ-1M-QX-T1",
		"SEQ-1M-Q8-TX",
		"SEQ-1M-8-T1",
		"SEQ-M-Q8-T1",
	}
	for _, name := range bad {
		if _, err := parseJobName(name); err == nil {
			t.Errorf("parseJobName(%q) succeeded, want error", name)
		}
	}
}

func TestFormatThroughput(t *testing.T) {
	if got := FormatThroughput(1048576); got != "1.00" {
		t.Errorf("FormatThroughput(1048576) = %q, want \"1.00\"", got)
	}
	if got := FormatThroughput(0); got != "0.00" {
		t.Errorf("FormatThroughput(0) = %q, want \"0.00\"", got)
	}
	if got := FormatThroughput(104857600); got != "100.00" {
		t.Errorf("FormatThroughput(104857600) = %q, want \"100.00\"", got)
	}
}

func TestFormatLatency(t *testing.T) {
	if got := FormatLatency(1500); got != "1.50" {
		t.Errorf("FormatLatency(1500) = %q, want \"1.50\"", got)
	}
	if got := FormatLatency(2000); got != "2.00" {
		t.Errorf("FormatLatency(2000) = %q, want \"2.00\"", got)
	}
}

func TestParseSingleReadJob(t *testing.T) {
	doc := &Document{
		Jobs: []Job{{
			Name: "SEQ-1M-Q8-T1",
			Read: DirStats{BWBytes: 104857600, IOPS: 100.0, LatNs: Latency{Mean: 2000}},
		}},
	}

	metrics, diags := Parse(doc)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(metrics))
	}

	m := metrics[0]
	if m.Label != "Sequential" || m.Direction != DirectionRead {
		t.Errorf("got %s/%s, want Sequential/Read", m.Label, m.Direction)
	}
	if m.SizeValue != 1 || m.SizeUnit != "MiB" || m.QueueDepth != 8 || m.Threads != 1 {
		t.Errorf("unexpected decomposition: %+v", m)
	}
	if m.ThroughputMBps != "100.00" {
		t.Errorf("throughput = %q, want \"100.00\"", m.ThroughputMBps)
	}
	if m.IOPS != 100.0 {
		t.Errorf("iops = %v, want 100.0", m.IOPS)
	}
	if m.LatencyUs != "2.00" {
		t.Errorf("latency = %q, want \"2.00\"", m.LatencyUs)
	}
}

func TestParseBothDirections(t *testing.T) {
	doc := &Document{
		Jobs: []Job{{
			Name:  "RND-4K-Q32-T1",
			Read:  DirStats{BWBytes: 2048, IOPS: 0.5},
			Write: DirStats{BWBytes: 4096, IOPS: 1.0},
		}},
	}

	metrics, _ := Parse(doc)
	if len(metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(metrics))
	}
	if metrics[0].Direction != DirectionRead || metrics[1].Direction != DirectionWrite {
		t.Errorf("directions = %s, %s", metrics[0].Direction, metrics[1].Direction)
	}
}

func TestParseSkipsZeroDirections(t *testing.T) {
	doc := &Document{
		Jobs: []Job{{
			Name: "SEQ-1M-Q1-T1",
			Read: DirStats{BWBytes: 1024, IOPS: 1},
			// Write left zero: fio reports zeroes for the idle direction.
		}},
	}

	metrics, _ := Parse(doc)
	if len(metrics) != 1 || metrics[0].Direction != DirectionRead {
		t.Fatalf("got %+v, want a single read metric", metrics)
	}
}

func TestParseMalformedJobContinues(t *testing.T) {
	doc := &Document{
		Jobs: []Job{
			{Name: "SEQ-1M-T1", Read: DirStats{BWBytes: 1024, IOPS: 1}},
			{Name: "RND-4K-Q1-T1", Read: DirStats{BWBytes: 1024, IOPS: 1}},
		},
	}

	metrics, diags := Parse(doc)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if diags[0].Job != "SEQ-1M-T1" {
		t.Errorf("diagnostic job = %q", diags[0].Job)
	}
	if len(metrics) != 1 || metrics[0].Label != "Random" {
		t.Fatalf("parsing did not continue past the bad job: %+v", metrics)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	for _, doc := range []*Document{nil, {}} {
		metrics, diags := Parse(doc)
		if metrics == nil {
			t.Error("metrics slice is nil, want empty non-nil")
		}
		if len(metrics) != 0 {
			t.Errorf("got %d metrics, want 0", len(metrics))
		}
		if len(diags) == 0 {
			t.Error("expected a diagnostic for the empty document")
		}
	}
}
