package fio

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"strings"
)

// Document is the full JSON output of a single fio invocation.
type Document struct {
	Version       string            `json:"fio version"`
	GlobalOptions map[string]string `json:"global options"`
	Jobs          []Job             `json:"jobs"`
}

// Job is one workload entry in the document's job list.
type Job struct {
	Name  string   `json:"jobname"`
	Read  DirStats `json:"read"`
	Write DirStats `json:"write"`
}

// DirStats carries the per-direction counters fio reports.
type DirStats struct {
	BWBytes int64   `json:"bw_bytes"`
	IOPS    float64 `json:"iops"`
	LatNs   Latency `json:"lat_ns"`
}

type Latency struct {
	Mean float64 `json:"mean"`
}

// GlobalOption looks up a key in the document's global options map.
func (d *Document) GlobalOption(key string) (string, bool) {
	if d == nil || d.GlobalOptions == nil {
		return "", false
	}
	v, ok := d.GlobalOptions[key]
	return v, ok
}

// Decode parses raw fio stdout into a Document. fio may print warnings
// before the JSON object, so everything up to the first line starting
// with '{' is skipped.
func Decode(raw []byte) (*Document, error) {
	trimmed := raw
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		lines := bytes.Split(raw, []byte("\n"))
		for i, line := range lines {
			if bytes.HasPrefix(line, []byte("{")) {
				trimmed = bytes.Join(lines[i:], []byte("\n"))
				break
			}
		}
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &MalformedOutputError{Raw: string(raw), Err: err}
	}
	return &doc, nil
}

// Available reports whether the fio binary can be executed.
func Available(binary string) bool {
	if binary == "" {
		binary = DefaultBinary
	}
	return exec.Command(binary, "--version").Run() == nil
}

// Version returns the fio version string with the "fio-" prefix stripped,
// e.g. "3.36". Returns "" when the binary cannot be queried.
func Version(binary string) string {
	if binary == "" {
		binary = DefaultBinary
	}
	out, err := exec.Command(binary, "--version").Output()
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "fio-")
}
