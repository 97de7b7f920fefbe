// Package report renders normalized benchmark metrics into the classic
// fixed-width disk-mark layout.
package report

import (
	"fmt"
	"strings"

	"diskmark/internal/blockdev"
	"diskmark/internal/fio"
)

const (
	unknown   = "unknown"
	separator = "--------------------------------------------------------------------------------"
	gib       = 1024 * 1024 * 1024
)

// Format renders the report text. It is a pure function: identical
// inputs produce byte-identical output, and missing footer data renders
// as "unknown" instead of failing.
func Format(metrics []fio.Metric, doc *fio.Document, iface blockdev.Info, env Environment) string {
	var b strings.Builder

	fioVersion := unknown
	if doc != nil && doc.Version != "" {
		fioVersion = doc.Version
	}
	fmt.Fprintf(&b, "%80s\n", fmt.Sprintf("DiskMark %s", env.AppVersion))
	fmt.Fprintf(&b, "%80s\n", fmt.Sprintf("Flexible I/O Tester (%s): https://github.com/axboe/fio", fioVersion))
	b.WriteString(separator + "\n")
	b.WriteString("* MB/s = 1,000,000 bytes/s [SATA/600 = 600,000,000 bytes/s]\n")
	b.WriteString("* KB = 1000 bytes, KiB = 1024 bytes\n\n")

	b.WriteString("[Read]\n")
	writeSection(&b, metrics, fio.DirectionRead)

	b.WriteString("\n[Write]\n")
	writeSection(&b, metrics, fio.DirectionWrite)

	b.WriteString("\n")
	writeFooter(&b, doc, iface, env)

	return b.String()
}

func writeSection(b *strings.Builder, metrics []fio.Metric, dir fio.Direction) {
	for _, m := range metrics {
		if m.Direction != dir {
			continue
		}
		fmt.Fprintf(b, "%10s %3d %s (Q= %2d, T= %d): %8s MB/s [ %8.1f IOPS] < %8s us>\n",
			m.Label, m.SizeValue, m.SizeUnit,
			m.QueueDepth, m.Threads,
			m.ThroughputMBps, m.IOPS, m.LatencyUs)
	}
}

func writeFooter(b *strings.Builder, doc *fio.Document, iface blockdev.Info, env Environment) {
	fmt.Fprintf(b, "%12s%s\n", "Test: ", testLine(doc))
	fmt.Fprintf(b, "%12s%s\n", "Date: ", env.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "%12s%s\n", "OS: ", orUnknown(env.OS))
	fmt.Fprintf(b, "%12s%s\n", "Target: ", targetLine(env))
	fmt.Fprintf(b, "%12s%s\n", "Engine: ", engineLine(doc))
	fmt.Fprintf(b, "%12s%s\n", "Device: ", deviceLine(env))
	fmt.Fprintf(b, "%12s%s\n", "Interface: ", interfaceLine(iface))
}

func testLine(doc *fio.Document) string {
	size, ok := doc.GlobalOption("filesize")
	if !ok {
		return unknown
	}
	line := strings.ReplaceAll(size, "g", " GiB")
	if loops, ok := doc.GlobalOption("loops"); ok {
		line += " (x" + loops + ")"
	}
	if runtime, ok := doc.GlobalOption("runtime"); ok {
		line += " [Measure: " + runtime + " sec]"
	}
	return line
}

func targetLine(env Environment) string {
	if env.Target == "" {
		return unknown
	}
	if env.TotalBytes == 0 {
		return env.Target
	}
	pct := float64(env.UsedBytes) / float64(env.TotalBytes) * 100
	return fmt.Sprintf("%s %.0f%% (%.2f/%.2f GiB)",
		env.Target, pct,
		float64(env.UsedBytes)/gib, float64(env.TotalBytes)/gib)
}

func engineLine(doc *fio.Document) string {
	if engine, ok := doc.GlobalOption("ioengine"); ok {
		return engine
	}
	return unknown
}

func deviceLine(env Environment) string {
	if env.Device == "" {
		return unknown
	}
	if env.Fstype == "" {
		return env.Device
	}
	return env.Device + " " + env.Fstype
}

func interfaceLine(iface blockdev.Info) string {
	if iface.Transport == "" || iface.Transport == blockdev.TransportUnknown {
		return unknown
	}
	parts := []string{string(iface.Transport)}
	if iface.Generation != "" {
		parts = append(parts, iface.Generation)
	}
	if iface.Speed != "" {
		parts = append(parts, iface.Speed)
	}
	return strings.Join(parts, " ")
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
