// Package cli drives one benchmark run end to end: target resolution,
// subprocess supervision, parsing, report rendering, and artifact
// persistence.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"diskmark/internal/blockdev"
	"diskmark/internal/fio"
	"diskmark/internal/native"
	"diskmark/internal/platform"
	"diskmark/internal/report"
	"diskmark/internal/storage"
	"diskmark/internal/tui"
	"diskmark/internal/volumes"
)

// ErrInvalidPath means the supplied target path does not exist. The run
// never starts in that case.
var ErrInvalidPath = errors.New("target path does not exist")

// Options configures one run.
type Options struct {
	Path    string // empty triggers interactive selection
	Profile string // empty uses the embedded CDM8 profile
	Backend string // "fio" or "native"
	OutDir  string
	Binary  string // fio binary override, mainly for tests
	Version string // app version printed in the report
}

// Start executes one benchmark run. Interrupt handling is scoped to the
// run: the previous signal disposition is restored before Start returns,
// whatever the outcome.
func Start(ctx context.Context, provider platform.Provider, opts Options) error {
	target, vol, err := resolveTarget(provider, opts.Path)
	if err != nil {
		return err
	}
	log.Info().Str("target", target).Msg("starting disk benchmark")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var (
		doc     *fio.Document
		metrics []fio.Metric
	)
	switch opts.Backend {
	case "native":
		engine := native.NewEngine(native.Config{TargetPath: target})
		metrics, err = engine.Run(ctx)
		if err != nil {
			return err
		}
	default:
		doc, metrics, err = runFio(ctx, provider, opts, target)
		if err != nil {
			return err
		}
	}

	iface := blockInfoFor(provider, vol)
	env := report.Collect(opts.Version, target, vol)
	text := report.Format(metrics, doc, iface, env)

	fmt.Println(text)

	return persist(opts, env, doc, metrics, text)
}

func resolveTarget(provider platform.Provider, path string) (string, *volumes.Volume, error) {
	if path == "" {
		vols, err := provider.ListVolumes()
		if err != nil {
			return "", nil, err
		}
		vol, err := tui.SelectVolume(vols)
		if err != nil {
			return "", nil, err
		}
		return volumes.NormalizePath(vol.Mountpoint), vol, nil
	}

	if _, err := os.Stat(path); err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	target := volumes.NormalizePath(path)

	vol, err := volumes.FindForPath(target)
	if err != nil {
		log.Warn().Err(err).Msg("could not resolve backing volume")
	}
	return target, vol, nil
}

func runFio(ctx context.Context, provider platform.Provider, opts Options, target string) (*fio.Document, []fio.Metric, error) {
	binary := opts.Binary
	if binary == "" {
		binary = fio.DefaultBinary
	}
	if !fio.Available(binary) {
		return nil, nil, fio.ErrToolUnavailable
	}
	log.Debug().Str("version", fio.Version(binary)).Msg("found fio")

	profile := opts.Profile
	if profile == "" {
		var err error
		profile, err = fio.WriteDefaultProfile(os.TempDir())
		if err != nil {
			return nil, nil, fmt.Errorf("materializing default profile: %w", err)
		}
	}

	runner := fio.NewRunner(fio.Request{
		TargetPath:       target,
		Profile:          profile,
		Engine:           provider.IOEngineName(),
		ExpectedDuration: fio.EstimateDuration(profile),
	})
	runner.Binary = binary

	doc, err := runner.Run(ctx)
	if err != nil {
		return nil, nil, err
	}

	metrics, diags := fio.Parse(doc)
	for _, d := range diags {
		log.Warn().Str("job", d.Job).Str("reason", d.Reason).Msg("skipped job result")
	}
	return doc, metrics, nil
}

func blockInfoFor(provider platform.Provider, vol *volumes.Volume) blockdev.Info {
	if vol == nil {
		return blockdev.Info{Transport: blockdev.TransportUnknown}
	}
	resolved, err := provider.ResolveInterface(vol.Device)
	if err != nil {
		log.Debug().Err(err).Str("device", vol.Device).Msg("interface unresolved")
		return blockdev.Info{Transport: blockdev.TransportUnknown}
	}
	return resolved
}

// persist writes the raw document, the report, and the history record.
// A write failure stops the remaining persistence steps for this run but
// the already-printed report stays valid.
func persist(opts Options, env report.Environment, doc *fio.Document, metrics []fio.Metric, text string) error {
	writer := storage.NewWriter(opts.OutDir)

	if doc != nil {
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding raw results: %w", err)
		}
		path, err := writer.WriteRaw(env.Date, raw)
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("saved raw results")
	}

	path, err := writer.WriteReport(env.Date, text)
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("saved report")

	store, err := storage.OpenStore(writer.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	return store.Save(storage.RunRecord{
		ID:        uuid.New().String(),
		Timestamp: env.Date,
		Target:    env.Target,
		Engine:    engineName(doc, opts.Backend),
		ReadMBps:  bestThroughput(metrics, fio.DirectionRead),
		WriteMBps: bestThroughput(metrics, fio.DirectionWrite),
	})
}

func engineName(doc *fio.Document, backend string) string {
	if engine, ok := doc.GlobalOption("ioengine"); ok {
		return engine
	}
	return backend
}

// bestThroughput picks the highest throughput among metrics of one
// direction, keeping the two-decimal string form.
func bestThroughput(metrics []fio.Metric, dir fio.Direction) string {
	best := ""
	bestVal := -1.0
	for _, m := range metrics {
		if m.Direction != dir {
			continue
		}
		v, err := strconv.ParseFloat(m.ThroughputMBps, 64)
		if err != nil {
			continue
		}
		if v > bestVal {
			bestVal = v
			best = m.ThroughputMBps
		}
	}
	return best
}

// History prints past runs from the history database.
func History(outDir string) error {
	writer := storage.NewWriter(outDir)
	store, err := storage.OpenStore(writer.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	recs := store.List()
	if len(recs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	fmt.Printf("%-20s %-24s %-12s %10s %10s\n", "Date", "Target", "Engine", "Read MB/s", "Write MB/s")
	for _, rec := range recs {
		fmt.Printf("%-20s %-24s %-12s %10s %10s\n",
			rec.Timestamp.Format(time.DateTime),
			rec.Target, rec.Engine, rec.ReadMBps, rec.WriteMBps)
	}
	return nil
}
