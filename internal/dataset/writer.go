// Package dataset materializes consolidated crops into a speech dataset
// directory:
//
//	{output_root}/{name}/
//	    source.wav          ingested source recordings
//	    source_00000.wav    one clip per crop
//	    metadata.txt        "{crop_id}|{text}" per line
//
// A Writer is not safe for concurrent use, and two processes must not
// write the same dataset at once.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chaz8081/croquis/internal/audio"
	"github.com/chaz8081/croquis/internal/consolidate"
	"github.com/chaz8081/croquis/internal/logger"
	"github.com/chaz8081/croquis/internal/transcript"
)

// DefaultPadMs is the padding added to each side of a crop.
const DefaultPadMs = 200

// Options configures a Writer.
type Options struct {
	Name     string
	Mode     Mode
	Strategy consolidate.Strategy
	PadMs    int
	Loader   audio.Loader
	Log      zerolog.Logger
}

// Writer exports transcription results into a named dataset.
type Writer struct {
	name     string
	mode     Mode
	strategy consolidate.Strategy
	padMs    int
	loader   audio.Loader
	log      zerolog.Logger

	// prepared holds dataset dirs already cleared by this writer, so a
	// batch in WRITE mode starts fresh once and then accumulates.
	prepared map[string]bool
}

// NewWriter validates opts and returns a Writer.
func NewWriter(opts Options) (*Writer, error) {
	if opts.Name == "" || opts.Name == "." || opts.Name == ".." || strings.ContainsAny(opts.Name, `/\`) {
		return nil, fmt.Errorf("dataset: name must be a plain directory name, got %q", opts.Name)
	}
	if opts.Mode != Write && opts.Mode != Append {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, opts.Mode)
	}
	if opts.Strategy == nil {
		return nil, fmt.Errorf("dataset: %w: nil strategy", consolidate.ErrInvalidStrategy)
	}
	if opts.Loader == nil {
		return nil, errors.New("dataset: nil audio loader")
	}
	if opts.PadMs < 0 {
		return nil, fmt.Errorf("dataset: pad must be >= 0, got %d ms", opts.PadMs)
	}
	return &Writer{
		name:     opts.Name,
		mode:     opts.Mode,
		strategy: opts.Strategy,
		padMs:    opts.PadMs,
		loader:   opts.Loader,
		log:      logger.Component(opts.Log, "dataset").With().Str(logger.FieldDataset, opts.Name).Logger(),
		prepared: make(map[string]bool),
	}, nil
}

// Dir resolves the writer's dataset directory under outputRoot.
func (w *Writer) Dir(outputRoot string) string {
	return Dir(outputRoot, w.name)
}

// Dir returns the directory of the named dataset under outputRoot. An
// empty root means the working directory.
func Dir(outputRoot, name string) string {
	if outputRoot == "" {
		outputRoot = "."
	}
	return filepath.Join(outputRoot, name)
}

// EnsureDir creates the dataset directory. In WRITE mode, the first call
// for a directory removes the regular files directly inside it;
// subdirectories are left alone. keep, when non-empty, names a file that
// is never removed.
func (w *Writer) EnsureDir(outputRoot, keep string) (string, error) {
	dir := w.Dir(outputRoot)

	if w.mode == Write && !w.prepared[dir] {
		if err := clearFiles(dir, keep); err != nil {
			return "", err
		}
		w.prepared[dir] = true
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("dataset: create %q: %w", dir, err)
	}
	return dir, nil
}

func clearFiles(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dataset: list %q: %w", dir, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name() == keep {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("dataset: remove %q: %w", path, err)
		}
	}
	return nil
}

// IngestSource moves the source recording into dir and returns its new
// path. When dir already holds a file with the same name the source is
// left where it is and the existing copy is used.
func IngestSource(src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("dataset: stat %q: %w", dst, err)
	}

	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("dataset: move %q to %q: %w", src, dir, err)
	}
	return dst, nil
}

// ClipRange pads a segment and clamps it to [0, durationMs]. A segment
// starting past the end of the audio yields the empty range
// [durationMs, durationMs).
func ClipRange(seg transcript.Segment, padMs, durationMs int) (start, end int) {
	end = min(seg.EndMs+padMs, durationMs)
	start = min(max(0, seg.StartMs-padMs), end)
	return start, end
}

// ExportCrops writes one clip per crop, in order, as {dir}/{id}{ext}.
// Clips already written stay on disk if a later one fails.
func (w *Writer) ExportCrops(ctx context.Context, clip audio.Clip, ext string, crops consolidate.Crops, dir string) error {
	duration := clip.DurationMs()
	for _, c := range crops {
		start, end := ClipRange(c.Segment, w.padMs, duration)
		dst := filepath.Join(dir, c.ID+ext)
		if err := clip.Export(ctx, dst, start, end); err != nil {
			return fmt.Errorf("dataset: export crop %q: %w", c.ID, err)
		}
		w.log.Debug().Str(logger.FieldCropID, c.ID).Int("start_ms", start).Int("end_ms", end).Msg("exported crop")
	}
	return nil
}

// Save ingests the result's source recording, consolidates its segments
// and exports the crops plus their metadata lines.
//
// Re-running Save on the same source is safe: crops whose clip and
// metadata line both exist are skipped. A crop without a metadata line is
// exported again, overwriting any clip left by an interrupted run, and
// its line is appended.
func (w *Writer) Save(ctx context.Context, r *transcript.Result, outputRoot string) error {
	src := r.AudioPath
	keep := ""
	if sameDir(filepath.Dir(src), w.Dir(outputRoot)) {
		keep = filepath.Base(src)
	}

	dir, err := w.EnsureDir(outputRoot, keep)
	if err != nil {
		return err
	}

	ingested, err := IngestSource(src, dir)
	if err != nil {
		return err
	}
	w.log.Debug().Str(logger.FieldPath, ingested).Msg("ingested source")

	clip, err := w.loader.Load(ctx, ingested)
	if err != nil {
		return fmt.Errorf("dataset: load %q: %w", ingested, err)
	}

	res := &transcript.Result{
		AudioPath: ingested,
		Engine:    r.Engine,
		Language:  r.Language,
		Segments:  slices.Clone(r.Segments),
	}
	res.ResolveOpenEnd(clip.DurationMs())
	if err := res.Validate(); err != nil {
		return fmt.Errorf("dataset: %s: %w", ingested, err)
	}

	crops, err := w.strategy.Consolidate(res)
	if err != nil {
		return fmt.Errorf("dataset: consolidate %s with %s: %w", ingested, w.strategy.Name(), err)
	}

	toExport, toIndex, err := pending(crops, dir, res.Ext())
	if err != nil {
		return err
	}
	if err := w.ExportCrops(ctx, clip, res.Ext(), toExport, dir); err != nil {
		return err
	}
	if err := AppendMetadata(toIndex, dir); err != nil {
		return err
	}

	w.log.Info().
		Str(logger.FieldPath, ingested).
		Str("strategy", w.strategy.Name()).
		Int("segments", res.Len()).
		Int("crops", len(crops)).
		Int("exported", len(toExport)).
		Int("indexed", len(toIndex)).
		Msg("saved to dataset")
	return nil
}

// pending returns the crops whose clip must be written and the crops
// whose metadata line is missing.
func pending(crops consolidate.Crops, dir, ext string) (export, index consolidate.Crops, err error) {
	entries, err := ReadMetadata(dir)
	if err != nil {
		return nil, nil, err
	}
	indexed := make(map[string]bool, len(entries))
	for _, e := range entries {
		indexed[e.ID] = true
	}

	for _, c := range crops {
		if !indexed[c.ID] {
			export = append(export, c)
			index = append(index, c)
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, c.ID+ext)); err != nil {
			export = append(export, c)
		}
	}
	return export, index, nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
