// Package output persists transcription results.
//
// Supported savers:
//   - json: one {stem}.json transcription record per source
//   - dataset: crops plus metadata index (see package dataset)
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chaz8081/croquis/internal/audio"
	"github.com/chaz8081/croquis/internal/config"
	"github.com/chaz8081/croquis/internal/consolidate"
	"github.com/chaz8081/croquis/internal/dataset"
	"github.com/chaz8081/croquis/internal/transcript"
)

// Saver writes a result under outputDir.
type Saver interface {
	Save(ctx context.Context, r *transcript.Result, outputDir string) error
}

// Savers lists the supported saver names.
var Savers = []string{"json", "dataset"}

// New creates the saver named name from cfg.
func New(name string, cfg *config.Config, log zerolog.Logger) (Saver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSONSaver{}, nil
	case "dataset":
		w, err := NewDatasetSaver(cfg.Dataset, cfg.Audio, log)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("output: unknown saver %q (supported: %s)", name, strings.Join(Savers, ", "))
	}
}

// NewDatasetSaver builds a dataset writer from configuration.
func NewDatasetSaver(dc config.DatasetConfig, ac config.AudioConfig, log zerolog.Logger) (*dataset.Writer, error) {
	mode, err := dataset.ParseMode(dc.Mode)
	if err != nil {
		return nil, err
	}
	strategy, err := consolidate.New(dc.Strategy, consolidate.Options{SilenceThresholdMs: dc.SilenceThresholdMs})
	if err != nil {
		return nil, err
	}
	return dataset.NewWriter(dataset.Options{
		Name:     dc.Name,
		Mode:     mode,
		Strategy: strategy,
		PadMs:    dc.PadMs,
		Loader:   audio.NewAutoLoader(ac.FFmpegPath, ac.FFprobePath),
		Log:      log,
	})
}

// JSONSaver writes the transcription record as {outputDir}/{stem}.json.
type JSONSaver struct{}

// Save implements Saver.
func (JSONSaver) Save(ctx context.Context, r *transcript.Result, outputDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("output: create %q: %w", outputDir, err)
	}
	return transcript.WriteFile(RecordPath(r, outputDir), r)
}

// RecordPath returns where JSONSaver stores r.
func RecordPath(r *transcript.Result, outputDir string) string {
	return filepath.Join(outputDir, r.Stem()+".json")
}
