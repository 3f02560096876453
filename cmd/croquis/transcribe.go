package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/croquis/internal/audio"
	"github.com/chaz8081/croquis/internal/logger"
	"github.com/chaz8081/croquis/internal/output"
	"github.com/chaz8081/croquis/internal/pipeline"
	"github.com/chaz8081/croquis/internal/transcribe"
)

func newTranscribeCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "transcribe [flags] <file|dir>...",
		Short: "Transcribe recordings and save them as records or dataset clips",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranscribe(cmd.Context(), args, watch)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", "", "output root directory")
	f.String("engine", "", "transcription backend: dummy, whisper, whisper-http")
	f.String("model", "", "whisper model path")
	f.String("language", "", "spoken language, or auto")
	f.String("validator", "", "audio validator: exists, wav")
	f.String("saver", "", "output saver: json, dataset")
	addDatasetFlags(cmd)
	f.Bool("continue-on-error", false, "keep going after a file fails")
	f.BoolVarP(&watch, "watch", "w", false, "after the initial run, keep processing files added to the given directory")

	bind(f, "output", "output_dir")
	bind(f, "engine", "transcribe.backend")
	bind(f, "model", "transcribe.model_path")
	bind(f, "language", "transcribe.language")
	bind(f, "validator", "validator")
	bind(f, "saver", "saver")
	bind(f, "continue-on-error", "continue_on_error")
	return cmd
}

// addDatasetFlags registers the flags shared by commands that write a dataset.
func addDatasetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("dataset", "", "dataset directory name under the output root")
	f.String("mode", "", "dataset mode: WRITE or APPEND")
	f.String("strategy", "", "consolidation strategy: NOTHING, THRESHOLD, NORMAL")
	f.Int("threshold", 0, "silence threshold in ms for THRESHOLD")
	f.Int("pad", 0, "padding in ms added around each clip")
	bind(f, "dataset", "dataset.name")
	bind(f, "mode", "dataset.mode")
	bind(f, "strategy", "dataset.strategy")
	bind(f, "threshold", "dataset.silence_threshold_ms")
	bind(f, "pad", "dataset.pad_ms")
}

func (a *app) runTranscribe(ctx context.Context, paths []string, watch bool) error {
	if watch {
		if len(paths) != 1 {
			return fmt.Errorf("--watch takes exactly one directory")
		}
		if info, err := os.Stat(paths[0]); err != nil || !info.IsDir() {
			return fmt.Errorf("--watch: %q is not a directory", paths[0])
		}
	}
	cfg := a.cfg
	log := logger.Component(a.log, "transcribe")

	validator, err := audio.NewValidator(cfg.Validator)
	if err != nil {
		return err
	}
	saver, err := output.New(cfg.Saver, cfg, a.log)
	if err != nil {
		return err
	}

	start := time.Now()
	engine, err := transcribe.New(&cfg.Transcribe)
	if err != nil {
		return err
	}
	defer engine.Close()
	log.Info().
		Str("engine", engine.Name()).
		Dur("load_time", time.Since(start).Round(time.Millisecond)).
		Msg("engine ready")

	p := &pipeline.Pipeline{
		Validator:       validator,
		Engine:          engine,
		Saver:           saver,
		Log:             log,
		ContinueOnError: cfg.ContinueOnError,
	}
	sum, err := p.Run(ctx, paths, cfg.OutputDir)
	if err != nil {
		return err
	}
	if len(sum.Failed) > 0 {
		return fmt.Errorf("%d of %d files failed (run %s)", len(sum.Failed), len(sum.Results)+len(sum.Skipped)+len(sum.Failed), sum.RunID)
	}
	if !watch {
		return nil
	}
	w := &pipeline.Watcher{Pipeline: p}
	return w.Watch(ctx, paths[0], cfg.OutputDir)
}
