package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaz8081/croquis/internal/logger"
	"github.com/chaz8081/croquis/internal/output"
	"github.com/chaz8081/croquis/internal/transcript"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [flags] <record.json>...",
		Short: "Export saved transcription records into a dataset",
		Long: "Export reads records written by the json saver and cuts their audio\n" +
			"into the dataset. The source audio is moved into the dataset directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd.Context(), args)
		},
	}
	cmd.Flags().StringP("output", "o", "", "output root directory")
	bind(cmd.Flags(), "output", "output_dir")
	addDatasetFlags(cmd)
	return cmd
}

func (a *app) runExport(ctx context.Context, records []string) error {
	log := logger.Component(a.log, "export")
	w, err := output.NewDatasetSaver(a.cfg.Dataset, a.cfg.Audio, a.log)
	if err != nil {
		return err
	}

	for _, path := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := transcript.ReadFile(path)
		if err != nil {
			return err
		}
		if err := w.Save(ctx, res, a.cfg.OutputDir); err != nil {
			return fmt.Errorf("export %q: %w", path, err)
		}
		log.Info().Str(logger.FieldPath, path).Str(logger.FieldDataset, w.Dir(a.cfg.OutputDir)).Msg("exported")
	}
	return nil
}
