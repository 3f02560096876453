package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/croquis/internal/audio"
	"github.com/chaz8081/croquis/internal/logger"
)

func newCropCmd(a *app) *cobra.Command {
	var (
		start, end time.Duration
		outDir     string
		name       string
	)
	cmd := &cobra.Command{
		Use:   "crop [flags] <audio>",
		Short: "Cut a single time range out of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endMs := audio.OpenEnd
			if cmd.Flags().Changed("end") {
				endMs = int(end.Milliseconds())
			}
			loader := audio.NewAutoLoader(a.cfg.Audio.FFmpegPath, a.cfg.Audio.FFprobePath)
			path, err := audio.CropFile(cmd.Context(), loader, audio.CropRequest{
				Source:     args[0],
				StartMs:    int(start.Milliseconds()),
				EndMs:      endMs,
				OutputDir:  outDir,
				OutputName: name,
			})
			if err != nil {
				return err
			}
			log := logger.Component(a.log, "crop")
			log.Info().Str(logger.FieldPath, path).Msg("cropped")
			return nil
		},
	}
	f := cmd.Flags()
	f.DurationVar(&start, "start", 0, "range start, e.g. 1.5s")
	f.DurationVar(&end, "end", 0, "range end (default: end of recording)")
	f.StringVarP(&outDir, "output", "o", "", "output directory (default: next to the source)")
	f.StringVar(&name, "name", "", "output name without extension (default: <stem>_<start>_<end>)")
	return cmd
}
