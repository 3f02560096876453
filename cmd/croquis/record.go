package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/croquis/internal/audio"
	"github.com/chaz8081/croquis/internal/logger"
)

func newRecordCmd(a *app) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "record [flags] <out.wav>",
		Short: "Record the default microphone to a WAV file",
		Long:  "Record captures until --duration elapses or the process is interrupted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRecord(cmd.Context(), args[0], duration)
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "stop after this long (default: until interrupted)")
	return cmd
}

func (a *app) runRecord(ctx context.Context, path string, duration time.Duration) error {
	log := logger.Component(a.log, "record")
	rec, err := audio.NewRecorder(a.cfg.Audio.SampleRate, a.cfg.Audio.Channels)
	if err != nil {
		return fmt.Errorf("%w (check microphone permissions)", err)
	}
	defer rec.Close()

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	log.Info().Str(logger.FieldPath, path).Msg("recording, press Ctrl+C to stop")
	samples, err := rec.Capture(ctx)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("record: no audio captured")
	}
	if err := rec.Save(path, samples); err != nil {
		return err
	}

	frames := len(samples) / int(a.cfg.Audio.Channels)
	log.Info().
		Str(logger.FieldPath, path).
		Int64(logger.FieldDuration, int64(frames)*1000/int64(a.cfg.Audio.SampleRate)).
		Msg("saved")
	return nil
}
