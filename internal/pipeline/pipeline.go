// Package pipeline runs audio files through validation, transcription and
// saving, one file at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chaz8081/croquis/internal/audio"
	"github.com/chaz8081/croquis/internal/logger"
	"github.com/chaz8081/croquis/internal/output"
	"github.com/chaz8081/croquis/internal/transcribe"
	"github.com/chaz8081/croquis/internal/transcript"
)

// Pipeline wires a validator, an engine and an optional saver. Runs that
// save into the same dataset must not overlap.
type Pipeline struct {
	Validator audio.Validator
	Engine    transcribe.Engine
	// Saver may be nil, in which case results are only returned.
	Saver output.Saver
	Log   zerolog.Logger
	// ContinueOnError keeps a Run going after a transcription or save
	// failure. Invalid files are always skipped.
	ContinueOnError bool
}

// Process validates, transcribes and saves one file.
// A file the validator rejects yields an error matching audio.ErrInvalidAudio.
func (p *Pipeline) Process(ctx context.Context, path, outputDir string) (*transcript.Result, error) {
	return p.process(ctx, p.Log, path, outputDir)
}

func (p *Pipeline) process(ctx context.Context, log zerolog.Logger, path, outputDir string) (*transcript.Result, error) {
	log = log.With().Str(logger.FieldPath, path).Logger()

	if err := p.Validator.Validate(path); err != nil {
		if !errors.Is(err, audio.ErrInvalidAudio) {
			err = fmt.Errorf("%w: %v", audio.ErrInvalidAudio, err)
		}
		log.Warn().Err(err).Msg("invalid audio")
		return nil, err
	}

	start := time.Now()
	segs, lang, err := p.Engine.Transcribe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: transcribe %q: %w", path, err)
	}
	res := &transcript.Result{
		AudioPath: path,
		Engine:    p.Engine.Name(),
		Language:  lang,
		Segments:  segs,
	}
	log.Info().
		Str("engine", res.Engine).
		Str("language", lang).
		Int("segments", res.Len()).
		Int64(logger.FieldDuration, time.Since(start).Milliseconds()).
		Msg("transcribed")

	if p.Saver == nil {
		return res, nil
	}
	if err := p.Saver.Save(ctx, res, outputDir); err != nil {
		return res, fmt.Errorf("pipeline: save %q: %w", path, err)
	}
	return res, nil
}

// FileError pairs a path with the reason it was not processed.
type FileError struct {
	Path string
	Err  error
}

// Summary reports the outcome of a Run.
type Summary struct {
	RunID   string
	Results []*transcript.Result
	Skipped []FileError
	Failed  []FileError
	Elapsed time.Duration
}

// Run processes paths in order, expanding directories to the audio files
// they contain. Invalid files are skipped. Any other failure stops the
// run unless ContinueOnError is set; the returned error is the one that
// stopped it.
func (p *Pipeline) Run(ctx context.Context, paths []string, outputDir string) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	start := time.Now()
	done := func(err error) (Summary, error) {
		sum.Elapsed = time.Since(start)
		return sum, err
	}
	log := p.Log.With().Str(logger.FieldRunID, sum.RunID).Logger()

	files, err := Expand(paths)
	if err != nil {
		return done(err)
	}
	log.Info().Int("files", len(files)).Msg("run started")

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return done(err)
		}
		res, err := p.process(ctx, log, path, outputDir)
		switch {
		case err == nil:
			sum.Results = append(sum.Results, res)
		case errors.Is(err, audio.ErrInvalidAudio):
			sum.Skipped = append(sum.Skipped, FileError{path, err})
		default:
			sum.Failed = append(sum.Failed, FileError{path, err})
			log.Error().Err(err).Str(logger.FieldPath, path).Msg("processing failed")
			if !p.ContinueOnError {
				return done(err)
			}
		}
	}

	log.Info().
		Int("processed", len(sum.Results)).
		Int("skipped", len(sum.Skipped)).
		Int("failed", len(sum.Failed)).
		Msg("run finished")
	return done(nil)
}

// Expand replaces directories with the audio files directly inside them,
// sorted by name. Plain files are kept as given, audio or not, so the
// validator can report them.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("pipeline: list %q: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.Type().IsRegular() && audio.IsAudioFile(e.Name()) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}
