//go:build whisper

package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/chaz8081/croquis/internal/transcript"
)

// WhisperEngine wraps a whisper.cpp model. The model is loaded once and
// a fresh context is created per file.
type WhisperEngine struct {
	model    whisper.Model
	language string
	threads  int
}

// NewWhisperEngine loads a ggml whisper model from modelPath.
// The caller must call Close() when done.
func NewWhisperEngine(modelPath, language string, threads int) (*WhisperEngine, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: %w", modelPath, err)
	}
	return &WhisperEngine{model: model, language: language, threads: threads}, nil
}

// Name implements Engine.
func (*WhisperEngine) Name() string { return "whisper" }

// Close releases the whisper model resources.
func (e *WhisperEngine) Close() error {
	if e.model != nil {
		return e.model.Close()
	}
	return nil
}

// Transcribe implements Engine.
func (e *WhisperEngine) Transcribe(ctx context.Context, path string) ([]transcript.Segment, string, error) {
	samples, err := loadSamples(path, whisper.SampleRate)
	if err != nil {
		return nil, "", err
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, "", fmt.Errorf("transcribe: create context: %w", err)
	}
	lang := e.language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return nil, "", fmt.Errorf("transcribe: set language %q: %w", lang, err)
	}
	if e.threads > 0 {
		wctx.SetThreads(uint(e.threads))
	}

	// whisper.cpp only checks for cancellation when the encoder starts.
	var encoderBegin whisper.EncoderBeginCallback = func() bool { return ctx.Err() == nil }
	if err := wctx.Process(samples, encoderBegin, nil, nil); err != nil {
		return nil, "", fmt.Errorf("transcribe: process %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var segs []transcript.Segment
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("transcribe: next segment: %w", err)
		}
		segs = append(segs, transcript.Segment{
			StartMs: durationMs(seg.Start),
			EndMs:   durationMs(seg.End),
			Text:    seg.Text,
		})
	}

	detected := wctx.DetectedLanguage()
	if detected == "" {
		detected = lang
	}
	return segs, detected, nil
}

func durationMs(d time.Duration) int { return int(d / time.Millisecond) }
