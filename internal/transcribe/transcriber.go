// Package transcribe provides speech-to-text engines that turn an audio
// file into timed transcript segments.
//
// Supported backends:
//   - dummy: fixed single segment, for wiring tests and dry runs
//   - whisper: whisper.cpp via Go bindings (build with -tags whisper)
//   - whisper-http: a faster-whisper HTTP sidecar
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chaz8081/croquis/internal/config"
	"github.com/chaz8081/croquis/internal/transcript"
)

// ErrBackendUnavailable is returned when a backend was not compiled in or
// its service cannot be reached.
var ErrBackendUnavailable = errors.New("transcribe: backend unavailable")

// Engine converts an audio file to timed segments.
type Engine interface {
	// Name returns the backend identifier recorded in transcription results.
	Name() string
	// Transcribe returns the segments in order and the spoken language.
	Transcribe(ctx context.Context, path string) ([]transcript.Segment, string, error)
	// Close releases backend resources.
	Close() error
}

// Backends lists the supported backend names.
var Backends = []string{"dummy", "whisper", "whisper-http"}

// New creates an Engine based on the config backend setting.
func New(cfg *config.TranscribeConfig) (Engine, error) {
	switch strings.ToLower(cfg.Backend) {
	case "dummy":
		return NewDummyEngine(), nil
	case "whisper", "":
		e, err := NewWhisperEngine(cfg.ModelPath, cfg.Language, cfg.Threads)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "whisper-http":
		return NewHTTPEngine(HTTPConfig{
			URL:      cfg.URL,
			Model:    cfg.Model,
			Language: cfg.Language,
			Timeout:  cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: %s)", cfg.Backend, strings.Join(Backends, ", "))
	}
}
