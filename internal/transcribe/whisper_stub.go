//go:build !whisper

package transcribe

import "fmt"

// NewWhisperEngine reports that this binary was built without whisper.cpp.
// Rebuild with -tags whisper and the whisper.cpp libraries on the cgo path.
func NewWhisperEngine(modelPath, _ string, _ int) (Engine, error) {
	return nil, fmt.Errorf("%w: whisper support not compiled in (model %s); rebuild with -tags whisper or use backend whisper-http", ErrBackendUnavailable, modelPath)
}
