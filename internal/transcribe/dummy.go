package transcribe

import (
	"context"

	"github.com/chaz8081/croquis/internal/transcript"
)

// DummyEngine returns one open-ended "Hello world!" segment for every
// file. It never touches the audio.
type DummyEngine struct{}

// NewDummyEngine returns a DummyEngine.
func NewDummyEngine() *DummyEngine { return &DummyEngine{} }

// Name implements Engine.
func (*DummyEngine) Name() string { return "dummy" }

// Transcribe implements Engine.
func (*DummyEngine) Transcribe(ctx context.Context, _ string) ([]transcript.Segment, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return []transcript.Segment{{StartMs: 0, EndMs: transcript.OpenEnd, Text: "Hello world!"}}, "en", nil
}

// Close implements Engine.
func (*DummyEngine) Close() error { return nil }
