// Package transcript holds the timed text produced by a transcription
// engine and its durable JSON record.
package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// OpenEnd marks a segment whose end was unknown when the engine produced
// it. It stands for "end of audio" and must be resolved with
// Result.ResolveOpenEnd before any arithmetic depends on it.
const OpenEnd = -1

var (
	// ErrEmptyInput is returned when merging zero segments.
	ErrEmptyInput = errors.New("transcript: cannot merge zero segments")
	// ErrUnordered is returned by Validate when segments overlap or are
	// not sorted by start time.
	ErrUnordered = errors.New("transcript: segments out of order")
)

// Segment is one timed span of recognized text. Times are milliseconds
// from the start of the source audio.
type Segment struct {
	StartMs int    `json:"start_ms"`
	EndMs   int    `json:"end_ms"`
	Text    string `json:"text"`
}

// IsOpen reports whether the segment runs to the (unknown) end of audio.
func (s Segment) IsOpen() bool { return s.EndMs == OpenEnd }

// DurationMs returns EndMs - StartMs, or 0 for an open segment.
func (s Segment) DurationMs() int {
	if s.IsOpen() {
		return 0
	}
	return s.EndMs - s.StartMs
}

func (s Segment) String() string {
	return fmt.Sprintf("[%d-%d] %s", s.StartMs, s.EndMs, strings.TrimSpace(s.Text))
}

// Merge joins segments that belong to the same utterance. The segments
// must come from the same audio and be in order. The merged text is every
// segment's text prefixed with a single space, so the result always
// starts with a space; callers that persist it trim it.
func Merge(segs []Segment) (Segment, error) {
	if len(segs) == 0 {
		return Segment{}, ErrEmptyInput
	}

	var b strings.Builder
	for _, s := range segs {
		b.WriteByte(' ')
		b.WriteString(s.Text)
	}

	return Segment{
		StartMs: segs[0].StartMs,
		EndMs:   segs[len(segs)-1].EndMs,
		Text:    b.String(),
	}, nil
}
