package transcript

import (
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strings"
)

// Result is the ordered transcription of one audio source.
type Result struct {
	AudioPath string
	Engine    string
	Language  string
	Segments  []Segment
}

// Len returns the number of segments.
func (r *Result) Len() int { return len(r.Segments) }

// All iterates the segments in order together with their index.
func (r *Result) All() iter.Seq2[int, Segment] {
	return func(yield func(int, Segment) bool) {
		for i, s := range r.Segments {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Stem returns the audio file name without directory or extension. It
// prefixes every crop id cut from this result.
func (r *Result) Stem() string {
	base := filepath.Base(r.AudioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Text joins the trimmed segment texts with single spaces, skipping
// empty ones.
func (r *Result) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Ext returns the audio file extension including the dot.
func (r *Result) Ext() string { return filepath.Ext(r.AudioPath) }

// Equal reports whether both results carry the same fields and segments.
// A nil and an empty segment list compare equal.
func (r *Result) Equal(o *Result) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.AudioPath == o.AudioPath &&
		r.Engine == o.Engine &&
		r.Language == o.Language &&
		slices.Equal(r.Segments, o.Segments)
}

// ResolveOpenEnd replaces every OpenEnd sentinel with durationMs.
func (r *Result) ResolveOpenEnd(durationMs int) {
	for i := range r.Segments {
		if r.Segments[i].IsOpen() {
			r.Segments[i].EndMs = durationMs
		}
	}
}

// Validate checks the ordering invariant engines are trusted to uphold:
// non-negative starts, end >= start, non-decreasing starts and no overlap
// between neighbours. Only the last segment may be open-ended.
// Out-of-order input is rejected, never re-sorted.
func (r *Result) Validate() error {
	last := len(r.Segments) - 1
	for i, s := range r.Segments {
		if s.StartMs < 0 {
			return fmt.Errorf("%w: segment %d starts at %d ms", ErrUnordered, i, s.StartMs)
		}
		if s.IsOpen() {
			if i != last {
				return fmt.Errorf("%w: segment %d is open-ended but not last", ErrUnordered, i)
			}
		} else if s.EndMs < s.StartMs {
			return fmt.Errorf("%w: segment %d ends (%d ms) before it starts (%d ms)", ErrUnordered, i, s.EndMs, s.StartMs)
		}
		if i == 0 {
			continue
		}
		prev := r.Segments[i-1]
		if s.StartMs < prev.StartMs {
			return fmt.Errorf("%w: segment %d starts before segment %d", ErrUnordered, i, i-1)
		}
		if !prev.IsOpen() && s.StartMs < prev.EndMs {
			return fmt.Errorf("%w: segment %d overlaps segment %d", ErrUnordered, i, i-1)
		}
	}
	return nil
}
