package transcript

import (
	"errors"
	"strings"
	"testing"
)

func TestMergeSingle(t *testing.T) {
	seg := Segment{StartMs: 100, EndMs: 900, Text: "hello"}

	got, err := Merge([]Segment{seg})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got.StartMs != seg.StartMs || got.EndMs != seg.EndMs {
		t.Errorf("Merge() bounds = [%d-%d], want [%d-%d]", got.StartMs, got.EndMs, seg.StartMs, seg.EndMs)
	}
	if strings.TrimSpace(got.Text) != seg.Text {
		t.Errorf("Merge() text = %q, want %q after trimming", got.Text, seg.Text)
	}
}

func TestMergeMany(t *testing.T) {
	tests := []struct {
		name     string
		segs     []Segment
		wantText string
	}{
		{
			name:     "two",
			segs:     []Segment{{0, 1000, "a"}, {1200, 2000, "b"}},
			wantText: " a b",
		},
		{
			name:     "three with shared start",
			segs:     []Segment{{0, 0, "x"}, {0, 10, "y"}, {10, 50, "z"}},
			wantText: " x y z",
		},
		{
			name:     "open end",
			segs:     []Segment{{0, 500, "first"}, {600, OpenEnd, "last"}},
			wantText: " first last",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.segs)
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			if got.StartMs != tt.segs[0].StartMs {
				t.Errorf("StartMs = %d, want %d", got.StartMs, tt.segs[0].StartMs)
			}
			if got.EndMs != tt.segs[len(tt.segs)-1].EndMs {
				t.Errorf("EndMs = %d, want %d", got.EndMs, tt.segs[len(tt.segs)-1].EndMs)
			}
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

func TestMergeEmpty(t *testing.T) {
	for _, segs := range [][]Segment{nil, {}} {
		got, err := Merge(segs)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Merge(%v) error = %v, want ErrEmptyInput", segs, err)
		}
		if got != (Segment{}) {
			t.Errorf("Merge(%v) returned %v alongside the error", segs, got)
		}
	}
}

func TestSegmentDuration(t *testing.T) {
	if d := (Segment{StartMs: 200, EndMs: 700}).DurationMs(); d != 500 {
		t.Errorf("DurationMs() = %d, want 500", d)
	}
	if d := (Segment{StartMs: 200, EndMs: OpenEnd}).DurationMs(); d != 0 {
		t.Errorf("DurationMs() on open segment = %d, want 0", d)
	}
}
