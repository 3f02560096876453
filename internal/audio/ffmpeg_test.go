package audio

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output map[string][]byte
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name, args})
	if f.err != nil {
		return nil, f.err
	}
	return f.output[name], nil
}

func TestFFmpegLoaderDefaults(t *testing.T) {
	l := NewFFmpegLoader("", "")
	if l.FFmpegPath != "ffmpeg" || l.FFprobePath != "ffprobe" {
		t.Errorf("paths = %q, %q; want ffmpeg, ffprobe", l.FFmpegPath, l.FFprobePath)
	}
}

func TestFFmpegLoaderProbe(t *testing.T) {
	run := &fakeRunner{output: map[string][]byte{"ffprobe": []byte("12.345600\n")}}
	l := NewFFmpegLoader("", "")
	l.cmd = run

	clip, err := l.Load(context.Background(), "talk.mp3")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := clip.DurationMs(); got != 12345 {
		t.Errorf("DurationMs() = %d, want 12345", got)
	}
	if len(run.calls) != 1 || run.calls[0].name != "ffprobe" {
		t.Fatalf("calls = %v, want one ffprobe call", run.calls)
	}
	if last := run.calls[0].args[len(run.calls[0].args)-1]; last != "talk.mp3" {
		t.Errorf("probe target = %q, want talk.mp3", last)
	}
}

func TestFFmpegLoaderBadProbeOutput(t *testing.T) {
	l := NewFFmpegLoader("", "")
	l.cmd = &fakeRunner{output: map[string][]byte{"ffprobe": []byte("N/A")}}

	if _, err := l.Load(context.Background(), "x.ogg"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Load() error = %v, want ErrUnsupported", err)
	}
}

func TestFFmpegLoaderProbeFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	l := NewFFmpegLoader("", "")
	l.cmd = &fakeRunner{err: boom}

	if _, err := l.Load(context.Background(), "x.ogg"); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want wrapped %v", err, boom)
	}
}

func TestFFmpegClipExport(t *testing.T) {
	run := &fakeRunner{output: map[string][]byte{"ffprobe": []byte("3.0")}}
	l := NewFFmpegLoader("/opt/ffmpeg", "ffprobe")
	l.cmd = run

	clip, err := l.Load(context.Background(), "in.flac")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := clip.Export(context.Background(), "out.flac", 1500, 9000); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got := run.calls[len(run.calls)-1]
	if got.name != "/opt/ffmpeg" {
		t.Errorf("binary = %q, want /opt/ffmpeg", got.name)
	}
	want := []string{"-y", "-v", "error", "-i", "in.flac", "-ss", "1.500", "-to", "3.000", "out.flac"}
	if !slices.Equal(got.args, want) {
		t.Errorf("args = %v, want %v", got.args, want)
	}
}

func TestFFmpegClipExportRange(t *testing.T) {
	l := NewFFmpegLoader("", "")
	l.cmd = &fakeRunner{output: map[string][]byte{"ffprobe": []byte("1.0")}}

	clip, err := l.Load(context.Background(), "in.mp3")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := clip.Export(context.Background(), "out.mp3", 2000, 2500); !errors.Is(err, ErrRange) {
		t.Errorf("Export() error = %v, want ErrRange", err)
	}
}

func TestAutoLoaderDispatch(t *testing.T) {
	run := &fakeRunner{output: map[string][]byte{"ffprobe": []byte("2.0")}}
	l := NewAutoLoader("", "")
	l.FFmpeg.cmd = run

	if _, err := l.Load(context.Background(), "song.mp3"); err != nil {
		t.Fatalf("Load(mp3) error = %v", err)
	}
	if len(run.calls) != 1 {
		t.Errorf("mp3 should go through ffprobe, calls = %v", run.calls)
	}

	// A .wav path never reaches ffmpeg, even when it does not exist.
	if _, err := l.Load(context.Background(), "missing.WAV"); err == nil {
		t.Error("Load(missing wav) should fail")
	}
	if len(run.calls) != 1 {
		t.Errorf("wav should not call ffprobe, calls = %v", run.calls)
	}
}

func TestMsToSeconds(t *testing.T) {
	tests := map[int]string{0: "0.000", 1: "0.001", 1500: "1.500", 61000: "61.000"}
	for ms, want := range tests {
		if got := msToSeconds(ms); got != want {
			t.Errorf("msToSeconds(%d) = %q, want %q", ms, got, want)
		}
	}
}
