// Package audio loads source recordings, cuts millisecond ranges out of
// them and writes the ranges back in the source container format.
//
// WAV files are handled natively with go-audio. Other containers (mp3,
// flac, ogg, m4a) go through ffmpeg/ffprobe.
package audio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupported is returned for audio a loader cannot handle.
	ErrUnsupported = errors.New("audio: unsupported format")
	// ErrRange is returned when an export range is outside the clip.
	ErrRange = errors.New("audio: range out of bounds")
)

// Extensions lists the file extensions treated as audio when scanning
// directories.
var Extensions = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a", ".opus"}

// IsAudioFile reports whether path has a known audio extension.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Clip is a loaded recording.
type Clip interface {
	// DurationMs returns the total length in milliseconds.
	DurationMs() int
	// Export writes [startMs, endMs) to dst in the source container format.
	Export(ctx context.Context, dst string, startMs, endMs int) error
}

// Loader opens recordings by path.
type Loader interface {
	Load(ctx context.Context, path string) (Clip, error)
}

// AutoLoader decodes WAV natively and hands every other format to ffmpeg.
type AutoLoader struct {
	WAV    *WAVLoader
	FFmpeg *FFmpegLoader
}

// NewAutoLoader returns an AutoLoader using the given ffmpeg binaries.
// Empty paths resolve "ffmpeg" and "ffprobe" from PATH.
func NewAutoLoader(ffmpegPath, ffprobePath string) *AutoLoader {
	return &AutoLoader{
		WAV:    &WAVLoader{},
		FFmpeg: NewFFmpegLoader(ffmpegPath, ffprobePath),
	}
}

// Load implements Loader.
func (l *AutoLoader) Load(ctx context.Context, path string) (Clip, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return l.WAV.Load(ctx, path)
	}
	return l.FFmpeg.Load(ctx, path)
}

func checkRange(startMs, endMs, durationMs int) error {
	if startMs < 0 || endMs < startMs || startMs > durationMs {
		return fmt.Errorf("%w: [%d, %d) of %d ms", ErrRange, startMs, endMs, durationMs)
	}
	return nil
}
