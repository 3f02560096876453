package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// commandRunner runs an external binary and returns its stdout.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// FFmpegLoader handles every container ffmpeg understands. It never
// decodes into memory: durations come from ffprobe and ranges are cut by
// ffmpeg into a file with the same extension as the source.
type FFmpegLoader struct {
	FFmpegPath  string
	FFprobePath string

	cmd commandRunner
}

// NewFFmpegLoader returns a loader using the given binaries. Empty paths
// default to "ffmpeg" and "ffprobe".
func NewFFmpegLoader(ffmpegPath, ffprobePath string) *FFmpegLoader {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegLoader{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath, cmd: osCommandRunner{}}
}

// Load implements Loader.
func (l *FFmpegLoader) Load(ctx context.Context, path string) (Clip, error) {
	out, err := l.cmd.Run(ctx, l.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("audio: probe %q: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || math.IsNaN(seconds) || seconds < 0 {
		return nil, fmt.Errorf("%w: ffprobe reported duration %q for %q", ErrUnsupported, strings.TrimSpace(string(out)), path)
	}

	return &FFmpegClip{
		loader:     l,
		path:       path,
		durationMs: int(seconds * 1000),
	}, nil
}

// FFmpegClip is a recording on disk, cut lazily by ffmpeg.
type FFmpegClip struct {
	loader     *FFmpegLoader
	path       string
	durationMs int
}

// DurationMs implements Clip.
func (c *FFmpegClip) DurationMs() int { return c.durationMs }

// Export implements Clip.
func (c *FFmpegClip) Export(ctx context.Context, dst string, startMs, endMs int) error {
	if err := checkRange(startMs, endMs, c.durationMs); err != nil {
		return err
	}
	_, err := c.loader.cmd.Run(ctx, c.loader.FFmpegPath,
		"-y", "-v", "error",
		"-i", c.path,
		"-ss", msToSeconds(startMs),
		"-to", msToSeconds(min(endMs, c.durationMs)),
		dst,
	)
	if err != nil {
		return fmt.Errorf("audio: export %q: %w", dst, err)
	}
	return nil
}

func msToSeconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
