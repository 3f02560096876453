package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CropRequest describes a one-off cut of a single file.
type CropRequest struct {
	Source  string
	StartMs int
	// EndMs of OpenEnd (-1) means the end of the recording.
	EndMs     int
	OutputDir string
	// OutputName without extension. Defaults to "<stem>_<start>_<end>".
	OutputName string
}

// OpenEnd marks a crop that runs to the end of the recording.
const OpenEnd = -1

// CropFile cuts one range out of a recording and writes it next to the
// source, or into OutputDir when set. The end is clamped to the clip
// duration. It returns the written path.
func CropFile(ctx context.Context, loader Loader, req CropRequest) (string, error) {
	clip, err := loader.Load(ctx, req.Source)
	if err != nil {
		return "", err
	}

	end := req.EndMs
	if end == OpenEnd || end > clip.DurationMs() {
		end = clip.DurationMs()
	}
	if req.StartMs < 0 || req.StartMs > end {
		return "", fmt.Errorf("%w: start %d ms, end %d ms", ErrRange, req.StartMs, end)
	}

	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Dir(req.Source)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("audio: create %q: %w", dir, err)
	}

	ext := filepath.Ext(req.Source)
	name := req.OutputName
	if name == "" {
		stem := strings.TrimSuffix(filepath.Base(req.Source), ext)
		name = fmt.Sprintf("%s_%d_%d", stem, req.StartMs, end)
	}

	dst := filepath.Join(dir, name+ext)
	if err := clip.Export(ctx, dst, req.StartMs, end); err != nil {
		return "", err
	}
	return dst, nil
}
