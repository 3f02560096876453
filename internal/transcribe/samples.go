package transcribe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"github.com/chaz8081/croquis/internal/audio"
)

// loadSamples decodes a PCM WAV file into mono float32 samples in
// [-1.0, 1.0] at the requested sample rate. Channels are averaged and the
// signal is linearly resampled when the file rate differs.
func loadSamples(path string, sampleRate int) ([]float32, error) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return nil, fmt.Errorf("%w: %q must be WAV for in-process transcription", audio.ErrUnsupported, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcribe: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %q is not a valid WAV file", audio.ErrUnsupported, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("transcribe: decode %q: %w", path, err)
	}

	channels := buf.Format.NumChannels
	scale := float32(int(1) << (int(dec.BitDepth) - 1))
	mono := make([]float32, len(buf.Data)/channels)
	for i := range mono {
		var sum float32
		for c := range channels {
			sum += float32(buf.Data[i*channels+c])
		}
		mono[i] = sum / float32(channels) / scale
	}

	return resample(mono, buf.Format.SampleRate, sampleRate), nil
}

// resample converts between sample rates by linear interpolation.
func resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]float32, n)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j] + (in[j+1]-in[j])*frac
	}
	return out
}
