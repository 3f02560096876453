package audio

import (
	"context"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag, the only one go-audio encodes.
const wavFormatPCM = 1

// WAVLoader decodes integer PCM WAV files fully into memory.
type WAVLoader struct{}

// Load implements Loader.
func (WAVLoader) Load(ctx context.Context, path string) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %q is not a valid WAV file", ErrUnsupported, path)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: %q uses WAV format tag %d, want PCM", ErrUnsupported, path, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode %q: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: %q has no sample format", ErrUnsupported, path)
	}

	return &WAVClip{
		buf:      buf,
		bitDepth: int(dec.BitDepth),
	}, nil
}

// WAVClip is a decoded WAV recording.
type WAVClip struct {
	buf      *goaudio.IntBuffer
	bitDepth int
}

// SampleRate returns the sample rate in Hz.
func (c *WAVClip) SampleRate() int { return c.buf.Format.SampleRate }

// Channels returns the channel count.
func (c *WAVClip) Channels() int { return c.buf.Format.NumChannels }

func (c *WAVClip) frames() int { return len(c.buf.Data) / c.Channels() }

// msToFrame converts a millisecond offset to a frame index, rounding down.
func (c *WAVClip) msToFrame(ms int) int {
	return int(int64(ms) * int64(c.SampleRate()) / 1000)
}

// DurationMs implements Clip.
func (c *WAVClip) DurationMs() int {
	return int(int64(c.frames()) * 1000 / int64(c.SampleRate()))
}

// Export implements Clip. Sample-accurate: the range is converted to
// frames and copied without re-encoding.
func (c *WAVClip) Export(ctx context.Context, dst string, startMs, endMs int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRange(startMs, endMs, c.DurationMs()); err != nil {
		return err
	}

	ch := c.Channels()
	first := c.msToFrame(startMs)
	last := min(c.msToFrame(endMs), c.frames())

	return WriteWAV(dst, c.buf.Data[first*ch:last*ch], c.SampleRate(), c.bitDepth, ch)
}

// WriteWAV encodes interleaved integer PCM samples into a WAV file.
func WriteWAV(path string, samples []int, sampleRate, bitDepth, channels int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %q: %w", path, err)
	}

	enc := wav.NewEncoder(out, sampleRate, bitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		out.Close()
		return fmt.Errorf("audio: encode %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return fmt.Errorf("audio: finalize %q: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("audio: close %q: %w", path, err)
	}
	return nil
}
