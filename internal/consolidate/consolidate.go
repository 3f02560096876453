// Package consolidate groups the raw segments of a transcription into
// crops: named, possibly merged segments that each become one audio clip
// and one metadata line of a dataset.
//
// Supported strategies:
//   - NOTHING: every segment is its own crop (default)
//   - THRESHOLD: neighbours separated by at most a silence threshold merge
//   - NORMAL: reserved, always fails with ErrNotImplemented
package consolidate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chaz8081/croquis/internal/transcript"
)

// Strategy names accepted by New.
const (
	Nothing   = "NOTHING"
	Threshold = "THRESHOLD"
	Normal    = "NORMAL"
)

// DefaultSilenceThresholdMs is the gap up to which THRESHOLD merges.
const DefaultSilenceThresholdMs = 500

var (
	// ErrInvalidStrategy is returned by New for an unknown strategy name.
	ErrInvalidStrategy = errors.New("consolidate: invalid strategy")
	// ErrNotImplemented is returned by strategies that are declared but
	// have no implementation.
	ErrNotImplemented = errors.New("consolidate: strategy not implemented")
	// ErrInvalidOption is returned by New for an out-of-range option.
	ErrInvalidOption = errors.New("consolidate: invalid option")
)

// Crop is a segment destined to become one exported clip. ID joins the
// clip file name and its metadata line.
type Crop struct {
	ID      string
	Segment transcript.Segment
}

// Crops keeps crops in the order they were cut.
type Crops []Crop

// IDs returns the crop ids in order.
func (c Crops) IDs() []string {
	ids := make([]string, len(c))
	for i, crop := range c {
		ids[i] = crop.ID
	}
	return ids
}

// CropID builds the identifier of the seq-th crop of an audio source.
func CropID(stem string, seq int) string {
	return fmt.Sprintf("%s_%05d", stem, seq)
}

// Strategy turns a transcription into crops.
type Strategy interface {
	// Name returns the strategy name as accepted by New.
	Name() string
	// Consolidate cuts r into crops numbered from 0.
	Consolidate(r *transcript.Result) (Crops, error)
}

// Options tunes strategies that need parameters. Values are used as
// given; 0 is a valid threshold that merges only touching segments.
type Options struct {
	SilenceThresholdMs int
}

var constructors = map[string]func(Options) Strategy{
	Nothing: func(Options) Strategy { return IdentityStrategy{} },
	Threshold: func(o Options) Strategy {
		return ThresholdStrategy{SilenceThresholdMs: o.SilenceThresholdMs}
	},
	Normal: func(Options) Strategy { return NormalStrategy{} },
}

// Names lists the strategy names accepted by New.
func Names() []string {
	return []string{Nothing, Threshold, Normal}
}

// New returns the strategy registered under name (case-insensitive).
func New(name string, opts Options) (Strategy, error) {
	ctor, ok := constructors[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrInvalidStrategy, name, strings.Join(Names(), ", "))
	}
	if opts.SilenceThresholdMs < 0 {
		return nil, fmt.Errorf("%w: silence threshold %d ms is negative", ErrInvalidOption, opts.SilenceThresholdMs)
	}
	return ctor(opts), nil
}

// IsValid reports whether name selects a known strategy.
func IsValid(name string) bool {
	_, ok := constructors[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}
