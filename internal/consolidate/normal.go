package consolidate

import "github.com/chaz8081/croquis/internal/transcript"

// NormalStrategy would segment by an expected utterance-length
// distribution. It has no model yet and always fails.
type NormalStrategy struct{}

// Name implements Strategy.
func (NormalStrategy) Name() string { return Normal }

// Consolidate implements Strategy and always returns ErrNotImplemented.
func (NormalStrategy) Consolidate(*transcript.Result) (Crops, error) {
	return nil, ErrNotImplemented
}
