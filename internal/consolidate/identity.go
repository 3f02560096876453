package consolidate

import "github.com/chaz8081/croquis/internal/transcript"

// IdentityStrategy crops the audio exactly as the engine segmented it.
type IdentityStrategy struct{}

// Name implements Strategy.
func (IdentityStrategy) Name() string { return Nothing }

// Consolidate implements Strategy.
func (IdentityStrategy) Consolidate(r *transcript.Result) (Crops, error) {
	stem := r.Stem()
	crops := make(Crops, 0, r.Len())
	for i, seg := range r.All() {
		crops = append(crops, Crop{ID: CropID(stem, i), Segment: seg})
	}
	return crops, nil
}
