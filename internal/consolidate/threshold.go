package consolidate

import (
	"fmt"

	"github.com/chaz8081/croquis/internal/transcript"
)

// ThresholdStrategy merges consecutive segments whose silence gap is at
// most SilenceThresholdMs. A gap exactly equal to the threshold merges.
type ThresholdStrategy struct {
	SilenceThresholdMs int
}

// Name implements Strategy.
func (ThresholdStrategy) Name() string { return Threshold }

// Consolidate implements Strategy. The trailing group is always emitted,
// even when it holds a single segment.
func (s ThresholdStrategy) Consolidate(r *transcript.Result) (Crops, error) {
	stem := r.Stem()
	var crops Crops
	var group []transcript.Segment

	flush := func() error {
		merged, err := transcript.Merge(group)
		if err != nil {
			return fmt.Errorf("consolidate: merge crop %d: %w", len(crops), err)
		}
		crops = append(crops, Crop{ID: CropID(stem, len(crops)), Segment: merged})
		return nil
	}

	for _, seg := range r.All() {
		if len(group) == 0 {
			group = append(group, seg)
			continue
		}
		gap := seg.StartMs - group[len(group)-1].EndMs
		if gap <= s.SilenceThresholdMs {
			group = append(group, seg)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		group = []transcript.Segment{seg}
	}

	if len(group) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return crops, nil
}
