package sim

import (
	"fmt"
	"math/rand"
)

// CadenceSelector chooses how many epochs a synthetic light curve gets,
// following the observation-count distribution of each survey region.
type CadenceSelector struct {
	ddf      NormalSampler
	ddfFloor int
	wfd      *GaussianMixtureSampler
	wfdFloor int
}

// NewCadenceSelector builds the per-region distributions from cfg.
func NewCadenceSelector(cfg CadenceConfig) (*CadenceSelector, error) {
	wfd, err := NewGaussianMixtureSampler(cfg.WFD)
	if err != nil {
		return nil, fmt.Errorf("wide-field cadence: %w", err)
	}
	return &CadenceSelector{
		ddf:      cfg.DDF,
		ddfFloor: cfg.DDFFloor,
		wfd:      wfd,
		wfdFloor: cfg.WFDFloor,
	}, nil
}

// ChooseEpochCount returns the target number of observations. Draws are
// truncated toward zero, then clipped to the region floor.
func (c *CadenceSelector) ChooseEpochCount(meta *AugmentedMetadata, rng *rand.Rand) int {
	var count, floor int
	switch meta.Region {
	case DeepField:
		count, floor = int(c.ddf.Sample(rng)), c.ddfFloor
	default:
		count, floor = int(c.wfd.Sample(rng)), c.wfdFloor
	}
	if count < floor {
		return floor
	}
	return count
}
