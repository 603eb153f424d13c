package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
)

// DefaultTimeDecayHalfLife is the half-life used by time-decay attribution
// when no override is configured.
const DefaultTimeDecayHalfLife = 7 * 24 * time.Hour

// Touchpoint is one campaign contact moment considered for attribution,
// ordered oldest first.
type Touchpoint struct {
	CampaignID string
	OccurredAt time.Time
}

// AttributionWeights distributes conversion credit over ordered touchpoints
// according to the model. Weights always sum to 1; a single touchpoint gets
// full credit under every model.
func AttributionWeights(
	model domain.AttributionModel,
	touches []Touchpoint,
	convertedAt time.Time,
	halfLife time.Duration,
) ([]float64, error) {
	if len(touches) == 0 {
		return nil, fmt.Errorf("attribution needs at least one touchpoint")
	}

	weights := make([]float64, len(touches))
	if len(touches) == 1 {
		weights[0] = 1
		return weights, nil
	}

	switch model {
	case domain.AttributionFirstTouch:
		weights[0] = 1
	case domain.AttributionLastTouch:
		weights[len(weights)-1] = 1
	case domain.AttributionLinear:
		share := 1 / float64(len(touches))
		for i := range weights {
			weights[i] = share
		}
	case domain.AttributionTimeDecay:
		if halfLife <= 0 {
			halfLife = DefaultTimeDecayHalfLife
		}
		var total float64
		for i, touch := range touches {
			age := convertedAt.Sub(touch.OccurredAt)
			if age < 0 {
				age = 0
			}
			weights[i] = math.Pow(0.5, age.Hours()/halfLife.Hours())
			total += weights[i]
		}
		if total == 0 {
			// All touches infinitely old; fall back to even split.
			share := 1 / float64(len(touches))
			for i := range weights {
				weights[i] = share
			}
			return weights, nil
		}
		for i := range weights {
			weights[i] /= total
		}
	default:
		return nil, fmt.Errorf("unsupported attribution model %q", model)
	}

	return weights, nil
}
