package detector

import (
	"math"

	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/types"
)

// Evaluator applies the price-impact bound and the minimum-significant-
// difference threshold to quote pairs.
type Evaluator struct {
	// maxImpact is a fraction (0.02 = 2%); minDiffPct a percentage.
	maxImpact  float64
	minDiffPct float64
	log        *zap.Logger
}

func NewEvaluator(cfg *config.Config, log *zap.Logger) *Evaluator {
	return &Evaluator{
		maxImpact:  cfg.Trading.MaxPriceImpact,
		minDiffPct: cfg.Trading.MinPriceDiffPct,
		log:        log,
	}
}

// Evaluate compares two same-direction quotes from distinct venues. The leg
// with the larger output becomes the buy side. Returns false when the pair
// is rejected.
func (e *Evaluator) Evaluate(a, b types.QuoteSample) (types.SpreadCandidate, bool) {
	if a.Venue == b.Venue && a.FeeTier == b.FeeTier {
		return types.SpreadCandidate{}, false
	}
	buy, sell := a, b
	if sell.OutUnits > buy.OutUnits {
		buy, sell = sell, buy
	}
	if buy.OutUnits <= 0 {
		return types.SpreadCandidate{}, false
	}

	impact := math.Abs(buy.OutUnits-sell.OutUnits) / buy.OutUnits
	if impact > e.maxImpact {
		return types.SpreadCandidate{}, false
	}
	if impact*100 < e.minDiffPct {
		// Spread too small to be signal.
		return types.SpreadCandidate{}, false
	}

	return types.SpreadCandidate{
		Buy:         buy,
		Sell:        sell,
		PriceImpact: impact,
		SpreadUnits: buy.OutUnits - sell.OutUnits,
	}, true
}

// Best scans all cross-venue sample pairings and returns the widest
// candidate that survives both checks.
func (e *Evaluator) Best(samples []types.QuoteSample) (types.SpreadCandidate, bool) {
	var (
		best  types.SpreadCandidate
		found bool
	)
	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			if samples[i].Venue == samples[j].Venue {
				continue
			}
			cand, ok := e.Evaluate(samples[i], samples[j])
			if !ok {
				continue
			}
			if !found || cand.SpreadUnits > best.SpreadUnits {
				best, found = cand, true
			}
		}
	}
	return best, found
}
