package quotes

import (
	"context"

	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/chain"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
	"github.com/pttransamdriver/trading-bot-v3/internal/metrics"
	"github.com/pttransamdriver/trading-bot-v3/internal/scheduler"
	"github.com/pttransamdriver/trading-bot-v3/internal/types"
)

// Collector gathers simulated swap outputs for a pair across every
// (venue, fee tier) combination. Combinations are probed sequentially to
// bound RPC request concurrency; a failed combination is skipped, never
// retried this cycle.
type Collector struct {
	log *zap.Logger
}

func NewCollector(log *zap.Logger) *Collector {
	return &Collector{log: log}
}

func (c *Collector) Collect(ctx context.Context, pair scheduler.Pair, venues []*core.Venue) []types.QuoteSample {
	var samples []types.QuoteSample
	for _, ven := range venues {
		for _, fee := range ven.FeeTiers {
			out, err := ven.Quoter.AmountOut(ctx, pair.In.Address, pair.Out.Address, fee, pair.AmountIn)
			if err != nil {
				metrics.QuoteErrors.Inc()
				c.log.Debug("quote skipped",
					zap.String("venue", string(ven.ID)),
					zap.Uint32("fee", fee),
					zap.String("pair", pair.In.Symbol+"/"+pair.Out.Symbol),
					zap.Error(err))
				continue
			}
			if out == nil || out.Sign() <= 0 {
				continue
			}
			samples = append(samples, types.QuoteSample{
				AssetIn:   pair.In.Address,
				AssetOut:  pair.Out.Address,
				Venue:     string(ven.ID),
				FeeTier:   fee,
				AmountIn:  pair.AmountIn,
				AmountOut: out,
				OutUnits:  chain.ToFloat(out, pair.Out.Decimals),
			})
		}
	}
	return samples
}
