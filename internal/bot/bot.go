package bot

import (
	"context"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/detector"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
	"github.com/pttransamdriver/trading-bot-v3/internal/execution"
	"github.com/pttransamdriver/trading-bot-v3/internal/feed"
	"github.com/pttransamdriver/trading-bot-v3/internal/liquidity"
	"github.com/pttransamdriver/trading-bot-v3/internal/metrics"
	"github.com/pttransamdriver/trading-bot-v3/internal/profit"
	"github.com/pttransamdriver/trading-bot-v3/internal/quotes"
	"github.com/pttransamdriver/trading-bot-v3/internal/registry"
	"github.com/pttransamdriver/trading-bot-v3/internal/scheduler"
	"github.com/pttransamdriver/trading-bot-v3/internal/types"
)

// GasSource snapshots the chain's gas environment once per cycle.
type GasSource interface {
	Refresh(ctx context.Context) (types.GasEnvironment, error)
}

// Bot drives the scan loop: gas gate, pair schedule, filter, quote,
// evaluate, appraise, dispatch. It runs until its context is cancelled and
// never terminates on a recoverable error.
type Bot struct {
	cfg        *config.Config
	log        *zap.Logger
	reg        *registry.Registry
	sched      *scheduler.Scheduler
	venues     []*core.Venue
	filter     *liquidity.Filter
	collector  *quotes.Collector
	evaluator  *detector.Evaluator
	model      *profit.Model
	prices     *profit.PriceResolver
	gasRef     GasSource
	dispatcher *execution.Dispatcher
	pub        *feed.Publisher
}

type Deps struct {
	Cfg        *config.Config
	Log        *zap.Logger
	Registry   *registry.Registry
	Venues     []*core.Venue
	Filter     *liquidity.Filter
	Collector  *quotes.Collector
	Evaluator  *detector.Evaluator
	Model      *profit.Model
	Prices     *profit.PriceResolver
	GasRef     GasSource
	Dispatcher *execution.Dispatcher
	Publisher  *feed.Publisher
}

func New(d Deps) *Bot {
	return &Bot{
		cfg:        d.Cfg,
		log:        d.Log,
		reg:        d.Registry,
		sched:      scheduler.New(d.Registry, d.Cfg),
		venues:     d.Venues,
		filter:     d.Filter,
		collector:  d.Collector,
		evaluator:  d.Evaluator,
		model:      d.Model,
		prices:     d.Prices,
		gasRef:     d.GasRef,
		dispatcher: d.Dispatcher,
		pub:        d.Publisher,
	}
}

func (b *Bot) Run(ctx context.Context) {
	b.log.Info("scanner started",
		zap.String("network", b.cfg.Chain.Network),
		zap.Int("assets", len(b.reg.Assets)),
		zap.Int("venues", len(b.venues)),
		zap.Duration("interval", b.cfg.ScanInterval()))

	for ctx.Err() == nil {
		start := time.Now()
		err := b.Cycle(ctx)
		metrics.CycleDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.CycleErrors.Inc()
			b.log.Error("cycle failed, backing off", zap.Error(err))
			b.sleep(ctx, b.cfg.Backoff())
			continue
		}
		b.sleep(ctx, b.cfg.ScanInterval())
	}
	b.log.Info("scanner stopped")
}

// Cycle performs one full scan. Pair- and combination-level failures are
// absorbed inside; any error returned here is cycle-level and triggers the
// caller's backoff.
func (b *Bot) Cycle(ctx context.Context) error {
	gasEnv, err := b.gasRef.Refresh(ctx)
	if err != nil {
		return err
	}
	gwei, _ := new(big.Float).Quo(
		new(big.Float).SetInt(gasEnv.GasPriceWei), big.NewFloat(1e9)).Float64()
	metrics.GasPriceGwei.Set(gwei)

	if !gasEnv.Acceptable() {
		metrics.SkippedCycles.Inc()
		b.log.Info("gas price too high, waiting",
			zap.Float64("gas_gwei", gwei),
			zap.Float64("ceiling_gwei", b.cfg.Chain.MaxGasPriceGwei))
		return nil
	}

	var accepted []types.Opportunity
	for _, pair := range b.sched.Pairs() {
		if ctx.Err() != nil {
			return nil
		}
		if opp, ok := b.scanPair(ctx, pair, gasEnv); ok {
			accepted = append(accepted, opp)
		}
	}

	b.dispatcher.DispatchAll(ctx, accepted, gasEnv)
	return nil
}

func (b *Bot) scanPair(ctx context.Context, pair scheduler.Pair, gasEnv types.GasEnvironment) (types.Opportunity, bool) {
	surviving := make([]*core.Venue, 0, len(b.venues))
	for _, ven := range b.venues {
		if b.filter.PairPasses(ctx, ven, pair.In.Address, pair.Out.Address) {
			surviving = append(surviving, ven)
		}
	}
	// A spread needs quotes from at least two venues.
	if len(surviving) < 2 {
		return types.Opportunity{}, false
	}

	samples := b.collector.Collect(ctx, pair, surviving)
	cand, ok := b.evaluator.Best(samples)
	if !ok {
		return types.Opportunity{}, false
	}

	outUSD := b.prices.USD(ctx, pair.Out)
	opp, est, ok := b.model.Appraise(cand, gasEnv, outUSD)
	if !ok {
		b.log.Debug("below profit threshold",
			zap.String("pair", pair.In.Symbol+"/"+pair.Out.Symbol),
			zap.Float64("net_usd", est.NetUSD))
		return types.Opportunity{}, false
	}

	metrics.Opportunities.Inc()
	metrics.NetProfitUSD.Set(opp.NetProfitUSD)
	b.log.Info("opportunity found",
		zap.String("pair", pair.In.Symbol+"/"+pair.Out.Symbol),
		zap.String("buy_venue", opp.BuyVenue),
		zap.String("sell_venue", opp.SellVenue),
		zap.Uint32("fee_tier", opp.FeeTier),
		zap.Float64("spread_pct", opp.GrossSpreadPct),
		zap.Float64("raw_usd", est.RawSpreadUSD),
		zap.Float64("gas_usd", est.GasCostUSD),
		zap.Float64("net_usd", est.NetUSD))

	if b.pub != nil {
		if err := b.pub.PublishOpportunity(ctx, opp); err != nil {
			b.log.Warn("opportunity publish failed", zap.Error(err))
		}
	}
	return opp, true
}

func (b *Bot) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
