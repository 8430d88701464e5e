package feed

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/types"
)

// Publisher pushes accepted opportunities and execution outcomes onto a
// Redis stream for offline analysis. It is an optional collaborator: the
// scanner runs fine without it.
type Publisher struct {
	rdb    *redis.Client
	stream string
}

func NewPublisher(cfg *config.Config) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Publisher{rdb: rdb, stream: cfg.Redis.Stream}
}

func (p *Publisher) PublishOpportunity(ctx context.Context, opp types.Opportunity) error {
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"kind":       "opportunity",
			"asset_in":   opp.AssetIn.Hex(),
			"asset_out":  opp.AssetOut.Hex(),
			"buy_venue":  opp.BuyVenue,
			"sell_venue": opp.SellVenue,
			"fee_tier":   opp.FeeTier,
			"amount_in":  opp.AmountIn.String(),
			"spread_pct": opp.GrossSpreadPct,
			"net_usd":    opp.NetProfitUSD,
			"ts_ms":      opp.Ts.UnixMilli(),
		},
	}).Err()
}

func (p *Publisher) PublishResult(ctx context.Context, res types.ExecutionResult) error {
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"kind":       "execution",
			"outcome":    string(res.Outcome),
			"tx_hash":    res.TxHash,
			"error":      res.Err,
			"asset_in":   res.Opp.AssetIn.Hex(),
			"asset_out":  res.Opp.AssetOut.Hex(),
			"buy_venue":  res.Opp.BuyVenue,
			"sell_venue": res.Opp.SellVenue,
			"net_usd":    res.Opp.NetProfitUSD,
			"ts_ms":      res.Ts.UnixMilli(),
		},
	}).Err()
}

func (p *Publisher) Close() error { return p.rdb.Close() }
