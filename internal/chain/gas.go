package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/types"
	"go.uber.org/zap"
)

// GasRefresher snapshots the gas environment at the start of each cycle.
type GasRefresher struct {
	c     *Client
	feed  OracleFeed
	ethFd common.Address
	cfg   *config.Config
	log   *zap.Logger
}

func NewGasRefresher(c *Client, feed OracleFeed, cfg *config.Config, log *zap.Logger) *GasRefresher {
	return &GasRefresher{
		c:     c,
		feed:  feed,
		ethFd: common.HexToAddress(cfg.Contracts.NativeUSDFeed),
		cfg:   cfg,
		log:   log,
	}
}

// Refresh reads the current gas price and tip. The native USD price comes
// from the oracle with a configured fallback; gas price failure is a cycle
// error, price failure is not.
func (g *GasRefresher) Refresh(ctx context.Context) (types.GasEnvironment, error) {
	gp, err := g.c.SuggestGasPrice(ctx)
	if err != nil {
		return types.GasEnvironment{}, fmt.Errorf("suggest gas price: %w", err)
	}

	tip, err := g.c.SuggestGasTipCap(ctx)
	if err != nil {
		tip = GweiToWei(g.cfg.Chain.PriorityFeeGwei)
	}

	nativeUSD, err := g.feed.LatestPrice(ctx, g.ethFd)
	if err != nil {
		nativeUSD = g.cfg.Chain.NativeUSDFallback
		g.log.Warn("native price feed unavailable, using fallback",
			zap.Float64("fallback_usd", nativeUSD), zap.Error(err))
	}

	return types.GasEnvironment{
		GasPriceWei: gp,
		TipWei:      tip,
		CeilingWei:  GweiToWei(g.cfg.Chain.MaxGasPriceGwei),
		NativeUSD:   nativeUSD,
	}, nil
}
