package liquidity

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
	"github.com/pttransamdriver/trading-bot-v3/internal/metrics"
)

// ErrInsufficientLiquidity covers missing pools, thin pools, and failed
// lookups alike; the filter fails closed.
var ErrInsufficientLiquidity = errors.New("insufficient liquidity")

type Filter struct {
	reference common.Address
	log       *zap.Logger
}

func NewFilter(reference common.Address, log *zap.Logger) *Filter {
	return &Filter{reference: reference, log: log}
}

// Check verifies one asset's depth on one venue against the venue's
// canonical (first configured) fee tier.
func (f *Filter) Check(ctx context.Context, ven *core.Venue, asset common.Address) error {
	if len(ven.FeeTiers) == 0 {
		return fmt.Errorf("%w: venue %s has no fee tiers", ErrInsufficientLiquidity, ven.ID)
	}
	ok, err := ven.Liquidity.HasLiquidity(ctx, asset, f.reference, ven.FeeTiers[0])
	if err != nil {
		return fmt.Errorf("%w: %s on %s: %v", ErrInsufficientLiquidity, asset.Hex(), ven.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInsufficientLiquidity, asset.Hex(), ven.ID)
	}
	return nil
}

// PairPasses runs both sides' checks concurrently and joins. A failure on
// either side rejects the venue for this pair.
func (f *Filter) PairPasses(ctx context.Context, ven *core.Venue, assetIn, assetOut common.Address) bool {
	errc := make(chan error, 2)
	for _, asset := range []common.Address{assetIn, assetOut} {
		asset := asset
		go func() { errc <- f.Check(ctx, ven, asset) }()
	}
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil {
			metrics.LiquidityRejects.Inc()
			f.log.Debug("liquidity reject", zap.String("venue", string(ven.ID)), zap.Error(err))
			return false
		}
	}
	return true
}
