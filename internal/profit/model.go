package profit

import (
	"context"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/chain"
	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/registry"
	"github.com/pttransamdriver/trading-bot-v3/internal/types"
)

// Estimate is the cost breakdown for one candidate. NetUSD already carries
// the safety margin.
type Estimate struct {
	RawSpreadUSD float64
	GasCostUSD   float64
	FlashFeeUSD  float64
	DexFeesUSD   float64
	NetUSD       float64
}

// Model converts spreads into net-of-costs USD estimates. Evaluate is a
// pure function of its inputs: same candidate, gas environment and price
// always produce the same result.
type Model struct {
	flashLoanPct    float64
	dexSwapPct      float64
	safetyMarginPct float64
	gasEstimate     uint64
	minProfitUSD    float64
}

func NewModel(cfg *config.Config) *Model {
	return &Model{
		flashLoanPct:    cfg.Fees.FlashLoanPct,
		dexSwapPct:      cfg.Fees.DexSwapPct,
		safetyMarginPct: cfg.Fees.SafetyMarginPct,
		gasEstimate:     cfg.Fees.GasEstimate,
		minProfitUSD:    cfg.Trading.MinProfitUSD,
	}
}

// Evaluate prices the candidate. assetOutUSD is the USD value of one unit
// of the output asset.
func (m *Model) Evaluate(cand types.SpreadCandidate, gas types.GasEnvironment, assetOutUSD float64) Estimate {
	raw := cand.SpreadUnits * assetOutUSD

	gasWei := new(big.Int).Mul(gas.GasPriceWei, new(big.Int).SetUint64(m.gasEstimate))
	gasUSD := chain.WeiToUSD(gasWei, gas.NativeUSD)

	flashFee := raw * m.flashLoanPct / 100
	dexFees := raw * m.dexSwapPct / 100 * 2

	net := raw - gasUSD - flashFee - dexFees
	net *= 1 - m.safetyMarginPct/100

	return Estimate{
		RawSpreadUSD: raw,
		GasCostUSD:   gasUSD,
		FlashFeeUSD:  flashFee,
		DexFeesUSD:   dexFees,
		NetUSD:       net,
	}
}

// Accept gates strictly against the minimum-profit floor.
func (m *Model) Accept(est Estimate) bool {
	return est.NetUSD > m.minProfitUSD
}

// Appraise combines Evaluate and Accept into an Opportunity.
func (m *Model) Appraise(cand types.SpreadCandidate, gas types.GasEnvironment, assetOutUSD float64) (types.Opportunity, Estimate, bool) {
	est := m.Evaluate(cand, gas, assetOutUSD)
	if !m.Accept(est) {
		return types.Opportunity{}, est, false
	}
	return types.Opportunity{
		AssetIn:        cand.Buy.AssetIn,
		AssetOut:       cand.Buy.AssetOut,
		BuyVenue:       cand.Buy.Venue,
		SellVenue:      cand.Sell.Venue,
		FeeTier:        cand.Buy.FeeTier,
		AmountIn:       cand.Buy.AmountIn,
		GrossSpreadPct: cand.PriceImpact * 100,
		NetProfitUSD:   est.NetUSD,
		Ts:             time.Now(),
	}, est, true
}

// PriceResolver turns assets into USD prices for the model. Stable assets
// are 1:1; oracle failures fall back to 1.0 so profit is never overstated.
type PriceResolver struct {
	feed chain.OracleFeed
	log  *zap.Logger
}

func NewPriceResolver(feed chain.OracleFeed, log *zap.Logger) *PriceResolver {
	return &PriceResolver{feed: feed, log: log}
}

func (p *PriceResolver) USD(ctx context.Context, a registry.Asset) float64 {
	if a.Stable {
		return 1.0
	}
	px, err := p.feed.LatestPrice(ctx, a.PriceFeed)
	if err != nil {
		p.log.Warn("oracle price unavailable, using conservative fallback",
			zap.String("asset", a.Symbol), zap.Error(err))
		return 1.0
	}
	return px
}
