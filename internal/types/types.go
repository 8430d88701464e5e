package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// QuoteSample is one simulated swap result for a fixed notional input.
// Samples are produced fresh every cycle and never cached.
type QuoteSample struct {
	AssetIn  common.Address
	AssetOut common.Address
	Venue    string
	FeeTier  uint32
	AmountIn *big.Int
	// AmountOut is the simulated output in AssetOut's smallest unit.
	AmountOut *big.Int
	// OutUnits is AmountOut scaled by AssetOut's decimals.
	OutUnits float64
}

// SpreadCandidate pairs two quotes for the same (assetIn, assetOut, amountIn)
// from distinct venues. Buy is the leg with the larger output.
type SpreadCandidate struct {
	Buy  QuoteSample
	Sell QuoteSample
	// PriceImpact = |buy.out - sell.out| / buy.out
	PriceImpact float64
	// SpreadUnits is the output difference in AssetOut units.
	SpreadUnits float64
}

type Opportunity struct {
	AssetIn        common.Address
	AssetOut       common.Address
	BuyVenue       string
	SellVenue      string
	FeeTier        uint32
	AmountIn       *big.Int
	GrossSpreadPct float64
	NetProfitUSD   float64
	SlippagePct    float64
	Ts             time.Time
}

// GasEnvironment is refreshed at the start of every cycle and shared
// read-only within it.
type GasEnvironment struct {
	GasPriceWei *big.Int
	TipWei      *big.Int
	CeilingWei  *big.Int
	NativeUSD   float64
}

// Acceptable reports whether scanning may proceed under the ceiling.
func (g GasEnvironment) Acceptable() bool {
	if g.GasPriceWei == nil || g.CeilingWei == nil {
		return false
	}
	return g.GasPriceWei.Cmp(g.CeilingWei) <= 0
}

type Outcome string

const (
	OutcomeSubmitted        Outcome = "SUBMITTED"
	OutcomeConfirmed        Outcome = "CONFIRMED"
	OutcomeReverted         Outcome = "REVERTED"
	OutcomeSubmissionFailed Outcome = "SUBMISSION_FAILED"
)

// ExecutionResult is logged and optionally published; never retained in
// process state.
type ExecutionResult struct {
	Opp     Opportunity
	Outcome Outcome
	TxHash  string
	Err     string
	Ts      time.Time
}
