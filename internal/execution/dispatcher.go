package execution

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/metrics"
	"github.com/pttransamdriver/trading-bot-v3/internal/settlement"
	"github.com/pttransamdriver/trading-bot-v3/internal/types"
)

// Publisher receives execution outcomes for offline analysis. May be nil.
type Publisher interface {
	PublishResult(ctx context.Context, res types.ExecutionResult) error
}

// Dispatcher submits accepted opportunities to the settlement contract.
// Dispatch is strictly serialized: one in-flight execution at a time, so
// two near-simultaneous submissions never race on the same pool state.
type Dispatcher struct {
	cfg      *config.Config
	contract settlement.Contract
	pub      Publisher
	log      *zap.Logger
}

func NewDispatcher(cfg *config.Config, contract settlement.Contract, pub Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, contract: contract, pub: pub, log: log}
}

// SlippagePct derives the tolerated slippage from the spread magnitude:
// wider spreads absorb more slippage, clamped to the configured bounds.
func (d *Dispatcher) SlippagePct(spreadPct float64) float64 {
	s := spreadPct / 2
	if s < d.cfg.Trading.MinSlippagePct {
		s = d.cfg.Trading.MinSlippagePct
	}
	if s > d.cfg.Trading.MaxSlippagePct {
		s = d.cfg.Trading.MaxSlippagePct
	}
	return s
}

// DispatchAll processes opportunities one at a time, capped at the
// configured per-block transaction count. Failures are logged and the next
// opportunity proceeds; nothing here aborts the cycle.
func (d *Dispatcher) DispatchAll(ctx context.Context, opps []types.Opportunity, gas types.GasEnvironment) {
	sent := 0
	for _, opp := range opps {
		if ctx.Err() != nil {
			return
		}
		if sent >= d.cfg.Safety.MaxTxPerBlock {
			d.log.Info("per-block transaction cap reached, deferring remaining opportunities",
				zap.Int("cap", d.cfg.Safety.MaxTxPerBlock),
				zap.Int("deferred", len(opps)-sent))
			return
		}
		if d.Dispatch(ctx, opp, gas) {
			sent++
		}
	}
}

// Dispatch submits one opportunity and waits for its confirmation. Returns
// true when a transaction was actually submitted.
func (d *Dispatcher) Dispatch(ctx context.Context, opp types.Opportunity, gas types.GasEnvironment) bool {
	opp.SlippagePct = d.SlippagePct(opp.GrossSpreadPct)

	opts := settlement.TxOptions{
		GasLimit:     d.cfg.Chain.GasLimit,
		MaxFeePerGas: gas.CeilingWei,
		PriorityFee:  gas.TipWei,
	}

	d.log.Info("dispatching opportunity",
		zap.String("asset_in", opp.AssetIn.Hex()),
		zap.String("asset_out", opp.AssetOut.Hex()),
		zap.String("buy_venue", opp.BuyVenue),
		zap.String("sell_venue", opp.SellVenue),
		zap.Uint32("fee_tier", opp.FeeTier),
		zap.Float64("net_usd", opp.NetProfitUSD),
		zap.Float64("slippage_pct", opp.SlippagePct))

	txHash, err := d.submit(ctx, opp, opts)
	if err != nil {
		d.record(ctx, types.ExecutionResult{
			Opp: opp, Outcome: types.OutcomeSubmissionFailed, Err: err.Error(), Ts: time.Now(),
		})
		d.log.Warn("submission failed", zap.Error(err))
		return false
	}
	d.record(ctx, types.ExecutionResult{
		Opp: opp, Outcome: types.OutcomeSubmitted, TxHash: txHash, Ts: time.Now(),
	})

	if err := d.contract.WaitConfirmed(ctx, txHash); err != nil {
		outcome := types.OutcomeSubmissionFailed
		if errors.Is(err, settlement.ErrReverted) {
			outcome = types.OutcomeReverted
		}
		d.record(ctx, types.ExecutionResult{
			Opp: opp, Outcome: outcome, TxHash: txHash, Err: err.Error(), Ts: time.Now(),
		})
		d.log.Warn("execution failed", zap.String("tx", txHash), zap.Error(err))
		return true
	}

	d.record(ctx, types.ExecutionResult{
		Opp: opp, Outcome: types.OutcomeConfirmed, TxHash: txHash, Ts: time.Now(),
	})
	d.log.Info("execution confirmed", zap.String("tx", txHash), zap.Float64("net_usd", opp.NetProfitUSD))
	return true
}

// submit retries transient submission errors a bounded number of times.
func (d *Dispatcher) submit(ctx context.Context, opp types.Opportunity, opts settlement.TxOptions) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.Safety.MaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(d.cfg.RetryDelay()):
			}
		}
		txHash, err := d.contract.ExecuteArbitrage(ctx, opp, opts)
		if err == nil {
			return txHash, nil
		}
		lastErr = err
		d.log.Debug("submission attempt failed",
			zap.Int("attempt", attempt), zap.Error(err))
	}
	return "", lastErr
}

func (d *Dispatcher) record(ctx context.Context, res types.ExecutionResult) {
	metrics.Executions.WithLabelValues(string(res.Outcome)).Inc()
	if d.pub == nil {
		return
	}
	if err := d.pub.PublishResult(ctx, res); err != nil {
		d.log.Warn("result publish failed", zap.Error(err))
	}
}
