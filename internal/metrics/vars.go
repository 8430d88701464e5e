package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	GasPriceGwei = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_gas_price_gwei",
		Help: "Gas price observed at cycle start",
	})

	SkippedCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_skipped_cycles_total",
		Help: "Cycles skipped because gas price exceeded the ceiling",
	})

	CycleErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_cycle_errors_total",
		Help: "Unexpected cycle-level errors followed by backoff",
	})

	LiquidityRejects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_liquidity_rejects_total",
		Help: "Venue/pair combinations rejected by the liquidity floor",
	})

	QuoteErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_quote_errors_total",
		Help: "Failed venue/fee-tier quote simulations (skipped, not fatal)",
	})

	Opportunities = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_opportunities_total",
		Help: "Opportunities that cleared impact, spread and profit gates",
	})

	NetProfitUSD = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_last_net_profit_usd",
		Help: "Net profit estimate of the last accepted opportunity",
	})

	Executions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_executions_total",
		Help: "Execution dispatches by outcome",
	}, []string{"outcome"})

	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_cycle_duration_seconds",
		Help:    "Full scan cycle duration",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		GasPriceGwei,
		SkippedCycles,
		CycleErrors,
		LiquidityRejects,
		QuoteErrors,
		Opportunities,
		NetProfitUSD,
		Executions,
		CycleDuration,
	)
}
