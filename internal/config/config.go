package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AssetCfg struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals int    `yaml:"decimals"`
	// Tier: 1 = stable, 2 = major, 3 = volatile.
	Tier int `yaml:"tier"`
	// PriceSource: "stable" for 1:1 USD assets, otherwise a Chainlink
	// aggregator address.
	PriceSource string `yaml:"price_source"`
}

type VenueCfg struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"` // "univ3" or "v2"
	// univ3 venues.
	Quoter  string `yaml:"quoter"`
	Factory string `yaml:"factory"`
	// v2 venues.
	Router      string   `yaml:"router"`
	PairFactory string   `yaml:"pair_factory"`
	FeeTiers    []uint32 `yaml:"fee_tiers"`
}

type Config struct {
	Chain struct {
		Network         string  `yaml:"network"`
		RPCHTTP         string  `yaml:"rpc_http"`
		WalletPK        string  `yaml:"wallet_pk"`
		MaxGasPriceGwei float64 `yaml:"max_gas_price_gwei"`
		GasLimit        uint64  `yaml:"gas_limit"`
		PriorityFeeGwei float64 `yaml:"priority_fee_gwei"`
		// NativeUSDFallback is used when the native-asset oracle is down.
		NativeUSDFallback float64 `yaml:"native_usd_fallback"`
	} `yaml:"chain"`

	Trading struct {
		MinProfitUSD    float64 `yaml:"min_profit_usd"`
		MaxLoanUSD      float64 `yaml:"max_loan_usd"`
		MinPriceDiffPct float64 `yaml:"min_price_diff_pct"`
		MinSlippagePct  float64 `yaml:"min_slippage_pct"`
		MaxSlippagePct  float64 `yaml:"max_slippage_pct"`
		MaxPriceImpact  float64 `yaml:"max_price_impact"` // fraction, e.g. 0.02
		// Probe notionals in whole input-asset units, by input tier.
		NotionalTier1 float64 `yaml:"notional_tier1"`
		NotionalTier2 float64 `yaml:"notional_tier2"`
		NotionalTier3 float64 `yaml:"notional_tier3"`
	} `yaml:"trading"`

	Fees struct {
		FlashLoanPct    float64 `yaml:"flash_loan_pct"`
		DexSwapPct      float64 `yaml:"dex_swap_pct"`
		SafetyMarginPct float64 `yaml:"safety_margin_pct"`
		GasEstimate     uint64  `yaml:"gas_estimate"`
	} `yaml:"fees"`

	Safety struct {
		MaxRetries          int     `yaml:"max_retries"`
		RetryDelayMs        int     `yaml:"retry_delay_ms"`
		MinPoolLiquidityUSD float64 `yaml:"min_pool_liquidity_usd"`
		MaxTxPerBlock       int     `yaml:"max_tx_per_block"`
	} `yaml:"safety"`

	Monitor struct {
		ScanIntervalMs int    `yaml:"scan_interval_ms"`
		BackoffMs      int    `yaml:"backoff_ms"`
		MetricsAddr    string `yaml:"metrics_addr"`
	} `yaml:"monitor"`

	Redis struct {
		Addr     string `yaml:"addr"`
		DB       int    `yaml:"db"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Stream   string `yaml:"stream"`
	} `yaml:"redis"`

	Contracts struct {
		Executor       string `yaml:"executor"`
		NativeUSDFeed  string `yaml:"native_usd_feed"`
		ReferenceAsset string `yaml:"reference_asset"`
	} `yaml:"contracts"`

	Assets []AssetCfg `yaml:"assets"`
	Venues []VenueCfg `yaml:"venues"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if v := os.Getenv("RPC_URL"); v != "" {
		c.Chain.RPCHTTP = v
	}
	if v := os.Getenv("FLASH_LOAN_CONTRACT"); v != "" {
		c.Contracts.Executor = v
	}
	if v := os.Getenv("WALLET_PK"); v != "" {
		c.Chain.WalletPK = v
	}

	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Chain.MaxGasPriceGwei == 0 {
		c.Chain.MaxGasPriceGwei = 100
	}
	if c.Chain.GasLimit == 0 {
		c.Chain.GasLimit = 500_000
	}
	if c.Chain.PriorityFeeGwei == 0 {
		c.Chain.PriorityFeeGwei = 1.5
	}
	if c.Chain.NativeUSDFallback == 0 {
		c.Chain.NativeUSDFallback = 2000
	}
	if c.Trading.MinProfitUSD == 0 {
		c.Trading.MinProfitUSD = 100
	}
	if c.Trading.MaxLoanUSD == 0 {
		c.Trading.MaxLoanUSD = 1_000_000
	}
	if c.Trading.MinPriceDiffPct == 0 {
		c.Trading.MinPriceDiffPct = 0.2
	}
	if c.Trading.MinSlippagePct == 0 {
		c.Trading.MinSlippagePct = 0.1
	}
	if c.Trading.MaxSlippagePct == 0 {
		c.Trading.MaxSlippagePct = 2.0
	}
	if c.Trading.MaxPriceImpact == 0 {
		c.Trading.MaxPriceImpact = 0.02
	}
	if c.Trading.NotionalTier1 == 0 {
		c.Trading.NotionalTier1 = 10_000
	}
	if c.Trading.NotionalTier2 == 0 {
		c.Trading.NotionalTier2 = 1000
	}
	if c.Trading.NotionalTier3 == 0 {
		c.Trading.NotionalTier3 = 100
	}
	if c.Fees.FlashLoanPct == 0 {
		c.Fees.FlashLoanPct = 0.09
	}
	if c.Fees.DexSwapPct == 0 {
		c.Fees.DexSwapPct = 0.3
	}
	if c.Fees.SafetyMarginPct == 0 {
		c.Fees.SafetyMarginPct = 20
	}
	if c.Fees.GasEstimate == 0 {
		c.Fees.GasEstimate = 300_000
	}
	if c.Safety.MaxRetries == 0 {
		c.Safety.MaxRetries = 3
	}
	if c.Safety.RetryDelayMs == 0 {
		c.Safety.RetryDelayMs = 1000
	}
	if c.Safety.MinPoolLiquidityUSD == 0 {
		c.Safety.MinPoolLiquidityUSD = 100_000
	}
	if c.Safety.MaxTxPerBlock == 0 {
		c.Safety.MaxTxPerBlock = 3
	}
	if c.Monitor.ScanIntervalMs == 0 {
		c.Monitor.ScanIntervalMs = 12_000
	}
	if c.Monitor.BackoffMs == 0 {
		c.Monitor.BackoffMs = 1000
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "arb:results"
	}
}

// Validate checks the startup-fatal requirements. Anything here failing
// means the process must not start.
func (c *Config) Validate() error {
	if c.Contracts.Executor == "" {
		return fmt.Errorf("contracts.executor is required (or FLASH_LOAN_CONTRACT env)")
	}
	return c.ValidateReadOnly()
}

// ValidateReadOnly checks everything except the executor contract address,
// which tools that never submit transactions do not need.
func (c *Config) ValidateReadOnly() error {
	if c.Chain.RPCHTTP == "" {
		return fmt.Errorf("chain.rpc_http is required")
	}
	if c.Contracts.ReferenceAsset == "" {
		return fmt.Errorf("contracts.reference_asset is required")
	}
	if len(c.Assets) < 2 {
		return fmt.Errorf("at least two assets are required, got %d", len(c.Assets))
	}
	if len(c.Venues) < 2 {
		return fmt.Errorf("at least two venues are required, got %d", len(c.Venues))
	}
	if c.Trading.MinSlippagePct > c.Trading.MaxSlippagePct {
		return fmt.Errorf("trading.min_slippage_pct %.2f exceeds max %.2f",
			c.Trading.MinSlippagePct, c.Trading.MaxSlippagePct)
	}
	return nil
}

func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Monitor.ScanIntervalMs) * time.Millisecond
}

func (c *Config) Backoff() time.Duration {
	return time.Duration(c.Monitor.BackoffMs) * time.Millisecond
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Safety.RetryDelayMs) * time.Millisecond
}
