package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
chain:
  network: mainnet
  rpc_http: "http://localhost:8545"
contracts:
  executor: "0x0000000000000000000000000000000000000042"
  reference_asset: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.Chain.MaxGasPriceGwei)
	assert.Equal(t, uint64(500_000), cfg.Chain.GasLimit)
	assert.Equal(t, 2000.0, cfg.Chain.NativeUSDFallback)
	assert.Equal(t, 100.0, cfg.Trading.MinProfitUSD)
	assert.Equal(t, 0.2, cfg.Trading.MinPriceDiffPct)
	assert.Equal(t, 0.02, cfg.Trading.MaxPriceImpact)
	assert.Equal(t, 10_000.0, cfg.Trading.NotionalTier1)
	assert.Equal(t, 0.09, cfg.Fees.FlashLoanPct)
	assert.Equal(t, 0.3, cfg.Fees.DexSwapPct)
	assert.Equal(t, 20.0, cfg.Fees.SafetyMarginPct)
	assert.Equal(t, uint64(300_000), cfg.Fees.GasEstimate)
	assert.Equal(t, 3, cfg.Safety.MaxRetries)
	assert.Equal(t, 100_000.0, cfg.Safety.MinPoolLiquidityUSD)
	assert.Equal(t, 3, cfg.Safety.MaxTxPerBlock)
	assert.Equal(t, 12*time.Second, cfg.ScanInterval())
	assert.Equal(t, time.Second, cfg.Backoff())
	assert.Equal(t, time.Second, cfg.RetryDelay())
	assert.Equal(t, "arb:results", cfg.Redis.Stream)
}

func TestLoad_ExplicitValuesSurviveDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+`
trading:
  min_profit_usd: 250
safety:
  max_tx_per_block: 1
`))
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.Trading.MinProfitUSD)
	assert.Equal(t, 1, cfg.Safety.MaxTxPerBlock)
	assert.Equal(t, 3, cfg.Safety.MaxRetries, "untouched fields keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RPC_URL", "http://override:8545")
	t.Setenv("FLASH_LOAN_CONTRACT", "0x0000000000000000000000000000000000000077")
	t.Setenv("WALLET_PK", "deadbeef")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "http://override:8545", cfg.Chain.RPCHTTP)
	assert.Equal(t, "0x0000000000000000000000000000000000000077", cfg.Contracts.Executor)
	assert.Equal(t, "deadbeef", cfg.Chain.WalletPK)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "chain: [not a mapping"))
	assert.Error(t, err)
}

func validatedConfig(t *testing.T) *Config {
	cfg, err := Load(writeConfig(t, minimalYAML+`
assets:
  - {symbol: USDC, address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", decimals: 6, tier: 1, price_source: stable}
  - {symbol: WETH, address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", decimals: 18, tier: 2, price_source: "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419"}
venues:
  - {id: uniswap-v3, kind: univ3, quoter: "0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6", factory: "0x1F98431c8aD98523631AE4a59f267346ea31F984", router: "0xE592427A0AEce92De3Edee1F18E0157C05861564"}
  - {id: sushiswap, kind: v2, router: "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F", pair_factory: "0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac"}
`))
	require.NoError(t, err)
	return cfg
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validatedConfig(t).Validate())
}

func TestValidate_Failures(t *testing.T) {
	cfg := validatedConfig(t)
	cfg.Chain.RPCHTTP = ""
	assert.ErrorContains(t, cfg.Validate(), "rpc_http")

	cfg = validatedConfig(t)
	cfg.Contracts.Executor = ""
	assert.ErrorContains(t, cfg.Validate(), "executor")

	cfg = validatedConfig(t)
	cfg.Contracts.ReferenceAsset = ""
	assert.ErrorContains(t, cfg.Validate(), "reference_asset")

	cfg = validatedConfig(t)
	cfg.Assets = cfg.Assets[:1]
	assert.ErrorContains(t, cfg.Validate(), "two assets")

	cfg = validatedConfig(t)
	cfg.Venues = cfg.Venues[:1]
	assert.ErrorContains(t, cfg.Validate(), "two venues")

	cfg = validatedConfig(t)
	cfg.Trading.MinSlippagePct = 5
	assert.ErrorContains(t, cfg.Validate(), "slippage")
}

func TestValidateReadOnly_NoExecutorRequired(t *testing.T) {
	cfg := validatedConfig(t)
	cfg.Contracts.Executor = ""

	assert.NoError(t, cfg.ValidateReadOnly(), "read-only tools do not submit transactions")
	assert.ErrorContains(t, cfg.Validate(), "executor")

	cfg.Chain.RPCHTTP = ""
	assert.ErrorContains(t, cfg.ValidateReadOnly(), "rpc_http")
}
