package registry

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pttransamdriver/trading-bot-v3/internal/config"
)

const (
	usdcAddr = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	wethAddr = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	ethFeed  = "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419"
)

func validConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Contracts.ReferenceAsset = usdcAddr
	cfg.Assets = []config.AssetCfg{
		{Symbol: "USDC", Address: usdcAddr, Decimals: 6, Tier: 1, PriceSource: "stable"},
		{Symbol: "WETH", Address: wethAddr, Decimals: 18, Tier: 2, PriceSource: ethFeed},
	}
	return cfg
}

func TestNew_Valid(t *testing.T) {
	reg, err := New(validConfig())
	require.NoError(t, err)

	require.Len(t, reg.Assets, 2)
	assert.Equal(t, "USDC", reg.Reference.Symbol)
	assert.True(t, reg.Reference.Stable)

	weth, ok := reg.ByAddress(common.HexToAddress(wethAddr))
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress(ethFeed), weth.PriceFeed)
	assert.False(t, weth.Stable)
}

func TestNew_AcceptsLowercaseAddresses(t *testing.T) {
	cfg := validConfig()
	cfg.Assets[0].Address = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

	reg, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(usdcAddr), reg.Assets[0].Address)
}

func TestNew_RejectsBadChecksum(t *testing.T) {
	cfg := validConfig()
	cfg.Assets[0].Address = "0xa0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"

	_, err := New(cfg)
	assert.ErrorContains(t, err, "checksum")
}

func TestNew_RejectsDuplicateAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Assets[1].Address = usdcAddr

	_, err := New(cfg)
	assert.ErrorContains(t, err, "duplicate")
}

func TestNew_RejectsZeroAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Assets[1].Address = "0x0000000000000000000000000000000000000000"

	_, err := New(cfg)
	assert.ErrorContains(t, err, "zero address")
}

func TestNew_RejectsBadDecimalsAndTier(t *testing.T) {
	cfg := validConfig()
	cfg.Assets[1].Decimals = 0
	_, err := New(cfg)
	assert.ErrorContains(t, err, "decimals")

	cfg = validConfig()
	cfg.Assets[1].Tier = 7
	_, err = New(cfg)
	assert.ErrorContains(t, err, "tier")
}

func TestNew_NonStableNeedsFeed(t *testing.T) {
	cfg := validConfig()
	cfg.Assets[1].PriceSource = ""

	_, err := New(cfg)
	assert.ErrorContains(t, err, "price_source")
}

func TestNew_ReferenceMustBeListed(t *testing.T) {
	cfg := validConfig()
	cfg.Contracts.ReferenceAsset = "0xdAC17F958D2ee523a2206206994597C13D831ec7"

	_, err := New(cfg)
	assert.ErrorContains(t, err, "not in the asset list")
}

func TestNew_ReferenceMustBeStable(t *testing.T) {
	cfg := validConfig()
	cfg.Contracts.ReferenceAsset = wethAddr

	_, err := New(cfg)
	assert.ErrorContains(t, err, "stable")
}

func TestAsset_Notional(t *testing.T) {
	usdc := Asset{Symbol: "USDC", Decimals: 6}
	assert.Zero(t, big.NewInt(10_000_000_000).Cmp(usdc.Notional(10_000)))

	weth := Asset{Symbol: "WETH", Decimals: 18}
	want := new(big.Int).Mul(big.NewInt(1000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	assert.Zero(t, want.Cmp(weth.Notional(1000)))
}
