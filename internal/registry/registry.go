package registry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pttransamdriver/trading-bot-v3/internal/config"
)

const (
	TierStable   = 1
	TierMajor    = 2
	TierVolatile = 3
)

// Asset is immutable after startup.
type Asset struct {
	Symbol   string
	Address  common.Address
	Decimals int
	Tier     int
	// Stable assets are valued 1:1 to USD; others carry a Chainlink feed.
	Stable    bool
	PriceFeed common.Address
}

// Notional converts whole units into the asset's smallest unit.
func (a Asset) Notional(units float64) *big.Int {
	f := new(big.Float).SetFloat64(units)
	for i := 0; i < a.Decimals; i++ {
		f.Mul(f, big.NewFloat(10))
	}
	out, _ := f.Int(nil)
	return out
}

// Registry holds the static asset set plus the reference stable asset
// that anchors liquidity pools and USD conversion.
type Registry struct {
	Assets    []Asset
	Reference Asset
	byAddr    map[common.Address]Asset
}

func New(cfg *config.Config) (*Registry, error) {
	r := &Registry{byAddr: make(map[common.Address]Asset, len(cfg.Assets))}

	for _, ac := range cfg.Assets {
		a, err := buildAsset(ac)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", ac.Symbol, err)
		}
		if _, dup := r.byAddr[a.Address]; dup {
			return nil, fmt.Errorf("asset %s: duplicate address %s", ac.Symbol, a.Address.Hex())
		}
		r.byAddr[a.Address] = a
		r.Assets = append(r.Assets, a)
	}

	refHex, err := ChecksumAddress(cfg.Contracts.ReferenceAsset)
	if err != nil {
		return nil, fmt.Errorf("reference asset: %w", err)
	}
	ref, ok := r.byAddr[common.HexToAddress(refHex)]
	if !ok {
		return nil, fmt.Errorf("reference asset %s is not in the asset list", refHex)
	}
	if !ref.Stable {
		return nil, fmt.Errorf("reference asset %s must be a stable asset", ref.Symbol)
	}
	r.Reference = ref
	return r, nil
}

func buildAsset(ac config.AssetCfg) (Asset, error) {
	if ac.Symbol == "" {
		return Asset{}, fmt.Errorf("missing symbol")
	}
	hexAddr, err := ChecksumAddress(ac.Address)
	if err != nil {
		return Asset{}, fmt.Errorf("address: %w", err)
	}
	addr := common.HexToAddress(hexAddr)
	if addr == (common.Address{}) {
		return Asset{}, fmt.Errorf("zero address")
	}
	if ac.Decimals <= 0 || ac.Decimals > 36 {
		return Asset{}, fmt.Errorf("bad decimals %d", ac.Decimals)
	}
	if ac.Tier < TierStable || ac.Tier > TierVolatile {
		return Asset{}, fmt.Errorf("bad tier %d", ac.Tier)
	}

	a := Asset{
		Symbol:   ac.Symbol,
		Address:  addr,
		Decimals: ac.Decimals,
		Tier:     ac.Tier,
	}
	switch ac.PriceSource {
	case "", "stable":
		if ac.PriceSource == "" && ac.Tier != TierStable {
			return Asset{}, fmt.Errorf("non-stable asset needs a price_source feed")
		}
		a.Stable = true
	default:
		feedHex, err := ChecksumAddress(ac.PriceSource)
		if err != nil {
			return Asset{}, fmt.Errorf("price_source: %w", err)
		}
		a.PriceFeed = common.HexToAddress(feedHex)
	}
	return a, nil
}

func (r *Registry) ByAddress(addr common.Address) (Asset, bool) {
	a, ok := r.byAddr[addr]
	return a, ok
}
