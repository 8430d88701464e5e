package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/chain"
	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex/univ3"
	v2 "github.com/pttransamdriver/trading-bot-v3/internal/dex/v2"
	"github.com/pttransamdriver/trading-bot-v3/internal/registry"
)

// BuildVenues constructs every configured venue plus the venue -> execution
// router map the settlement contract needs. Every venue, including univ3
// ones, must configure a router: the on-chain executor swaps through it.
func BuildVenues(cfg *config.Config, reg *registry.Registry, client *chain.Client, log *zap.Logger) ([]*core.Venue, map[string]common.Address, error) {
	venues := make([]*core.Venue, 0, len(cfg.Venues))
	routers := make(map[string]common.Address, len(cfg.Venues))

	for _, vc := range cfg.Venues {
		ven := &core.Venue{ID: core.VenueID(vc.ID), FeeTiers: vc.FeeTiers}

		switch vc.Kind {
		case "univ3":
			quoter, err := checked(vc.Quoter)
			if err != nil {
				return nil, nil, fmt.Errorf("venue %s quoter: %w", vc.ID, err)
			}
			factory, err := checked(vc.Factory)
			if err != nil {
				return nil, nil, fmt.Errorf("venue %s factory: %w", vc.ID, err)
			}
			impl, err := univ3.New(client, quoter, factory, log)
			if err != nil {
				return nil, nil, fmt.Errorf("venue %s: %w", vc.ID, err)
			}
			ven.Quoter, ven.Liquidity = impl, impl
			if len(ven.FeeTiers) == 0 {
				ven.FeeTiers = []uint32{500, 3000, 10000}
			}
		case "v2":
			pairFactory, err := checked(vc.PairFactory)
			if err != nil {
				return nil, nil, fmt.Errorf("venue %s pair_factory: %w", vc.ID, err)
			}
			router, err := checked(vc.Router)
			if err != nil {
				return nil, nil, fmt.Errorf("venue %s router: %w", vc.ID, err)
			}
			impl, err := v2.New(client, router, pairFactory,
				reg.Reference.Decimals, cfg.Safety.MinPoolLiquidityUSD, log)
			if err != nil {
				return nil, nil, fmt.Errorf("venue %s: %w", vc.ID, err)
			}
			ven.Quoter, ven.Liquidity = impl, impl
			if len(ven.FeeTiers) == 0 {
				// Constant-product venues have a single implicit fee.
				ven.FeeTiers = []uint32{3000}
			}
		default:
			return nil, nil, fmt.Errorf("venue %s: unknown kind %q", vc.ID, vc.Kind)
		}

		execRouter, err := checked(vc.Router)
		if err != nil {
			return nil, nil, fmt.Errorf("venue %s router: %w", vc.ID, err)
		}
		routers[vc.ID] = execRouter
		venues = append(venues, ven)
	}
	return venues, routers, nil
}

func checked(addr string) (common.Address, error) {
	hexAddr, err := registry.ChecksumAddress(addr)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(hexAddr), nil
}
