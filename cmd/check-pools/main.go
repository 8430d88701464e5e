package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/chain"
	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex"
	"github.com/pttransamdriver/trading-bot-v3/internal/registry"
)

// Prints, per asset and venue, which configured fee tiers have a pool
// against the reference asset with acceptable depth. Useful before
// enabling a new asset or venue in the scanner config.
func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	if err := cfg.ValidateReadOnly(); err != nil {
		panic(err)
	}
	reg, err := registry.New(cfg)
	if err != nil {
		panic(err)
	}

	client, err := chain.Dial(cfg.Chain.RPCHTTP)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	log := zap.NewNop()
	venues, _, err := dex.BuildVenues(cfg, reg, client, log)
	if err != nil {
		panic(err)
	}

	fmt.Printf("RPC: %s\n", cfg.Chain.RPCHTTP)
	fmt.Printf("Reference: %s (%s)\n\n", reg.Reference.Symbol, reg.Reference.Address.Hex())

	for _, a := range reg.Assets {
		if a.Address == reg.Reference.Address {
			continue
		}
		fmt.Printf("%-8s", a.Symbol)
		for _, ven := range venues {
			var present []uint32
			for _, fee := range ven.FeeTiers {
				ok, err := ven.Liquidity.HasLiquidity(ctx, a.Address, reg.Reference.Address, fee)
				if err == nil && ok {
					present = append(present, fee)
				}
			}
			if len(present) == 0 {
				fmt.Printf("  %s: none", ven.ID)
			} else {
				fmt.Printf("  %s: %v", ven.ID, present)
			}
		}
		fmt.Println()
	}
}
