// Command rescue sweeps a stranded token balance out of the executor
// contract. Owner-only; run it by hand, never from the scan loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/chain"
	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/registry"
	"github.com/pttransamdriver/trading-bot-v3/internal/settlement"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to config file")
	token := flag.String("token", "", "address of the token to recover")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "usage: rescue -token 0x... [-config config.yaml]")
		os.Exit(2)
	}
	tokenHex, err := registry.ChecksumAddress(*token)
	if err != nil {
		fatal("bad token address", err)
	}
	tokenAddr := common.HexToAddress(tokenHex)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal("load config", err)
	}
	if cfg.Chain.WalletPK == "" {
		fatal("wallet key", fmt.Errorf("chain.wallet_pk is required (or WALLET_PK env)"))
	}
	executorHex, err := registry.ChecksumAddress(cfg.Contracts.Executor)
	if err != nil {
		fatal("bad executor address", err)
	}
	executor := common.HexToAddress(executorHex)

	client, err := chain.Dial(cfg.Chain.RPCHTTP)
	if err != nil {
		fatal("dial rpc", err)
	}

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	binding, err := settlement.New(client.Eth(), executor, map[string]common.Address{}, cfg.Chain.WalletPK, log)
	if err != nil {
		fatal("bind executor", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		fatal("gas price", err)
	}

	opts := settlement.TxOptions{
		GasLimit:     cfg.Chain.GasLimit,
		MaxFeePerGas: gasPrice,
		PriorityFee:  chain.GweiToWei(cfg.Chain.PriorityFeeGwei),
	}
	txHash, err := binding.RescueTokens(ctx, tokenAddr, opts)
	if err != nil {
		fatal("rescue", err)
	}
	log.Info("rescue submitted", zap.String("tx", txHash), zap.String("token", tokenAddr.Hex()))

	if err := binding.WaitConfirmed(ctx, txHash); err != nil {
		fatal("confirm", err)
	}
	log.Info("rescue confirmed", zap.String("tx", txHash))
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
