package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pttransamdriver/trading-bot-v3/internal/bot"
	"github.com/pttransamdriver/trading-bot-v3/internal/chain"
	"github.com/pttransamdriver/trading-bot-v3/internal/config"
	"github.com/pttransamdriver/trading-bot-v3/internal/detector"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
	"github.com/pttransamdriver/trading-bot-v3/internal/execution"
	"github.com/pttransamdriver/trading-bot-v3/internal/feed"
	"github.com/pttransamdriver/trading-bot-v3/internal/liquidity"
	"github.com/pttransamdriver/trading-bot-v3/internal/metrics"
	"github.com/pttransamdriver/trading-bot-v3/internal/profit"
	"github.com/pttransamdriver/trading-bot-v3/internal/quotes"
	"github.com/pttransamdriver/trading-bot-v3/internal/registry"
	"github.com/pttransamdriver/trading-bot-v3/internal/settlement"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	return cfg.Build()
}

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config invalid", zap.Error(err))
	}

	reg, err := registry.New(cfg)
	if err != nil {
		logger.Fatal("asset registry invalid", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Warn("received signal, shutting down...")
		cancel()
	}()

	metrics.Serve(ctx, cfg.Monitor.MetricsAddr, nil, logger)

	client, err := chain.Dial(cfg.Chain.RPCHTTP)
	if err != nil {
		logger.Fatal("rpc dial failed", zap.Error(err))
	}
	oracle, err := chain.NewChainlinkFeed(client)
	if err != nil {
		logger.Fatal("oracle init failed", zap.Error(err))
	}

	venues, routers, err := dex.BuildVenues(cfg, reg, client, logger)
	if err != nil {
		logger.Fatal("venue init failed", zap.Error(err))
	}
	for _, v := range venues {
		core.Register(v)
	}

	executorAddr, err := registry.ChecksumAddress(cfg.Contracts.Executor)
	if err != nil {
		logger.Fatal("bad executor address", zap.Error(err))
	}
	contract, err := settlement.New(client.Eth(), common.HexToAddress(executorAddr), routers, cfg.Chain.WalletPK, logger)
	if err != nil {
		logger.Fatal("settlement binding init failed", zap.Error(err))
	}

	var pub *feed.Publisher
	if cfg.Redis.Addr != "" {
		pub = feed.NewPublisher(cfg)
		defer pub.Close()
		logger.Info("result feed enabled", zap.String("stream", cfg.Redis.Stream))
	}

	var resultSink execution.Publisher
	if pub != nil {
		resultSink = pub
	}

	b := bot.New(bot.Deps{
		Cfg:        cfg,
		Log:        logger,
		Registry:   reg,
		Venues:     venues,
		Filter:     liquidity.NewFilter(reg.Reference.Address, logger),
		Collector:  quotes.NewCollector(logger),
		Evaluator:  detector.NewEvaluator(cfg, logger),
		Model:      profit.NewModel(cfg),
		Prices:     profit.NewPriceResolver(oracle, logger),
		GasRef:     chain.NewGasRefresher(client, oracle, cfg, logger),
		Dispatcher: execution.NewDispatcher(cfg, contract, resultSink, logger),
		Publisher:  pub,
	})
	b.Run(ctx)
}
