package univ3

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
)

// Minimal quoter ABI: quoteExactInputSingle with flat args (V1 quoter).
const quoterABI = `[
 {"inputs":[
   {"internalType":"address","name":"tokenIn","type":"address"},
   {"internalType":"address","name":"tokenOut","type":"address"},
   {"internalType":"uint24","name":"fee","type":"uint24"},
   {"internalType":"uint256","name":"amountIn","type":"uint256"},
   {"internalType":"uint160","name":"sqrtPriceLimitX96","type":"uint160"}],
  "name":"quoteExactInputSingle",
  "outputs":[{"internalType":"uint256","name":"amountOut","type":"uint256"}],
  "stateMutability":"nonpayable","type":"function"}
]`

const factoryABI = `[
 {"inputs":[
   {"internalType":"address","name":"tokenA","type":"address"},
   {"internalType":"address","name":"tokenB","type":"address"},
   {"internalType":"uint24","name":"fee","type":"uint24"}],
  "name":"getPool",
  "outputs":[{"internalType":"address","name":"pool","type":"address"}],
  "stateMutability":"view","type":"function"}
]`

const poolABI = `[
 {"inputs":[],"name":"liquidity","outputs":[{"internalType":"uint128","name":"","type":"uint128"}],"stateMutability":"view","type":"function"}
]`

// Venue quotes and checks liquidity against a Uniswap V3-style deployment.
type Venue struct {
	log     *zap.Logger
	c       core.Caller
	qabi    abi.ABI
	fabi    abi.ABI
	pabi    abi.ABI
	quoter  common.Address
	factory common.Address
}

func New(c core.Caller, quoter, factory common.Address, log *zap.Logger) (*Venue, error) {
	if quoter == (common.Address{}) {
		return nil, fmt.Errorf("quoter address is not configured")
	}
	if factory == (common.Address{}) {
		return nil, fmt.Errorf("factory address is not configured")
	}
	qabi, err := abi.JSON(strings.NewReader(quoterABI))
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}
	fabi, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	pabi, err := abi.JSON(strings.NewReader(poolABI))
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	return &Venue{
		log:     log,
		c:       c,
		qabi:    qabi,
		fabi:    fabi,
		pabi:    pabi,
		quoter:  quoter,
		factory: factory,
	}, nil
}

// AmountOut simulates assetIn -> assetOut for amountIn on the given tier.
func (v *Venue) AmountOut(ctx context.Context, assetIn, assetOut common.Address, feeTier uint32, amountIn *big.Int) (*big.Int, error) {
	input, err := v.qabi.Pack("quoteExactInputSingle",
		assetIn, assetOut, big.NewInt(int64(feeTier)), amountIn, big.NewInt(0))
	if err != nil {
		return nil, fmt.Errorf("pack quoteExactInputSingle: %w", err)
	}
	res, err := v.c.CallContract(ctx, v.quoter, input)
	if err != nil {
		return nil, fmt.Errorf("quote fee %d: %w", feeTier, err)
	}
	outs, err := v.qabi.Methods["quoteExactInputSingle"].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		return nil, fmt.Errorf("decode quote fee %d: %w", feeTier, err)
	}
	out, ok := outs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected quote type %T", outs[0])
	}
	return out, nil
}

// HasLiquidity resolves the (asset, reference, feeTier) pool and accepts it
// when in-range liquidity is non-zero.
func (v *Venue) HasLiquidity(ctx context.Context, asset, reference common.Address, feeTier uint32) (bool, error) {
	pool, err := v.getPool(ctx, asset, reference, feeTier)
	if err != nil {
		return false, err
	}

	input, err := v.pabi.Pack("liquidity")
	if err != nil {
		return false, fmt.Errorf("pack liquidity: %w", err)
	}
	res, err := v.c.CallContract(ctx, pool, input)
	if err != nil {
		return false, fmt.Errorf("call liquidity: %w", err)
	}
	outs, err := v.pabi.Methods["liquidity"].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		return false, fmt.Errorf("decode liquidity: %w", err)
	}
	liq, ok := outs[0].(*big.Int)
	if !ok {
		return false, fmt.Errorf("unexpected liquidity type %T", outs[0])
	}
	return liq.Sign() > 0, nil
}

func (v *Venue) getPool(ctx context.Context, a, b common.Address, feeTier uint32) (common.Address, error) {
	// Factory expects tokenA < tokenB.
	tokenA, tokenB := a, b
	if strings.ToLower(tokenB.Hex()) < strings.ToLower(tokenA.Hex()) {
		tokenA, tokenB = tokenB, tokenA
	}

	input, err := v.fabi.Pack("getPool", tokenA, tokenB, big.NewInt(int64(feeTier)))
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPool: %w", err)
	}
	res, err := v.c.CallContract(ctx, v.factory, input)
	if err != nil {
		return common.Address{}, fmt.Errorf("call getPool(fee=%d): %w", feeTier, err)
	}
	outs, err := v.fabi.Methods["getPool"].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		return common.Address{}, fmt.Errorf("decode getPool(fee=%d): %w", feeTier, err)
	}
	pool := outs[0].(common.Address)
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: fee %d", core.ErrNoPool, feeTier)
	}
	return pool, nil
}
