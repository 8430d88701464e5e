package v2

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/chain"
	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
)

const routerABI = `[
 {"inputs":[{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"address[]","name":"path","type":"address[]"}],"name":"getAmountsOut","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"view","type":"function"}
]`

const factoryABI = `[
 {"inputs":[{"internalType":"address","name":"tokenA","type":"address"},{"internalType":"address","name":"tokenB","type":"address"}],"name":"getPair","outputs":[{"internalType":"address","name":"pair","type":"address"}],"stateMutability":"view","type":"function"}
]`

const pairABI = `[
 {"inputs":[],"name":"getReserves","outputs":[{"internalType":"uint112","name":"reserve0","type":"uint112"},{"internalType":"uint112","name":"reserve1","type":"uint112"},{"internalType":"uint32","name":"blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"},
 {"inputs":[],"name":"token0","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

// Venue quotes through a constant-product router. Fee tiers do not apply;
// the single pool fee is baked into getAmountsOut, so any requested tier
// maps onto the same pool.
type Venue struct {
	log         *zap.Logger
	c           core.Caller
	rabi        abi.ABI
	fabi        abi.ABI
	pabi        abi.ABI
	router      common.Address
	factory     common.Address
	refDecimals int
	minRefUSD   float64
}

func New(c core.Caller, router, factory common.Address, refDecimals int, minRefUSD float64, log *zap.Logger) (*Venue, error) {
	if router == (common.Address{}) {
		return nil, fmt.Errorf("router address is not configured")
	}
	if factory == (common.Address{}) {
		return nil, fmt.Errorf("pair factory address is not configured")
	}
	rabi, err := abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	fabi, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	pabi, err := abi.JSON(strings.NewReader(pairABI))
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}
	return &Venue{
		log:         log,
		c:           c,
		rabi:        rabi,
		fabi:        fabi,
		pabi:        pabi,
		router:      router,
		factory:     factory,
		refDecimals: refDecimals,
		minRefUSD:   minRefUSD,
	}, nil
}

func (v *Venue) AmountOut(ctx context.Context, assetIn, assetOut common.Address, _ uint32, amountIn *big.Int) (*big.Int, error) {
	path := []common.Address{assetIn, assetOut}
	input, err := v.rabi.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("pack getAmountsOut: %w", err)
	}
	res, err := v.c.CallContract(ctx, v.router, input)
	if err != nil {
		return nil, fmt.Errorf("call getAmountsOut: %w", err)
	}
	outs, err := v.rabi.Methods["getAmountsOut"].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		return nil, errors.New("decode getAmountsOut")
	}
	amounts := outs[0].([]*big.Int)
	if len(amounts) < 2 {
		return nil, errors.New("bad amounts length")
	}
	return amounts[len(amounts)-1], nil
}

// HasLiquidity accepts the (asset, reference) pair when the reference-side
// reserve clears the USD floor and the asset side is non-empty.
func (v *Venue) HasLiquidity(ctx context.Context, asset, reference common.Address, _ uint32) (bool, error) {
	pair, err := v.getPair(ctx, asset, reference)
	if err != nil {
		return false, err
	}

	token0, err := v.pairToken0(ctx, pair)
	if err != nil {
		return false, err
	}

	input, err := v.pabi.Pack("getReserves")
	if err != nil {
		return false, fmt.Errorf("pack getReserves: %w", err)
	}
	res, err := v.c.CallContract(ctx, pair, input)
	if err != nil {
		return false, fmt.Errorf("call getReserves: %w", err)
	}
	outs, err := v.pabi.Methods["getReserves"].Outputs.Unpack(res)
	if err != nil || len(outs) < 2 {
		return false, fmt.Errorf("decode getReserves: %w", err)
	}
	r0, ok0 := outs[0].(*big.Int)
	r1, ok1 := outs[1].(*big.Int)
	if !ok0 || !ok1 {
		return false, errors.New("unexpected reserve types")
	}

	refReserve, other := r0, r1
	if token0 != reference {
		refReserve, other = r1, r0
	}
	if other.Sign() == 0 {
		return false, nil
	}
	return chain.ToFloat(refReserve, v.refDecimals) >= v.minRefUSD, nil
}

func (v *Venue) getPair(ctx context.Context, a, b common.Address) (common.Address, error) {
	input, err := v.fabi.Pack("getPair", a, b)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPair: %w", err)
	}
	res, err := v.c.CallContract(ctx, v.factory, input)
	if err != nil {
		return common.Address{}, fmt.Errorf("call getPair: %w", err)
	}
	outs, err := v.fabi.Methods["getPair"].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		return common.Address{}, fmt.Errorf("decode getPair: %w", err)
	}
	pair := outs[0].(common.Address)
	if pair == (common.Address{}) {
		return common.Address{}, core.ErrNoPool
	}
	return pair, nil
}

func (v *Venue) pairToken0(ctx context.Context, pair common.Address) (common.Address, error) {
	input, err := v.pabi.Pack("token0")
	if err != nil {
		return common.Address{}, fmt.Errorf("pack token0: %w", err)
	}
	res, err := v.c.CallContract(ctx, pair, input)
	if err != nil {
		return common.Address{}, fmt.Errorf("call token0: %w", err)
	}
	outs, err := v.pabi.Methods["token0"].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		return common.Address{}, fmt.Errorf("decode token0: %w", err)
	}
	return outs[0].(common.Address), nil
}
