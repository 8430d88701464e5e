package univ3

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/dex/core"
)

var (
	quoterAddr  = common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6")
	factoryAddr = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	poolAddr    = common.HexToAddress("0x0000000000000000000000000000000000000A01")
	usdc        = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	weth        = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

// routingCaller dispatches by target address and records the last input
// per target.
type routingCaller struct {
	responses map[common.Address][]byte
	errs      map[common.Address]error
	inputs    map[common.Address][]byte
}

func (r *routingCaller) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	if r.inputs == nil {
		r.inputs = map[common.Address][]byte{}
	}
	r.inputs[to] = data
	if err := r.errs[to]; err != nil {
		return nil, err
	}
	return r.responses[to], nil
}

func mustABI(t *testing.T, raw string) abi.ABI {
	t.Helper()
	a, err := abi.JSON(strings.NewReader(raw))
	require.NoError(t, err)
	return a
}

func packOutputs(t *testing.T, a abi.ABI, method string, vals ...interface{}) []byte {
	t.Helper()
	out, err := a.Methods[method].Outputs.Pack(vals...)
	require.NoError(t, err)
	return out
}

func TestNew_Validation(t *testing.T) {
	log := zap.NewNop()

	_, err := New(&routingCaller{}, common.Address{}, factoryAddr, log)
	assert.Error(t, err)

	_, err = New(&routingCaller{}, quoterAddr, common.Address{}, log)
	assert.Error(t, err)

	v, err := New(&routingCaller{}, quoterAddr, factoryAddr, log)
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestAmountOut(t *testing.T) {
	qabi := mustABI(t, quoterABI)
	caller := &routingCaller{responses: map[common.Address][]byte{
		quoterAddr: packOutputs(t, qabi, "quoteExactInputSingle", big.NewInt(10_030_000_000)),
	}}
	v, err := New(caller, quoterAddr, factoryAddr, zap.NewNop())
	require.NoError(t, err)

	out, err := v.AmountOut(context.Background(), usdc, weth, 3000, big.NewInt(10_000_000_000))

	require.NoError(t, err)
	assert.Zero(t, big.NewInt(10_030_000_000).Cmp(out))

	// The call carries the flat V1 argument layout.
	args, err := qabi.Methods["quoteExactInputSingle"].Inputs.Unpack(caller.inputs[quoterAddr][4:])
	require.NoError(t, err)
	assert.Equal(t, usdc, args[0])
	assert.Equal(t, weth, args[1])
	assert.Zero(t, big.NewInt(3000).Cmp(args[2].(*big.Int)))
}

func TestAmountOut_CallFailure(t *testing.T) {
	caller := &routingCaller{errs: map[common.Address]error{quoterAddr: errors.New("execution reverted")}}
	v, err := New(caller, quoterAddr, factoryAddr, zap.NewNop())
	require.NoError(t, err)

	_, err = v.AmountOut(context.Background(), usdc, weth, 500, big.NewInt(1))

	assert.Error(t, err)
}

func TestHasLiquidity_DeepPool(t *testing.T) {
	fabi := mustABI(t, factoryABI)
	pabi := mustABI(t, poolABI)
	caller := &routingCaller{responses: map[common.Address][]byte{
		factoryAddr: packOutputs(t, fabi, "getPool", poolAddr),
		poolAddr:    packOutputs(t, pabi, "liquidity", big.NewInt(1_000_000)),
	}}
	v, err := New(caller, quoterAddr, factoryAddr, zap.NewNop())
	require.NoError(t, err)

	ok, err := v.HasLiquidity(context.Background(), weth, usdc, 3000)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasLiquidity_EmptyPool(t *testing.T) {
	fabi := mustABI(t, factoryABI)
	pabi := mustABI(t, poolABI)
	caller := &routingCaller{responses: map[common.Address][]byte{
		factoryAddr: packOutputs(t, fabi, "getPool", poolAddr),
		poolAddr:    packOutputs(t, pabi, "liquidity", big.NewInt(0)),
	}}
	v, err := New(caller, quoterAddr, factoryAddr, zap.NewNop())
	require.NoError(t, err)

	ok, err := v.HasLiquidity(context.Background(), weth, usdc, 3000)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasLiquidity_NoPool(t *testing.T) {
	fabi := mustABI(t, factoryABI)
	caller := &routingCaller{responses: map[common.Address][]byte{
		factoryAddr: packOutputs(t, fabi, "getPool", common.Address{}),
	}}
	v, err := New(caller, quoterAddr, factoryAddr, zap.NewNop())
	require.NoError(t, err)

	_, err = v.HasLiquidity(context.Background(), weth, usdc, 3000)

	assert.ErrorIs(t, err, core.ErrNoPool)
}

func TestGetPool_OrdersTokens(t *testing.T) {
	fabi := mustABI(t, factoryABI)
	caller := &routingCaller{responses: map[common.Address][]byte{
		factoryAddr: packOutputs(t, fabi, "getPool", poolAddr),
	}}
	v, err := New(caller, quoterAddr, factoryAddr, zap.NewNop())
	require.NoError(t, err)

	// weth > usdc lexically; the factory still must see tokenA < tokenB.
	_, err = v.getPool(context.Background(), weth, usdc, 500)
	require.NoError(t, err)

	args, err := fabi.Methods["getPool"].Inputs.Unpack(caller.inputs[factoryAddr][4:])
	require.NoError(t, err)
	assert.Equal(t, usdc, args[0])
	assert.Equal(t, weth, args[1])
}
