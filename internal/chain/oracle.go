package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrOracleUnavailable wraps any feed read failure. Callers fall back to a
// conservative price rather than abort.
var ErrOracleUnavailable = errors.New("oracle unavailable")

const aggregatorABI = `[
 {"inputs":[],"name":"latestAnswer","outputs":[{"internalType":"int256","name":"","type":"int256"}],"stateMutability":"view","type":"function"},
 {"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// OracleFeed reads USD prices from Chainlink-style aggregators.
type OracleFeed interface {
	LatestPrice(ctx context.Context, feed common.Address) (float64, error)
}

type chainlinkFeed struct {
	c    *Client
	aabi abi.ABI
}

func NewChainlinkFeed(c *Client) (OracleFeed, error) {
	aabi, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("parse aggregator abi: %w", err)
	}
	return &chainlinkFeed{c: c, aabi: aabi}, nil
}

func (f *chainlinkFeed) LatestPrice(ctx context.Context, feed common.Address) (float64, error) {
	if feed == (common.Address{}) {
		return 0, fmt.Errorf("%w: no feed configured", ErrOracleUnavailable)
	}

	answer, err := f.callInt(ctx, feed, "latestAnswer")
	if err != nil {
		return 0, fmt.Errorf("%w: latestAnswer: %v", ErrOracleUnavailable, err)
	}
	if answer.Sign() <= 0 {
		return 0, fmt.Errorf("%w: non-positive answer %s", ErrOracleUnavailable, answer)
	}

	dec := 8
	if d, err := f.callInt(ctx, feed, "decimals"); err == nil {
		dec = int(d.Int64())
	}
	return ToFloat(answer, dec), nil
}

func (f *chainlinkFeed) callInt(ctx context.Context, to common.Address, method string) (*big.Int, error) {
	input, err := f.aabi.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	res, err := f.c.CallContract(ctx, to, input)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	outs, err := f.aabi.Methods[method].Outputs.Unpack(res)
	if err != nil || len(outs) == 0 {
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	switch v := outs[0].(type) {
	case *big.Int:
		return v, nil
	case uint8:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("unexpected %s type %T", method, v)
	}
}
