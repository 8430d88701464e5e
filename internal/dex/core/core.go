package core

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type VenueID string

// ErrNoPool marks a pool lookup that resolved to nothing. The liquidity
// filter treats it the same as a call failure: insufficient liquidity.
var ErrNoPool = errors.New("no pool")

// Caller performs read-only contract calls. Satisfied by chain.Client.
type Caller interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Quoter simulates a swap without state change.
type Quoter interface {
	AmountOut(ctx context.Context, assetIn, assetOut common.Address, feeTier uint32, amountIn *big.Int) (*big.Int, error)
}

// LiquiditySource answers whether a pool for (asset, reference) on a fee
// tier holds enough depth to probe. Implementations fail closed.
type LiquiditySource interface {
	HasLiquidity(ctx context.Context, asset, reference common.Address, feeTier uint32) (bool, error)
}

type Venue struct {
	ID        VenueID
	FeeTiers  []uint32
	Quoter    Quoter
	Liquidity LiquiditySource
}

var registry = map[VenueID]*Venue{}

func Register(v *Venue)     { registry[v.ID] = v }
func Get(id VenueID) *Venue { return registry[id] }

func Enabled(ids []VenueID) []*Venue {
	out := make([]*Venue, 0, len(ids))
	for _, id := range ids {
		if v := Get(id); v != nil {
			out = append(out, v)
		}
	}
	return out
}
