package chain

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the process-wide read gateway to chain state. All venue
// implementations and the gas/oracle refreshers share one instance.
type Client struct {
	ec *ethclient.Client
}

func Dial(rpcURL string) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("empty rpc url")
	}
	ec, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Client{ec: ec}, nil
}

func NewClient(ec *ethclient.Client) *Client { return &Client{ec: ec} }

func (c *Client) Eth() *ethclient.Client { return c.ec }

// CallContract is a thin passthrough used by the venue bindings.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.ec.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return c.ec.SuggestGasPrice(ctx)
}

func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return c.ec.SuggestGasTipCap(ctx)
}

// GweiToWei converts a float gwei amount to wei.
func GweiToWei(gwei float64) *big.Int {
	f := new(big.Float).SetFloat64(gwei)
	f.Mul(f, big.NewFloat(1e9))
	out, _ := f.Int(nil)
	return out
}

// WeiToUSD converts a wei amount through the native-asset USD price.
func WeiToUSD(wei *big.Int, nativeUSD float64) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	f.Mul(f, big.NewFloat(nativeUSD))
	out, _ := f.Float64()
	return out
}

// ToFloat scales a raw token amount by its decimals.
func ToFloat(amount *big.Int, decimals int) float64 {
	f := new(big.Float).SetInt(amount)
	div := new(big.Float).SetFloat64(1)
	for i := 0; i < decimals; i++ {
		div.Mul(div, big.NewFloat(10))
	}
	f.Quo(f, div)
	out, _ := f.Float64()
	return out
}
