package settlement

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/pttransamdriver/trading-bot-v3/internal/types"
)

// ErrReverted marks an on-chain execution that mined with status 0.
var ErrReverted = errors.New("execution reverted")

const executorABI = `[
 {"inputs":[
   {"internalType":"address","name":"asset","type":"address"},
   {"internalType":"uint256","name":"amount","type":"uint256"},
   {"internalType":"address","name":"buyRouter","type":"address"},
   {"internalType":"address","name":"sellRouter","type":"address"},
   {"internalType":"address","name":"tokenIn","type":"address"},
   {"internalType":"address","name":"tokenOut","type":"address"},
   {"internalType":"uint24","name":"fee","type":"uint24"},
   {"internalType":"uint256","name":"slippagePercent","type":"uint256"}],
  "name":"executeArbitrage","outputs":[],"stateMutability":"nonpayable","type":"function"},
 {"inputs":[{"internalType":"address","name":"token","type":"address"}],
  "name":"rescueTokens","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// TxOptions carries the explicit fee parameters derived from the cycle's
// gas environment.
type TxOptions struct {
	GasLimit     uint64
	MaxFeePerGas *big.Int
	PriorityFee  *big.Int
}

// Contract is the settlement-side capability the dispatcher consumes.
type Contract interface {
	ExecuteArbitrage(ctx context.Context, opp types.Opportunity, opts TxOptions) (txHash string, err error)
	WaitConfirmed(ctx context.Context, txHash string) error
}

type Binding struct {
	log      *zap.Logger
	ec       *ethclient.Client
	eabi     abi.ABI
	executor common.Address
	routers  map[string]common.Address
	pk       *ecdsa.PrivateKey
	sender   common.Address
}

// New builds the binding. routers maps venue IDs onto the router addresses
// the on-chain executor swaps through.
func New(ec *ethclient.Client, executor common.Address, routers map[string]common.Address, pkHex string, log *zap.Logger) (*Binding, error) {
	if executor == (common.Address{}) {
		return nil, fmt.Errorf("executor address is not configured")
	}
	eabi, err := abi.JSON(strings.NewReader(executorABI))
	if err != nil {
		return nil, fmt.Errorf("parse executor abi: %w", err)
	}
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(pkHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("bad private key: %w", err)
	}
	return &Binding{
		log:      log,
		ec:       ec,
		eabi:     eabi,
		executor: executor,
		routers:  routers,
		pk:       pk,
		sender:   crypto.PubkeyToAddress(pk.PublicKey),
	}, nil
}

// slippageArg converts the fractional slippage bound to the contract's whole
// percent argument. Fractional bounds round up: a 0.25% bound must reach the
// chain as 1, never 0, since zero means no tolerated slippage at all.
func slippageArg(pct float64) *big.Int {
	whole := int64(math.Ceil(pct))
	if whole < 1 {
		whole = 1
	}
	return big.NewInt(whole)
}

func (c *Binding) ExecuteArbitrage(ctx context.Context, opp types.Opportunity, opts TxOptions) (string, error) {
	buyRouter, ok := c.routers[opp.BuyVenue]
	if !ok {
		return "", fmt.Errorf("no router for venue %s", opp.BuyVenue)
	}
	sellRouter, ok := c.routers[opp.SellVenue]
	if !ok {
		return "", fmt.Errorf("no router for venue %s", opp.SellVenue)
	}

	input, err := c.eabi.Pack("executeArbitrage",
		opp.AssetIn,
		opp.AmountIn,
		buyRouter,
		sellRouter,
		opp.AssetIn,
		opp.AssetOut,
		big.NewInt(int64(opp.FeeTier)),
		slippageArg(opp.SlippagePct),
	)
	if err != nil {
		return "", fmt.Errorf("pack executeArbitrage: %w", err)
	}

	signedTx, err := c.signTx(ctx, input, opts)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}
	if err := c.ec.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	return signedTx.Hash().Hex(), nil
}

// RescueTokens recovers stranded funds; owner-only, outside the scan path.
func (c *Binding) RescueTokens(ctx context.Context, token common.Address, opts TxOptions) (string, error) {
	input, err := c.eabi.Pack("rescueTokens", token)
	if err != nil {
		return "", fmt.Errorf("pack rescueTokens: %w", err)
	}
	signedTx, err := c.signTx(ctx, input, opts)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}
	if err := c.ec.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	return signedTx.Hash().Hex(), nil
}

// WaitConfirmed polls for the receipt. Status 0 maps to ErrReverted.
func (c *Binding) WaitConfirmed(ctx context.Context, txHash string) error {
	hash := common.HexToHash(txHash)
	tick := time.NewTicker(2 * time.Second)
	defer tick.Stop()
	for {
		rcpt, err := c.ec.TransactionReceipt(ctx, hash)
		if err == nil {
			if rcpt.Status == gethtypes.ReceiptStatusFailed {
				return fmt.Errorf("%w: tx %s", ErrReverted, txHash)
			}
			return nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("receipt %s: %w", txHash, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (c *Binding) signTx(ctx context.Context, input []byte, opts TxOptions) (*gethtypes.Transaction, error) {
	chainID, err := c.ec.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	nonce, err := c.ec.PendingNonceAt(ctx, c.sender)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	tx := gethtypes.NewTx(&gethtypes.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: opts.PriorityFee,
		GasFeeCap: opts.MaxFeePerGas,
		Gas:       opts.GasLimit,
		To:        &c.executor,
		Value:     big.NewInt(0),
		Data:      input,
	})

	signedTx, err := gethtypes.SignTx(tx, gethtypes.NewLondonSigner(chainID), c.pk)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signedTx, nil
}
