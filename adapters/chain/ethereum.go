// Package chain implements the ledger collaborator over an Ethereum JSON-RPC
// endpoint. It packs token contract calls, signs them with the operator key
// and polls for receipts.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
	"go.uber.org/zap"
)

// tokenABI covers the two state-changing calls the orchestrator drives.
const tokenABI = `[
	{"name":"mintTo","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"name":"airdrop","type":"function","inputs":[{"name":"recipients","type":"address[]"},{"name":"amounts","type":"uint256[]"}],"outputs":[]}
]`

const defaultPollInterval = 3 * time.Second

// EthereumClient implements the ChainClient interface with go-ethereum.
type EthereumClient struct {
	client       *ethclient.Client
	key          *ecdsa.PrivateKey
	from         common.Address
	contract     common.Address
	chainID      *big.Int
	contractABI  abi.ABI
	pollInterval time.Duration
	logger       *zap.Logger
}

// Dial connects to the RPC endpoint and prepares the signing client.
func Dial(ctx context.Context, rpcURL, contractAddress string, key *ecdsa.PrivateKey, logger *zap.Logger) (*EthereumClient, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddress)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("query chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}

	return &EthereumClient{
		client:       client,
		key:          key,
		from:         crypto.PubkeyToAddress(key.PublicKey),
		contract:     common.HexToAddress(contractAddress),
		chainID:      chainID,
		contractABI:  parsed,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}, nil
}

// SubmitMint submits a mintTo call and returns the transaction hash.
func (c *EthereumClient) SubmitMint(ctx context.Context, recipient string, amount *big.Int) (string, error) {
	data, err := c.contractABI.Pack("mintTo", common.HexToAddress(recipient), amount)
	if err != nil {
		return "", fmt.Errorf("%w: pack mintTo: %v", core.ErrSubmissionFailed, err)
	}
	return c.submit(ctx, data)
}

// SubmitBatchTransfer submits an airdrop call and returns the transaction hash.
func (c *EthereumClient) SubmitBatchTransfer(ctx context.Context, recipients []string, amounts []*big.Int) (string, error) {
	addrs := make([]common.Address, len(recipients))
	for i, r := range recipients {
		addrs[i] = common.HexToAddress(r)
	}
	data, err := c.contractABI.Pack("airdrop", addrs, amounts)
	if err != nil {
		return "", fmt.Errorf("%w: pack airdrop: %v", core.ErrSubmissionFailed, err)
	}
	return c.submit(ctx, data)
}

func (c *EthereumClient) submit(ctx context.Context, calldata []byte) (string, error) {
	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("%w: pending nonce: %v", core.ErrSubmissionFailed, err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: suggest gas price: %v", core.ErrSubmissionFailed, err)
	}

	gasLimit, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &c.contract,
		Data: calldata,
	})
	if err != nil {
		return "", fmt.Errorf("%w: estimate gas: %v", core.ErrSubmissionFailed, err)
	}

	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), gasLimit, gasPrice, calldata)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign transaction: %v", core.ErrSubmissionFailed, err)
	}

	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("%w: send transaction: %v", core.ErrSubmissionFailed, err)
	}

	hash := signedTx.Hash().Hex()
	c.logger.Info("transaction submitted", zap.String("tx_hash", hash))
	return hash, nil
}

// AwaitReceipt polls for the transaction receipt until it is mined, reverted,
// or the timeout elapses. A timeout is reported as a distinct status, not an
// error: the transaction may still confirm later.
func (c *EthereumClient) AwaitReceipt(ctx context.Context, handle string, timeout time.Duration) (ports.ReceiptStatus, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	txHash := common.HexToHash(handle)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(waitCtx, txHash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return ports.ReceiptConfirmed, nil
			}
			return ports.ReceiptReverted, nil
		case errors.Is(err, ethereum.NotFound):
			// Not mined yet, keep polling.
		case errors.Is(waitCtx.Err(), context.DeadlineExceeded):
			return ports.ReceiptTimedOut, nil
		default:
			c.logger.Warn("receipt poll failed", zap.String("tx_hash", handle), zap.Error(err))
		}

		select {
		case <-waitCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				return ports.ReceiptTimedOut, nil
			}
			return ports.ReceiptTimedOut, waitCtx.Err()
		case <-ticker.C:
		}
	}
}

var _ ports.ChainClient = (*EthereumClient)(nil)
