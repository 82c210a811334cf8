package ports

import (
	"context"
	"math/big"
	"time"
)

// ReceiptStatus is the outcome of awaiting a submitted transaction.
type ReceiptStatus int

const (
	// ReceiptConfirmed means the transaction was included and succeeded.
	ReceiptConfirmed ReceiptStatus = iota

	// ReceiptReverted means the transaction was included but reverted.
	ReceiptReverted

	// ReceiptTimedOut means the transaction was not seen within the window;
	// it may still confirm later.
	ReceiptTimedOut
)

// ChainClient submits state-changing token calls to the ledger and awaits
// their receipts. Amounts are integer base units.
type ChainClient interface {
	// SubmitMint submits a mint-to call and returns a receipt handle.
	SubmitMint(ctx context.Context, recipient string, amount *big.Int) (handle string, err error)

	// SubmitBatchTransfer submits an airdrop call. Callers must have validated
	// that recipients and amounts are of equal length.
	SubmitBatchTransfer(ctx context.Context, recipients []string, amounts []*big.Int) (handle string, err error)

	// AwaitReceipt blocks until the transaction behind the handle is mined,
	// reverted, or the timeout elapses.
	AwaitReceipt(ctx context.Context, handle string, timeout time.Duration) (ReceiptStatus, error)
}
