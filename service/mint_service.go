package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/internal/eth"
	"github.com/layer-3/mintgate/ports"
	"go.uber.org/zap"
)

// DefaultConfirmationTimeout bounds how long a mint request waits for its
// receipt before reporting the transaction as submitted-unconfirmed.
const DefaultConfirmationTimeout = 2 * time.Minute

// MintService drives idempotent on-chain minting gated on an authenticated
// identity and a met milestone.
type MintService struct {
	tokenizer ports.Tokenizer
	ledger    ports.MintLedger
	chain     ports.ChainClient
	eventPub  ports.EventPublisher
	logger    *zap.Logger

	decimals       int32
	confirmTimeout time.Duration
	now            func() time.Time
}

// NewMintService creates a new minting orchestrator. decimals is the token's
// base-unit precision; a zero confirmTimeout falls back to
// DefaultConfirmationTimeout.
func NewMintService(
	tokenizer ports.Tokenizer,
	ledger ports.MintLedger,
	chain ports.ChainClient,
	eventPub ports.EventPublisher,
	decimals int32,
	confirmTimeout time.Duration,
	logger *zap.Logger,
) *MintService {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmationTimeout
	}
	return &MintService{
		tokenizer:      tokenizer,
		ledger:         ledger,
		chain:          chain,
		eventPub:       eventPub,
		logger:         logger,
		decimals:       decimals,
		confirmTimeout: confirmTimeout,
		now:            time.Now,
	}
}

// RequestMint mints the milestone's reward to the identity's address.
//
// The idempotency key is derived from (recipient, milestone): a key that
// already reached confirmed returns the prior record without a second ledger
// call, and a key currently in flight is rejected rather than double-
// submitted. Failures surface to the caller; retrying is an explicit
// re-request that passes through the same guard.
func (s *MintService) RequestMint(ctx context.Context, identity *core.Identity, verdict *core.Verdict, milestone core.Milestone) (*core.MintRecord, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	if verdict == nil || !verdict.MilestoneMet(milestone.ID) {
		return nil, core.ErrMilestoneNotMet
	}

	recipient := identity.Address
	amount, err := core.EncodeAmount(milestone.MintAmount, s.decimals)
	if err != nil {
		// Caller/config error: reported as permanent, the key is not claimed.
		return &core.MintRecord{
			Recipient:   recipient,
			MilestoneID: milestone.ID,
			Amount:      milestone.MintAmount,
			State:       core.MintStateFailedPermanent,
			Reason:      err.Error(),
			UpdatedAt:   s.now(),
		}, err
	}

	record := &core.MintRecord{
		Key:         core.MintKey(recipient, milestone.ID),
		Recipient:   recipient,
		MilestoneID: milestone.ID,
		Amount:      milestone.MintAmount,
		State:       core.MintStatePending,
		UpdatedAt:   s.now(),
	}

	prior, acquired, err := s.ledger.Begin(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("claim mint key: %w", err)
	}
	if !acquired {
		if prior != nil && prior.State == core.MintStateConfirmed {
			s.logger.Info("mint already confirmed, returning cached result",
				zap.String("key", prior.Key), zap.String("tx_hash", prior.TxHash))
			return prior, nil
		}
		return prior, fmt.Errorf("%w: key %s", core.ErrMintInFlight, record.Key)
	}

	return s.submitAndAwait(ctx, record, func(submitCtx context.Context) (string, error) {
		return s.chain.SubmitMint(submitCtx, recipient, amount)
	})
}

// RequestAirdrop submits a batch transfer. Array lengths are validated before
// any network call; the requestID is the batch's idempotency intent.
func (s *MintService) RequestAirdrop(ctx context.Context, identity *core.Identity, requestID string, recipients, amounts []string) (*core.MintRecord, error) {
	if err := s.authorize(identity); err != nil {
		return nil, err
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	record := &core.MintRecord{
		Key:         core.MintKey("airdrop", requestID),
		Recipient:   identity.Address,
		MilestoneID: "airdrop:" + requestID,
		State:       core.MintStatePending,
		UpdatedAt:   s.now(),
	}

	if len(recipients) != len(amounts) {
		record.State = core.MintStateFailedPermanent
		record.Reason = fmt.Sprintf("recipients/amounts length mismatch: %d != %d", len(recipients), len(amounts))
		return record, fmt.Errorf("%w: %s", core.ErrInvalidAmount, record.Reason)
	}
	if len(recipients) == 0 {
		record.State = core.MintStateFailedPermanent
		record.Reason = "empty batch"
		return record, fmt.Errorf("%w: empty batch", core.ErrInvalidAmount)
	}

	baseUnits := make([]*big.Int, len(amounts))
	for i, raw := range amounts {
		if !eth.ValidAddress(recipients[i]) {
			record.State = core.MintStateFailedPermanent
			record.Reason = fmt.Sprintf("invalid recipient address %q", recipients[i])
			return record, fmt.Errorf("%w: %s", core.ErrInvalidAmount, record.Reason)
		}
		base, err := core.EncodeAmount(raw, s.decimals)
		if err != nil {
			record.State = core.MintStateFailedPermanent
			record.Reason = err.Error()
			return record, err
		}
		baseUnits[i] = base
	}

	prior, acquired, err := s.ledger.Begin(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("claim airdrop key: %w", err)
	}
	if !acquired {
		if prior != nil && prior.State == core.MintStateConfirmed {
			return prior, nil
		}
		return prior, fmt.Errorf("%w: key %s", core.ErrMintInFlight, record.Key)
	}

	return s.submitAndAwait(ctx, record, func(submitCtx context.Context) (string, error) {
		return s.chain.SubmitBatchTransfer(submitCtx, recipients, baseUnits)
	})
}

// Status returns the ledger record for a (recipient, milestone) pair.
func (s *MintService) Status(ctx context.Context, recipient, milestoneID string) (*core.MintRecord, error) {
	return s.ledger.Get(ctx, core.MintKey(recipient, milestoneID))
}

func (s *MintService) authorize(identity *core.Identity) error {
	if identity == nil || identity.SessionToken == "" {
		return core.ErrUnauthorized
	}
	parsed, err := s.tokenizer.TokenToIdentity(identity.SessionToken)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}
	if s.now().After(parsed.SessionExpiry) {
		return fmt.Errorf("%w: session expired", core.ErrUnauthorized)
	}
	return nil
}

// submitAndAwait submits the claimed request and drives it to an outcome.
// State transitions after submission run on a context detached from the
// caller: confirmation is driven by the ledger receipt, not caller presence.
func (s *MintService) submitAndAwait(ctx context.Context, record *core.MintRecord, submit func(context.Context) (string, error)) (*core.MintRecord, error) {
	detached := context.WithoutCancel(ctx)

	handle, err := submit(ctx)
	if err != nil {
		record.State = core.MintStateFailed
		record.Reason = err.Error()
		record.UpdatedAt = s.now()
		s.finish(detached, record)
		return record, err
	}

	record.State = core.MintStateSubmitted
	record.TxHash = handle
	record.UpdatedAt = s.now()
	s.finish(detached, record)

	status, err := s.chain.AwaitReceipt(detached, handle, s.confirmTimeout)
	if err != nil {
		record.State = core.MintStateSubmittedUnconfirmed
		record.Reason = err.Error()
		record.UpdatedAt = s.now()
		s.finish(detached, record)
		return record, fmt.Errorf("%w: %v", core.ErrConfirmationTimeout, err)
	}

	switch status {
	case ports.ReceiptConfirmed:
		record.State = core.MintStateConfirmed
		record.Reason = ""
		record.UpdatedAt = s.now()
		s.finish(detached, record)
		if err := s.eventPub.PublishMintConfirmed(detached, record.Recipient, record.MilestoneID, record.TxHash); err != nil {
			s.logger.Warn("failed to publish mint confirmation event", zap.Error(err))
		}
		s.logger.Info("mint confirmed",
			zap.String("key", record.Key), zap.String("tx_hash", record.TxHash))
		return record, nil

	case ports.ReceiptReverted:
		record.State = core.MintStateFailed
		record.Reason = core.ErrReverted.Error()
		record.UpdatedAt = s.now()
		s.finish(detached, record)
		return record, fmt.Errorf("%w: tx %s", core.ErrReverted, record.TxHash)

	default: // ports.ReceiptTimedOut
		record.State = core.MintStateSubmittedUnconfirmed
		record.Reason = core.ErrConfirmationTimeout.Error()
		record.UpdatedAt = s.now()
		s.finish(detached, record)
		return record, fmt.Errorf("%w: tx %s", core.ErrConfirmationTimeout, record.TxHash)
	}
}

func (s *MintService) finish(ctx context.Context, record *core.MintRecord) {
	if err := s.ledger.Finish(ctx, record); err != nil {
		s.logger.Error("failed to persist mint record",
			zap.String("key", record.Key), zap.Error(err))
	}
}
