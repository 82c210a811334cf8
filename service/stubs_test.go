package service_test

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
)

// ── Event publisher stub ───────────────────────────────────────────────────

type stubPublisher struct {
	mu     sync.Mutex
	logins []string
	mints  []string
}

func (p *stubPublisher) PublishLogin(_ context.Context, address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, address)
	return nil
}

func (p *stubPublisher) PublishMintConfirmed(_ context.Context, recipient, milestoneID, txHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mints = append(p.mints, recipient+"/"+milestoneID)
	return nil
}

var _ ports.EventPublisher = (*stubPublisher)(nil)

// ── Chain client stub ──────────────────────────────────────────────────────

type stubChain struct {
	mu           sync.Mutex
	mintCalls    int
	batchCalls   int
	submitErr    error
	receipt      ports.ReceiptStatus
	block        chan struct{} // when set, AwaitReceipt waits until closed
	awaitTimeout time.Duration // last timeout passed to AwaitReceipt
}

func (c *stubChain) SubmitMint(_ context.Context, _ string, _ *big.Int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return "", c.submitErr
	}
	c.mintCalls++
	return "0xstub-mint-tx", nil
}

func (c *stubChain) SubmitBatchTransfer(_ context.Context, _ []string, _ []*big.Int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return "", c.submitErr
	}
	c.batchCalls++
	return "0xstub-batch-tx", nil
}

func (c *stubChain) AwaitReceipt(ctx context.Context, _ string, timeout time.Duration) (ports.ReceiptStatus, error) {
	c.mu.Lock()
	block := c.block
	receipt := c.receipt
	c.awaitTimeout = timeout
	c.mu.Unlock()

	if block != nil {
		<-block
	}
	// The real client stops polling once its context dies.
	if err := ctx.Err(); err != nil {
		return ports.ReceiptTimedOut, err
	}
	return receipt, nil
}

func (c *stubChain) calls() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mintCalls, c.batchCalls
}

var _ ports.ChainClient = (*stubChain)(nil)

// ── Social client stub ─────────────────────────────────────────────────────

type stubSocial struct {
	profile    *core.ProfileSnapshot
	engagement *core.EngagementData
	err        error
}

func (s *stubSocial) GetProfile(_ context.Context, accountID string) (*core.ProfileSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.profile
	cp.AccountID = accountID
	return &cp, nil
}

func (s *stubSocial) GetEngagement(_ context.Context, accountID, period string) (*core.EngagementData, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.engagement
	cp.AccountID = accountID
	cp.Period = period
	return &cp, nil
}

var _ ports.SocialClient = (*stubSocial)(nil)
