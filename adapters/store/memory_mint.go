package store

import (
	"context"
	"sync"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
)

// MemoryMintLedger is an in-memory implementation of the MintLedger
// interface. Confirmed records are kept for the lifetime of the process.
type MemoryMintLedger struct {
	records map[string]core.MintRecord
	mu      sync.Mutex
}

// NewMemoryMintLedger creates a new in-memory mint ledger.
func NewMemoryMintLedger() *MemoryMintLedger {
	return &MemoryMintLedger{records: make(map[string]core.MintRecord)}
}

// Get returns the record for a key, or nil when none exists.
func (l *MemoryMintLedger) Get(_ context.Context, key string) (*core.MintRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[key]
	if !ok {
		return nil, nil
	}
	cp := record
	return &cp, nil
}

// Begin atomically claims the key. In-flight and terminal records block the
// claim; failed and unconfirmed records allow an explicit retry.
func (l *MemoryMintLedger) Begin(_ context.Context, record *core.MintRecord) (*core.MintRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prior, ok := l.records[record.Key]; ok {
		cp := prior
		if !prior.Retryable() {
			return &cp, false, nil
		}
		l.records[record.Key] = *record
		return &cp, true, nil
	}

	l.records[record.Key] = *record
	return nil, true, nil
}

// Finish stores the request outcome.
func (l *MemoryMintLedger) Finish(_ context.Context, record *core.MintRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records[record.Key] = *record
	return nil
}

var _ ports.MintLedger = (*MemoryMintLedger)(nil)
