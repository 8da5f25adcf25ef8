package storage

import (
	"errors"

	"github.com/PxPatel/auction-book/internal/types"
)

// TradeStore abstracts where the trade tape goes.
// Implementations can be an in-memory ring, file log, Redis, PostgreSQL, Pebble, etc.
type TradeStore interface {
	// Save persists a single trade
	Save(trade *types.Trade) error

	// SaveBatch persists multiple trades in tape order
	SaveBatch(trades []*types.Trade) error

	// GetRecent retrieves the N most recent trades, oldest first
	GetRecent(limit int) ([]*types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}

// TradeSequencer is implemented by durable stores that can report where the
// tape left off, so a restarted book continues trade numbering after it.
type TradeSequencer interface {
	LastTradeID() (uint64, error)
}

// ResumeTradeID returns the highest trade id reported by any sequencer among
// stores. Stores that fail to report are skipped and their errors returned.
func ResumeTradeID(stores ...TradeStore) (uint64, error) {
	var last uint64
	var errs []error
	for _, store := range stores {
		seq, ok := store.(TradeSequencer)
		if !ok {
			continue
		}
		id, err := seq.LastTradeID()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		last = max(last, id)
	}
	return last, errors.Join(errs...)
}
