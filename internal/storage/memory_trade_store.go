package storage

import (
	"sync"

	"github.com/PxPatel/auction-book/internal/types"
)

// InMemoryTradeStore implements TradeStore as a bounded tape.
// Keeps only the N most recent trades in memory.
type InMemoryTradeStore struct {
	trades  []*types.Trade
	maxSize int
	mutex   sync.RWMutex
}

// NewInMemoryTradeStore creates a new in-memory trade store with a size limit
func NewInMemoryTradeStore(maxSize int) *InMemoryTradeStore {
	if maxSize < 1 {
		maxSize = 1
	}
	return &InMemoryTradeStore{
		trades:  make([]*types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *InMemoryTradeStore) Save(trade *types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trade)
	s.trim()
	return nil
}

func (s *InMemoryTradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trades...)
	s.trim()
	return nil
}

// trim drops the oldest trades once the tape exceeds maxSize. The backing
// array is reallocated so evicted trades can be collected.
func (s *InMemoryTradeStore) trim() {
	if len(s.trades) <= s.maxSize {
		return
	}
	kept := make([]*types.Trade, s.maxSize, s.maxSize*2)
	copy(kept, s.trades[len(s.trades)-s.maxSize:])
	s.trades = kept
}

func (s *InMemoryTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// Clamp limit to actual size
	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	start := len(s.trades) - limit
	result := make([]*types.Trade, limit)
	copy(result, s.trades[start:])

	return result, nil
}

// Len is the number of retained trades.
func (s *InMemoryTradeStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.trades)
}

func (s *InMemoryTradeStore) Close() error {
	// No cleanup needed for in-memory store
	return nil
}
