package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/PxPatel/auction-book/internal/types"
)

var (
	tradePrefix = []byte("trade/")
	tradeUpper  = []byte("trade0") // '0' sorts right after '/'
)

// TradeJournal is a durable append log of the trade tape, keyed by trade id.
type TradeJournal struct {
	db   *pebble.DB
	sync bool
}

// Open opens or creates the journal in dir. With sync set every batch is
// fsynced before SaveBatch returns.
func Open(dir string, sync bool) (*TradeJournal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open trade journal: %w", err)
	}
	return &TradeJournal{db: db, sync: sync}, nil
}

func tradeKey(id uint64) []byte {
	key := make([]byte, len(tradePrefix)+8)
	copy(key, tradePrefix)
	binary.BigEndian.PutUint64(key[len(tradePrefix):], id)
	return key
}

func (j *TradeJournal) writeOptions() *pebble.WriteOptions {
	if j.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func (j *TradeJournal) Save(trade *types.Trade) error {
	return j.SaveBatch([]*types.Trade{trade})
}

func (j *TradeJournal) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch := j.db.NewBatch()
	defer batch.Close()

	for _, trade := range trades {
		data, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("failed to encode trade %d: %w", trade.TradeID, err)
		}
		if err := batch.Set(tradeKey(trade.TradeID), data, nil); err != nil {
			return err
		}
	}
	return batch.Commit(j.writeOptions())
}

// GetRecent returns up to limit of the newest trades, oldest first.
func (j *TradeJournal) GetRecent(limit int) ([]*types.Trade, error) {
	if limit <= 0 {
		limit = 100
	}

	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: tradePrefix,
		UpperBound: tradeUpper,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	newestFirst := make([]*types.Trade, 0, limit)
	for iter.Last(); iter.Valid() && len(newestFirst) < limit; iter.Prev() {
		var trade types.Trade
		if err := json.Unmarshal(iter.Value(), &trade); err != nil {
			return nil, fmt.Errorf("corrupt journal entry %x: %w", iter.Key(), err)
		}
		newestFirst = append(newestFirst, &trade)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	for i, k := 0, len(newestFirst)-1; i < k; i, k = i+1, k-1 {
		newestFirst[i], newestFirst[k] = newestFirst[k], newestFirst[i]
	}
	return newestFirst, nil
}

// LastTradeID returns the highest journaled trade id, or 0 for an empty journal.
func (j *TradeJournal) LastTradeID() (uint64, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: tradePrefix,
		UpperBound: tradeUpper,
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return binary.BigEndian.Uint64(iter.Key()[len(tradePrefix):]), nil
}

func (j *TradeJournal) Close() error {
	return j.db.Close()
}
