package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/PxPatel/auction-book/internal/types"
)

// FileTradeStore implements TradeStore as an append-only JSON lines audit log.
// Read operations return empty; pair it with InMemoryTradeStore in a
// CompositeTradeStore for reads.
type FileTradeStore struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mutex   sync.Mutex
}

// NewFileTradeStore creates a new file-based trade store
func NewFileTradeStore(filePath string) (*FileTradeStore, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}

	writer := bufio.NewWriter(file)
	return &FileTradeStore{
		file:    file,
		writer:  writer,
		encoder: json.NewEncoder(writer),
	}, nil
}

func (s *FileTradeStore) Save(trade *types.Trade) error {
	return s.SaveBatch([]*types.Trade{trade})
}

// SaveBatch writes synchronously so the log keeps tape order.
func (s *FileTradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, trade := range trades {
		if err := s.encoder.Encode(trade); err != nil {
			return fmt.Errorf("failed to write trade %d: %w", trade.TradeID, err)
		}
	}
	return s.writer.Flush()
}

func (s *FileTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	// File store is write-only
	return []*types.Trade{}, nil
}

func (s *FileTradeStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file == nil {
		return nil
	}
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
