package matching

import (
	"fmt"

	"github.com/PxPatel/auction-book/internal/types"
)

// compactThreshold is the number of stale handles a side tolerates before a
// rebuild is considered. Rebuilds only happen when stale handles also
// outnumber live ones.
const compactThreshold = 256

// Store is the priority store: one tree per side plus the registry of live
// orders. It is not safe for concurrent use; OrderBook serializes access.
type Store struct {
	bids   *SideBook
	asks   *SideBook
	orders map[uint64]*types.Order
	live   map[types.SideType]int
	seq    uint64
}

func NewStore() *Store {
	return &Store{
		bids:   newSideBook(types.Buy),
		asks:   newSideBook(types.Sell),
		orders: make(map[uint64]*types.Order),
		live:   make(map[types.SideType]int, 2),
	}
}

func (s *Store) Side(side types.SideType) *SideBook {
	switch side {
	case types.Buy:
		return s.bids
	case types.Sell:
		return s.asks
	default:
		panic(fmt.Sprintf("matching: no book for side %v", side))
	}
}

// NextSeq hands out the arrival counter used for time priority.
func (s *Store) NextSeq() uint64 {
	s.seq++
	return s.seq
}

// Insert validates a limit order and rests it on its side.
func (s *Store) Insert(o *types.Order) error {
	if o.OrderType != types.LimitOrder {
		return invalid(o.ID, "order_type", ErrInvalidOrderType)
	}
	if !o.Side.Valid() {
		return invalid(o.ID, "side", ErrInvalidSide)
	}
	if !o.Price.IsPositive() {
		return invalid(o.ID, "price", ErrInvalidPrice)
	}
	if o.Quantity <= 0 {
		return invalid(o.ID, "quantity", ErrInvalidQuantity)
	}
	if _, live := s.orders[o.ID]; live {
		return invalid(o.ID, "order_id", ErrDuplicateOrder)
	}
	if o.Seq == 0 {
		o.Seq = s.NextSeq()
	}

	s.orders[o.ID] = o
	s.live[o.Side]++
	s.Side(o.Side).push(handle{ID: o.ID, Price: o.Price, Seq: o.Seq})
	return nil
}

// Lookup returns the live order registered under id.
func (s *Store) Lookup(id uint64) (*types.Order, bool) {
	o, ok := s.orders[id]
	return o, ok
}

// Contains reports whether id is live.
func (s *Store) Contains(id uint64) bool {
	_, ok := s.orders[id]
	return ok
}

func (s *Store) resolve(h handle) (*types.Order, bool) {
	o, ok := s.orders[h.ID]
	if !ok || o.Seq != h.Seq || !o.IsLive() {
		return nil, false
	}
	return o, true
}

// PeekBest returns the best live order on side, discarding stale handles
// found above it.
func (s *Store) PeekBest(side types.SideType) (*types.Order, bool) {
	sb := s.Side(side)
	for {
		h, ok := sb.top()
		if !ok {
			return nil, false
		}
		if o, live := s.resolve(h); live {
			return o, true
		}
		sb.pop()
		if sb.stale > 0 {
			sb.stale--
		}
	}
}

// PopBest removes the best live order from its side and from the registry.
// Popping an empty side means the caller lost track of the book.
func (s *Store) PopBest(side types.SideType) *types.Order {
	o, ok := s.PeekBest(side)
	if !ok {
		panic(fmt.Sprintf("matching: pop from empty %s side", side))
	}
	s.Side(side).pop()
	s.forget(o)
	return o
}

// retire pops a just-filled order. It must still be at the top of its side.
func (s *Store) retire(o *types.Order) {
	if o.Quantity != 0 {
		panic(fmt.Sprintf("matching: retiring order %d with quantity %d", o.ID, o.Quantity))
	}
	sb := s.Side(o.Side)
	h, ok := sb.pop()
	if !ok || h.ID != o.ID || h.Seq != o.Seq {
		panic(fmt.Sprintf("matching: order %d is not at the top of the %s side", o.ID, o.Side))
	}
	s.forget(o)
}

func (s *Store) forget(o *types.Order) {
	delete(s.orders, o.ID)
	s.live[o.Side]--
}

// Cancel marks the order dead and drops it from the registry. Its handle
// stays in the tree until it surfaces or the side is compacted.
func (s *Store) Cancel(id uint64) (*types.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("cancel order %d: %w", id, ErrUnknownOrder)
	}
	o.Quantity = 0
	s.forget(o)

	sb := s.Side(o.Side)
	sb.stale++
	s.maybeCompact(sb)
	return o, nil
}

func (s *Store) maybeCompact(sb *SideBook) {
	if sb.stale < compactThreshold || sb.stale <= sb.Len()-sb.stale {
		return
	}
	sb.rebuild(func(h handle) bool {
		_, live := s.resolve(h)
		return live
	})
}

// Walk visits live orders of one side in priority order without touching the
// tree. fn returning false stops the walk.
func (s *Store) Walk(side types.SideType, fn func(o *types.Order) bool) {
	s.Side(side).scan(func(h handle) bool {
		o, live := s.resolve(h)
		if !live {
			return true
		}
		return fn(o)
	})
}

// Top returns up to k best live orders of one side, best first.
func (s *Store) Top(side types.SideType, k int) []*types.Order {
	if k <= 0 {
		return nil
	}
	out := make([]*types.Order, 0, k)
	s.Walk(side, func(o *types.Order) bool {
		out = append(out, o)
		return len(out) < k
	})
	return out
}

// LiveCount is the number of live orders resting on side.
func (s *Store) LiveCount(side types.SideType) int {
	return s.live[side]
}
