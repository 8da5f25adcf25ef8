package matching

import (
	"github.com/shopspring/decimal"

	"github.com/PxPatel/auction-book/internal/types"
)

// StopMonitor keeps pending stop orders in arrival order.
type StopMonitor struct {
	pending []*types.StopOrder
	index   map[uint64]*types.StopOrder
}

func NewStopMonitor() *StopMonitor {
	return &StopMonitor{index: make(map[uint64]*types.StopOrder)}
}

func (m *StopMonitor) Add(stop *types.StopOrder) error {
	if _, ok := m.index[stop.ID]; ok {
		return invalid(stop.ID, "order_id", ErrDuplicateOrder)
	}
	stop.State = types.StopPending
	m.pending = append(m.pending, stop)
	m.index[stop.ID] = stop
	return nil
}

func (m *StopMonitor) Contains(id uint64) bool {
	_, ok := m.index[id]
	return ok
}

func (m *StopMonitor) Len() int { return len(m.pending) }

// Cancel removes a pending stop.
func (m *StopMonitor) Cancel(id uint64) (*types.StopOrder, bool) {
	stop, ok := m.index[id]
	if !ok {
		return nil, false
	}
	m.remove(stop)
	return stop, true
}

func (m *StopMonitor) remove(stop *types.StopOrder) {
	delete(m.index, stop.ID)
	for i, p := range m.pending {
		if p == stop {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Evaluate moves every stop whose trigger is crossed by price from pending to
// triggered and returns them in arrival order. Without a price nothing fires.
func (m *StopMonitor) Evaluate(price decimal.NullDecimal) []*types.StopOrder {
	if !price.Valid || len(m.pending) == 0 {
		return nil
	}

	var fired []*types.StopOrder
	kept := m.pending[:0]
	for _, stop := range m.pending {
		if stop.ShouldTrigger(price.Decimal) {
			stop.State = types.StopTriggered
			delete(m.index, stop.ID)
			fired = append(fired, stop)
			continue
		}
		kept = append(kept, stop)
	}
	// Clear the tail so fired stops are not retained by the backing array
	for i := len(kept); i < len(m.pending); i++ {
		m.pending[i] = nil
	}
	m.pending = kept
	return fired
}

// Pending returns copies of the waiting stops.
func (m *StopMonitor) Pending() []types.StopOrder {
	out := make([]types.StopOrder, len(m.pending))
	for i, stop := range m.pending {
		out[i] = *stop
	}
	return out
}
