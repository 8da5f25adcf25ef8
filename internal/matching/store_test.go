package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/auction-book/internal/types"
)

func limit(id uint64, side types.SideType, price string, qty int64) *types.Order {
	return types.NewLimitOrder(id, side, decimal.RequireFromString(price), qty)
}

func TestStoreInsertValidation(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(limit(1, types.Buy, "10", 1)))

	tests := []struct {
		name  string
		order *types.Order
		want  error
	}{
		{"market order", types.NewMarketOrder(2, types.Buy, 1), ErrInvalidOrderType},
		{"no side", limit(2, types.NoActionSide, "10", 1), ErrInvalidSide},
		{"zero price", limit(2, types.Buy, "0", 1), ErrInvalidPrice},
		{"negative quantity", limit(2, types.Sell, "10", -1), ErrInvalidQuantity},
		{"duplicate", limit(1, types.Sell, "11", 1), ErrDuplicateOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Insert(tt.order), tt.want)
		})
	}
	assert.Equal(t, 1, s.LiveCount(types.Buy))
	assert.Equal(t, 0, s.LiveCount(types.Sell))
}

func TestStorePriorityOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(limit(1, types.Buy, "10", 1)))
	require.NoError(t, s.Insert(limit(2, types.Buy, "11", 1)))
	require.NoError(t, s.Insert(limit(3, types.Buy, "11", 1)))
	require.NoError(t, s.Insert(limit(4, types.Sell, "13", 1)))
	require.NoError(t, s.Insert(limit(5, types.Sell, "12", 1)))

	var bids []uint64
	s.Walk(types.Buy, func(o *types.Order) bool {
		bids = append(bids, o.ID)
		return true
	})
	assert.Equal(t, []uint64{2, 3, 1}, bids)

	best, ok := s.PeekBest(types.Sell)
	require.True(t, ok)
	assert.Equal(t, uint64(5), best.ID)

	top := s.Top(types.Buy, 2)
	require.Len(t, top, 2)
	assert.Equal(t, uint64(2), top[0].ID)
	assert.Nil(t, s.Top(types.Buy, 0))
}

func TestStoreCancelLeavesStaleHandle(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(limit(1, types.Buy, "11", 4)))
	require.NoError(t, s.Insert(limit(2, types.Buy, "10", 2)))

	o, err := s.Cancel(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.Quantity)
	assert.False(t, s.Contains(1))
	assert.Equal(t, 1, s.LiveCount(types.Buy))

	// The handle is still in the tree until it surfaces
	assert.Equal(t, 2, s.bids.Len())
	assert.Equal(t, 1, s.bids.stale)

	best, ok := s.PeekBest(types.Buy)
	require.True(t, ok)
	assert.Equal(t, uint64(2), best.ID)
	assert.Equal(t, 1, s.bids.Len())
	assert.Equal(t, 0, s.bids.stale)

	_, err = s.Cancel(1)
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestStoreReusedIDIgnoresOldHandle(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(limit(1, types.Buy, "20", 1)))
	_, err := s.Cancel(1)
	require.NoError(t, err)

	// Same id, worse price: the old handle at 20 must not resolve to it
	require.NoError(t, s.Insert(limit(1, types.Buy, "10", 3)))

	best, ok := s.PeekBest(types.Buy)
	require.True(t, ok)
	assert.True(t, best.Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(3), best.Quantity)
	assert.Equal(t, 1, s.bids.Len())
}

func TestStoreCompaction(t *testing.T) {
	s := NewStore()
	n := compactThreshold * 2
	for i := 1; i <= n; i++ {
		// Descending prices keep the canceled orders away from the top
		require.NoError(t, s.Insert(limit(uint64(i), types.Buy, decimal.NewFromInt(int64(10000-i)).String(), 1)))
	}

	for i := n; i > n-compactThreshold; i-- {
		_, err := s.Cancel(uint64(i))
		require.NoError(t, err)
	}
	// Stale handles equal live ones: not yet compacted
	assert.Equal(t, n, s.bids.Len())
	assert.Equal(t, compactThreshold, s.bids.stale)

	_, err := s.Cancel(uint64(n - compactThreshold))
	require.NoError(t, err)
	assert.Equal(t, compactThreshold-1, s.bids.Len())
	assert.Equal(t, 0, s.bids.stale)
	assert.Equal(t, compactThreshold-1, s.LiveCount(types.Buy))
}

func TestStorePopBest(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Insert(limit(1, types.Sell, "10", 1)))

	o := s.PopBest(types.Sell)
	assert.Equal(t, uint64(1), o.ID)
	assert.False(t, s.Contains(1))
	assert.Equal(t, 0, s.LiveCount(types.Sell))

	assert.Panics(t, func() { s.PopBest(types.Sell) })
	assert.Panics(t, func() { s.Side(types.NoActionSide) })
}
