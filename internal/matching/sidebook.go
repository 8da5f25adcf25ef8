package matching

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"github.com/PxPatel/auction-book/internal/types"
)

/*
Each side is an ordered tree of handles, not of orders.
A handle only remembers (id, price, seq) so the registry stays the single owner
of order state. Cancel zeroes the order and drops it from the registry but leaves
the handle behind; whoever reaches a stale handle at the top discards it.

A handle is stale when its id is gone from the registry, when the registry entry
is dead, or when the id was reused by a later order (seq mismatch).
*/

type handle struct {
	ID    uint64
	Price decimal.Decimal
	Seq   uint64
}

// bidLess ranks higher prices first, then earlier arrival.
func bidLess(a, b handle) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	return a.Seq < b.Seq
}

// askLess ranks lower prices first, then earlier arrival.
func askLess(a, b handle) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	return a.Seq < b.Seq
}

// SideBook holds one side's handles in priority order.
type SideBook struct {
	side  types.SideType
	less  func(a, b handle) bool
	tree  *btree.BTreeG[handle]
	stale int
}

func newSideBook(side types.SideType) *SideBook {
	less := askLess
	if side == types.Buy {
		less = bidLess
	}
	return &SideBook{
		side: side,
		less: less,
		tree: newTree(less),
	}
}

// The book serializes access itself, so the tree skips its own locking.
func newTree(less func(a, b handle) bool) *btree.BTreeG[handle] {
	return btree.NewBTreeGOptions(less, btree.Options{NoLocks: true})
}

func (sb *SideBook) Side() types.SideType { return sb.side }

// Len counts handles, stale ones included.
func (sb *SideBook) Len() int { return sb.tree.Len() }

func (sb *SideBook) push(h handle) {
	sb.tree.Set(h)
}

func (sb *SideBook) top() (handle, bool) {
	return sb.tree.Min()
}

func (sb *SideBook) pop() (handle, bool) {
	return sb.tree.PopMin()
}

func (sb *SideBook) scan(fn func(h handle) bool) {
	sb.tree.Scan(fn)
}

func (sb *SideBook) rebuild(keep func(h handle) bool) {
	fresh := newTree(sb.less)
	sb.tree.Scan(func(h handle) bool {
		if keep(h) {
			fresh.Set(h)
		}
		return true
	})
	sb.tree = fresh
	sb.stale = 0
}
