package matching

import (
	"errors"
	"fmt"

	"github.com/PxPatel/auction-book/internal/types"
)

var (
	ErrInvalidPrice         = errors.New("price must be greater than 0")
	ErrInvalidQuantity      = errors.New("quantity must be greater than 0")
	ErrInvalidSide          = errors.New("side must be buy or sell")
	ErrInvalidOrderType     = errors.New("order type cannot rest in the book")
	ErrDuplicateOrder       = errors.New("order id already live")
	ErrMissingLimitPrice    = errors.New("limit price required for stop-limit conversion")
	ErrInvalidBandWidth     = errors.New("band width must be greater than 0")
	ErrUnknownOrder         = errors.New("order not found")
	ErrNoLiquidity          = errors.New("insufficient liquidity")
	ErrEngineNotImplemented = errors.New("matching engine not implemented")
)

// ValidationError rejects a submission before it reaches the book.
type ValidationError struct {
	OrderID uint64
	Field   string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order %d: invalid %s: %v", e.OrderID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(id uint64, field string, err error) *ValidationError {
	return &ValidationError{OrderID: id, Field: field, Err: err}
}

// NoLiquidityError reports the unfilled part of a market order. Trades that
// did execute stay on the tape and are listed here too.
type NoLiquidityError struct {
	OrderID   uint64
	Side      types.SideType
	Requested int64
	Remaining int64
	Trades    []*types.Trade
}

func (e *NoLiquidityError) Error() string {
	return fmt.Sprintf("market %s order %d: %d of %d unfilled: %v",
		e.Side, e.OrderID, e.Remaining, e.Requested, ErrNoLiquidity)
}

func (e *NoLiquidityError) Unwrap() error { return ErrNoLiquidity }
