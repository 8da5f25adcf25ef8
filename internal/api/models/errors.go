package models

import "net/http"

// ErrorCode represents standard error codes
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrInvalidOrderType ErrorCode = "INVALID_ORDER_TYPE"
	ErrInvalidSide      ErrorCode = "INVALID_SIDE"
	ErrInvalidPrice     ErrorCode = "INVALID_PRICE"
	ErrInvalidQuantity  ErrorCode = "INVALID_QUANTITY"
	ErrMissingPrice     ErrorCode = "MISSING_PRICE"
	ErrInvalidBandWidth ErrorCode = "INVALID_BAND_WIDTH"
	ErrDuplicateOrder   ErrorCode = "DUPLICATE_ORDER"
	ErrOrderNotFound    ErrorCode = "ORDER_NOT_FOUND"
	ErrNoLiquidity      ErrorCode = "NO_LIQUIDITY"
	ErrInternalError    ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured error response
type APIError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError wraps an APIError with an HTTP status code
type HTTPError struct {
	StatusCode int
	Error      APIError
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, code ErrorCode, message string, details map[string]interface{}) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Common error constructors

func ErrBadRequest(message string, details map[string]interface{}) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidRequest, message, details)
}

func ErrInvalidOrderTypeError(providedType string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidOrderType,
		"Invalid order type, must be 'limit', 'market' or 'stop'",
		map[string]interface{}{"provided_value": providedType})
}

func ErrInvalidSideError(providedSide string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidSide,
		"Invalid side, must be 'buy' or 'sell'",
		map[string]interface{}{"provided_value": providedSide})
}

func ErrInvalidPriceError(field string, price string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidPrice,
		"Price must be greater than 0",
		map[string]interface{}{"field": field, "provided_value": price})
}

func ErrInvalidQuantityError(quantity int64) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidQuantity,
		"Quantity must be positive",
		map[string]interface{}{"field": "quantity", "provided_value": quantity})
}

func ErrMissingPriceError(field string) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, ErrMissingPrice,
		field+" is required for this order type",
		map[string]interface{}{"field": field})
}

func ErrInvalidBandWidthError(width string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, ErrInvalidBandWidth,
		"Band width must be a number greater than 0",
		map[string]interface{}{"field": "band", "provided_value": width})
}

func ErrDuplicateOrderError(orderID uint64) *HTTPError {
	return NewHTTPError(http.StatusConflict, ErrDuplicateOrder,
		"Order id is already live",
		map[string]interface{}{"order_id": orderID})
}

func ErrOrderNotFoundError(orderID uint64) *HTTPError {
	return NewHTTPError(http.StatusNotFound, ErrOrderNotFound,
		"Order not found",
		map[string]interface{}{"order_id": orderID})
}

func ErrNoLiquidityError(orderID uint64, requested, remaining int64) *HTTPError {
	return NewHTTPError(http.StatusConflict, ErrNoLiquidity,
		"Market order could not be fully filled",
		map[string]interface{}{"order_id": orderID, "requested": requested, "remaining": remaining})
}

func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, ErrInternalError, message, nil)
}
