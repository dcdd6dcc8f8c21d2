package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Article string `json:"article,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeArticleNotFound   = "ARTICLE_NOT_FOUND"
	ErrCodeCartItemNotFound  = "CART_ITEM_NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeInvalidPromoCode  = "INVALID_PROMO_CODE"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeOrderPlacement    = "ORDER_PLACEMENT_FAILED"
	ErrCodeCartSync          = "CART_SYNC_ERROR"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a typed business error surfaced to the caller with enough
// structure to render a specific message.
type DomainError struct {
	Code    string
	Message string
	// Field names the offending input field for validation errors.
	Field string
	// Article names the offending article for stock errors.
	Article string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error naming the offending field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewInsufficientStockError creates a stock error naming the offending
// article.
func NewInsufficientStockError(articleName string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for article: %s", articleName),
		Article: articleName,
	}
}

// Common domain errors
var (
	ErrCartEmpty         = NewValidationError("cart", "cart is empty")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "quantity must be greater than zero")
	ErrArticleNotFound   = NewDomainError(ErrCodeArticleNotFound, "article not found")
	ErrCartItemNotFound  = NewDomainError(ErrCodeCartItemNotFound, "article is not in the cart")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "insufficient stock")
	ErrInvalidPromoCode  = NewDomainError(ErrCodeInvalidPromoCode, "promo code is not valid")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "order not found")
	ErrOrderPlacement    = NewDomainError(ErrCodeOrderPlacement, "order could not be placed, please try again")
	ErrCartSync          = NewDomainError(ErrCodeCartSync, "cart could not be synchronised with the server")
)
