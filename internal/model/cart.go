package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem represents one article/quantity pair in a shopper's persisted
// cart. At most one row exists per (user, article); repeated adds increment
// the quantity instead of inserting.
type CartItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	ArticleID uuid.UUID `json:"articleId" db:"article_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`
}

// CartItemInput is a locally-held article/quantity pair, as submitted by an
// anonymous session at merge time or by a cart mutation request.
type CartItemInput struct {
	ArticleID uuid.UUID `json:"articleId"`
	Quantity  int       `json:"quantity"`
}

// CartLine is one line of the authoritative cart view, joined with the
// article's live name, price and stock.
type CartLine struct {
	ArticleID uuid.UUID `json:"articleId"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal float64   `json:"lineTotal"`
	Stock     int       `json:"stock"`
}

// CartView is the server cart as returned to the caller after every
// mutation.
type CartView struct {
	Lines    []CartLine `json:"lines"`
	Subtotal float64    `json:"subtotal"`
}

// IsEmpty reports whether the cart holds no lines.
func (v *CartView) IsEmpty() bool {
	return v == nil || len(v.Lines) == 0
}
