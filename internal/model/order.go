package model

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Checkout only ever writes OrderStatusPending; the later
// transitions belong to the artisan/admin back-office.
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusInProgress = "in_progress"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order represents a placed order.
type Order struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ClientID      uuid.UUID `json:"clientId" db:"client_id"`
	OrderNumber   string    `json:"orderNumber" db:"order_number"`
	OrderDate     time.Time `json:"orderDate" db:"order_date"`
	TotalAmount   float64   `json:"totalAmount" db:"total_amount"`
	Status        string    `json:"status" db:"status"`
	PaymentMethod string    `json:"paymentMethod" db:"payment_method"`
	PromoCode     *string   `json:"promoCode,omitempty" db:"promo_code"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderLine is one purchased article/quantity pair within an order. The unit
// price is frozen at purchase time and never re-read from the article.
type OrderLine struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ArticleID uuid.UUID `json:"articleId" db:"article_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unitPrice" db:"unit_price"`
}

// CheckoutRequest is the payload of a checkout submission.
type CheckoutRequest struct {
	ShippingDetails
	PaymentMethod string  `json:"paymentMethod"`
	PromoCode     *string `json:"promoCode,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// ReceiptLine is one line of an order receipt, frozen at purchase time.
type ReceiptLine struct {
	ArticleID uuid.UUID `json:"articleId"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
}

// OrderReceipt is returned after a successful checkout. All amounts are
// values frozen at purchase time, independent of later catalogue changes.
type OrderReceipt struct {
	OrderNumber string        `json:"orderNumber"`
	Date        time.Time     `json:"date"`
	Items       []ReceiptLine `json:"items"`
	Subtotal    float64       `json:"subtotal"`
	Shipping    float64       `json:"shipping"`
	Discount    float64       `json:"discount"`
	Total       float64       `json:"total"`
}

// OrderSummary is one entry in a shopper's order history.
type OrderSummary struct {
	ID          uuid.UUID     `json:"id"`
	OrderNumber string        `json:"orderNumber"`
	Date        time.Time     `json:"date"`
	Total       float64       `json:"total"`
	Status      string        `json:"status"`
	Items       []ReceiptLine `json:"items"`
}
