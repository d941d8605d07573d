package model

import "time"

// Cart item kinds.
const (
	CartProduct    = "product"
	CartExperience = "experience"
)

// CartItem is one line in a cart (`cart_items` table).  A line belongs either
// to a logged-in user or to an anonymous session id, never both.
//
// Fields:
//
//	UserID/SessionID – owner; exactly one is set.
//	ProductID        – set when Type is "product".
//	ExperienceID     – set when Type is "experience".
//	Price            – unit price captured when the line was added.
type CartItem struct {
	ID           uint64    `json:"id"`                     // cart_items.id
	UserID       *uint64   `json:"userId,omitempty"`       // cart_items.user_id
	SessionID    *string   `json:"sessionId,omitempty"`    // cart_items.session_id
	ProductID    *uint64   `json:"productId,omitempty"`    // cart_items.product_id
	ExperienceID *uint64   `json:"experienceId,omitempty"` // cart_items.experience_id
	Quantity     int       `json:"quantity"`               // cart_items.quantity
	Price        Money     `json:"price"`                  // cart_items.price_cents
	Type         string    `json:"type"`                   // cart_items.type
	CreatedAt    time.Time `json:"createdAt"`              // cart_items.created_at
}

// CartOwner identifies whose cart an operation targets.
type CartOwner struct {
	UserID    uint64 // 0 when anonymous
	SessionID string
}
