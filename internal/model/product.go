package model

import "time"

// Product is a merchandise item sold through the cart (`products` table).
type Product struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       Money     `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
	Inventory   int       `json:"inventory"`
	CreatedAt   time.Time `json:"createdAt"`
}
