package inventory

import "github.com/uptrace/bun"

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID    string `bun:"id,pk" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Email string `bun:"email,notnull" json:"email"`
	Phone string `bun:"phone" json:"phone"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID               string  `bun:"id,pk" json:"id"`
	CustomerID       string  `bun:"customer_id,notnull" json:"customer_id"`
	SKU              string  `bun:"sku,notnull" json:"sku"`
	Status           string  `bun:"status,notnull" json:"status"`
	PlacedAt         string  `bun:"placed_at,notnull" json:"placed_at"`
	ExpectedDelivery string  `bun:"expected_delivery" json:"expected_delivery"`
	TotalAmount      float64 `bun:"total_amount,notnull" json:"total_amount"`
}

type Item struct {
	bun.BaseModel `bun:"table:inventory"`

	SKU      string `bun:"sku,pk" json:"sku"`
	Name     string `bun:"name,notnull" json:"name"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`
	Reserved int    `bun:"reserved,notnull,default:0" json:"reserved"`
}

type Note struct {
	bun.BaseModel `bun:"table:notes"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	EntityType string `bun:"entity_type,notnull" json:"entity_type"`
	EntityID   string `bun:"entity_id,notnull" json:"entity_id"`
	Author     string `bun:"author,notnull" json:"author"`
	Body       string `bun:"body,notnull" json:"body"`
	CreatedAt  string `bun:"created_at,notnull" json:"created_at"`
}
