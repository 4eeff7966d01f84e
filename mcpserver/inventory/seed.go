package inventory

import (
	"context"
	"fmt"
)

// Demo dataset: a small jewelry shop snapshot frozen in February 2025.
// RING-102 is fully reserved on purpose so stock checks have an
// interesting negative case.
func (s *Store) seed(ctx context.Context) error {
	customers := []Customer{
		{ID: "cust_001", Name: "Lisa Park", Email: "lisa.park@example.com", Phone: "+1-555-0101"},
		{ID: "cust_002", Name: "Daniel Kim", Email: "daniel.kim@example.com", Phone: "+1-555-0102"},
		{ID: "cust_003", Name: "Amelia Stone", Email: "amelia.stone@example.com", Phone: "+1-555-0103"},
		{ID: "cust_004", Name: "Marcus Rivera", Email: "marcus.rivera@example.com", Phone: "+1-555-0104"},
		{ID: "cust_005", Name: "Sarah Chen", Email: "sarah.chen@example.com", Phone: "+1-555-0105"},
	}

	items := []Item{
		{SKU: "RING-101", Name: "18K Rose Gold Engagement Ring", Quantity: 8, Reserved: 3},
		{SKU: "RING-102", Name: "Platinum Solitaire Diamond Ring", Quantity: 2, Reserved: 2},
		{SKU: "BRAC-301", Name: "Platinum Tennis Bracelet", Quantity: 4, Reserved: 2},
		{SKU: "BRAC-302", Name: "18K White Gold Diamond Bracelet", Quantity: 0, Reserved: 0},
		{SKU: "NECK-210", Name: "White Gold Diamond Necklace", Quantity: 2, Reserved: 1},
		{SKU: "NECK-211", Name: "Rose Gold Pearl Pendant", Quantity: 6, Reserved: 0},
		{SKU: "EARR-401", Name: "Diamond Stud Earrings 2ct", Quantity: 5, Reserved: 1},
	}

	orders := []Order{
		{ID: "ORD-2038", CustomerID: "cust_001", SKU: "RING-101", Status: "shipped",
			PlacedAt: "2025-02-01T10:00:00Z", ExpectedDelivery: "2025-02-05T12:00:00Z", TotalAmount: 2499.00},
		{ID: "ORD-2041", CustomerID: "cust_002", SKU: "BRAC-301", Status: "delivered",
			PlacedAt: "2025-02-01T08:00:00Z", ExpectedDelivery: "2025-02-04T12:00:00Z", TotalAmount: 3299.00},
		{ID: "ORD-2050", CustomerID: "cust_003", SKU: "NECK-210", Status: "processing",
			PlacedAt: "2025-02-07T14:00:00Z", ExpectedDelivery: "2025-02-12T12:00:00Z", TotalAmount: 4599.00},
		{ID: "ORD-2035", CustomerID: "cust_004", SKU: "BRAC-302", Status: "returned",
			PlacedAt: "2025-01-25T09:00:00Z", ExpectedDelivery: "2025-01-28T12:00:00Z", TotalAmount: 5299.00},
		{ID: "ORD-2055", CustomerID: "cust_005", SKU: "RING-102", Status: "processing",
			PlacedAt: "2025-02-08T11:00:00Z", ExpectedDelivery: "2025-02-15T12:00:00Z", TotalAmount: 8999.00},
		{ID: "ORD-2052", CustomerID: "cust_001", SKU: "EARR-401", Status: "processing",
			PlacedAt: "2025-02-06T15:00:00Z", ExpectedDelivery: "2025-02-11T12:00:00Z", TotalAmount: 1899.00},
	}

	const created = "2025-02-09T12:00:00Z"
	notes := []Note{
		{EntityType: "order", EntityID: "ORD-2038", Author: "Support", CreatedAt: created,
			Body: "Customer (Lisa Park) reported order is 4 days late. Carrier tracking shows package delayed at distribution center."},
		{EntityType: "customer", EntityID: "cust_001", Author: "Support", CreatedAt: created,
			Body: "High-value customer, repeat buyer. Prefers concise email communication. Previous issue: 2025-01-15 late shipment resolved with $200 credit."},
		{EntityType: "order", EntityID: "ORD-2035", Author: "Support", CreatedAt: created,
			Body: "Customer returned bracelet due to sizing issue. Return received 2025-02-08. Refund authorization pending."},
		{EntityType: "customer", EntityID: "cust_004", Author: "Support", CreatedAt: created,
			Body: "First-time customer, high-value purchase ($5,299). Return within 14 days for full refund per policy. No prior complaints."},
		{EntityType: "inventory", EntityID: "BRAC-302", Author: "Ops", CreatedAt: created,
			Body: "Out of stock. 2 units ordered from supplier on 2025-02-05, ETA 2025-02-20. 1 unit reserved for return processing."},
		{EntityType: "inventory", EntityID: "RING-102", Author: "Ops", CreatedAt: created,
			Body: "Low stock (2 units). Both units reserved: 1 for ORD-2055, 1 hold for quality check. Next shipment ETA 2025-02-28."},
		{EntityType: "order", EntityID: "ORD-2052", Author: "Support", CreatedAt: created,
			Body: "Earrings in high demand. Currently low stock (5 total, 1 reserved). Customer notified of 3-5 day processing delay."},
	}

	if _, err := s.db.NewInsert().Model(&customers).Exec(ctx); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	if _, err := s.db.NewInsert().Model(&items).Exec(ctx); err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	if _, err := s.db.NewInsert().Model(&orders).Exec(ctx); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	if _, err := s.db.NewInsert().Model(&notes).Exec(ctx); err != nil {
		return fmt.Errorf("seed notes: %w", err)
	}
	return nil
}
