package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var ErrNotFound = errors.New("not found")

// Store holds the operational data behind the inventory tool set. A file
// path gives a persistent database; ":memory:" gives a throwaway one.
type Store struct {
	db *bun.DB
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared", path)
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer; shared cache plus one connection keeps
	// concurrent tool calls from tripping over table locks.
	sqldb.SetMaxOpenConns(1)

	return &Store{db: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the schema and loads the demo dataset when the database is
// empty. Re-running against an initialized database is a no-op.
func (s *Store) Init(ctx context.Context) error {
	models := []any{
		(*Customer)(nil),
		(*Order)(nil),
		(*Item)(nil),
		(*Note)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	count, err := s.db.NewSelect().Model((*Customer)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count customers: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.seed(ctx)
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	c := new(Customer)
	err := s.db.NewSelect().Model(c).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context, limit int) ([]Customer, error) {
	var customers []Customer
	err := s.db.NewSelect().Model(&customers).Order("id").Limit(limit).Scan(ctx)
	return customers, err
}

func (s *Store) SearchCustomers(ctx context.Context, query string) ([]Customer, error) {
	like := "%" + strings.ToLower(query) + "%"
	var customers []Customer
	err := s.db.NewSelect().Model(&customers).
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like).
		Order("id").
		Scan(ctx)
	return customers, err
}

func (s *Store) GetOrder(ctx context.Context, id string) (*Order, error) {
	o := new(Order)
	err := s.db.NewSelect().Model(o).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o, err
}

func (s *Store) ListOrders(ctx context.Context, status string, limit int) ([]Order, error) {
	q := s.db.NewSelect().Model((*Order)(nil)).Order("placed_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", strings.ToLower(status))
	}
	var orders []Order
	err := q.Model(&orders).Scan(ctx)
	return orders, err
}

func (s *Store) GetItem(ctx context.Context, sku string) (*Item, error) {
	item := new(Item)
	err := s.db.NewSelect().Model(item).Where("sku = ?", sku).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sku %s: %w", sku, ErrNotFound)
	}
	return item, err
}

func (s *Store) ListItems(ctx context.Context, limit int) ([]Item, error) {
	var items []Item
	err := s.db.NewSelect().Model(&items).Order("sku").Limit(limit).Scan(ctx)
	return items, err
}

func (s *Store) Notes(ctx context.Context, entityType, entityID string) ([]Note, error) {
	var notes []Note
	err := s.db.NewSelect().Model(&notes).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at").
		Scan(ctx)
	return notes, err
}

func (s *Store) AddNote(ctx context.Context, entityType, entityID, author, body string) (*Note, error) {
	note := &Note{
		EntityType: entityType,
		EntityID:   entityID,
		Author:     author,
		Body:       body,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.db.NewInsert().Model(note).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return note, nil
}
