package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository handles credit package database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns all purchasable packages, cheapest first
func (r *Repository) ListActive(ctx context.Context) ([]Package, error) {
	query := `
		SELECT id, product_id, name, description, credits, price_cents, currency, one_time, active, created_at
		FROM credit_packages
		WHERE active = true
		ORDER BY price_cents ASC
	`
	packages := make([]Package, 0)
	err := r.db.SelectContext(ctx, &packages, query)
	return packages, err
}

// GetByProductID returns one package by its store product id, or nil if absent
func (r *Repository) GetByProductID(ctx context.Context, productID string) (*Package, error) {
	query := `
		SELECT id, product_id, name, description, credits, price_cents, currency, one_time, active, created_at
		FROM credit_packages
		WHERE product_id = $1 AND active = true
	`
	var p Package
	err := r.db.GetContext(ctx, &p, query, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
