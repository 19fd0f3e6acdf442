package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inventoryhq/catalog/pkg/api"
	"github.com/inventoryhq/catalog/pkg/apperr"
)

// ProductStore implements api.ProductStore on PostgreSQL
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new product store
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// Create inserts a new product and fills in the generated ID and timestamps
func (s *ProductStore) Create(ctx context.Context, product *api.Product) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, quantity, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, product.Name, product.Description, product.Price, product.Quantity, product.Category).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "products_name_key") {
			return apperr.ErrProductNameTaken
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Get returns the product with the given ID
func (s *ProductStore) Get(ctx context.Context, id int64) (*api.Product, error) {
	product := &api.Product{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, quantity, category, created_at, updated_at
		FROM products WHERE id = $1
	`, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
		&product.Category,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// List returns all products ordered by ID
func (s *ProductStore) List(ctx context.Context) ([]*api.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, price, quantity, category, created_at, updated_at
		FROM products ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*api.Product, 0)
	for rows.Next() {
		product := &api.Product{}
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Quantity,
			&product.Category,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// Update replaces the mutable fields of an existing product
func (s *ProductStore) Update(ctx context.Context, product *api.Product) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, quantity = $4, category = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING created_at, updated_at
	`, product.Name, product.Description, product.Price, product.Quantity, product.Category, product.ID).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrProductNotFound
	}
	if err != nil {
		if isUniqueViolation(err, "products_name_key") {
			return apperr.ErrProductNameTaken
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes the product with the given ID
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperr.ErrProductNotFound
	}
	return nil
}

// ExistsByName reports whether a product with the name exists
func (s *ProductStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return exists, nil
}
