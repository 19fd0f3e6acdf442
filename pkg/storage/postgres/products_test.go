package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventoryhq/catalog/pkg/api"
	"github.com/inventoryhq/catalog/pkg/apperr"
)

func newMockProductStore(t *testing.T) (*ProductStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProductStore(db), mock
}

var productColumns = []string{
	"id", "name", "description", "price", "quantity", "category", "created_at", "updated_at",
}

func TestProductStoreCreate(t *testing.T) {
	store, mock := newMockProductStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Laptop", "A laptop", "999.99", 3, "electronics").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	product := &api.Product{
		Name:        "Laptop",
		Description: "A laptop",
		Price:       "999.99",
		Quantity:    3,
		Category:    "electronics",
	}
	require.NoError(t, store.Create(context.Background(), product))
	assert.Equal(t, int64(1), product.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreCreateNameConflict(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_name_key"})

	err := store.Create(context.Background(), &api.Product{Name: "Laptop", Price: "1.00"})
	assert.ErrorIs(t, err, apperr.ErrProductNameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreGet(t *testing.T) {
	store, mock := newMockProductStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, name, description, price, quantity, category`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(int64(1), "Laptop", "A laptop", "999.99", 3, "electronics", now, now))

	product, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", product.Name)
	assert.Equal(t, "999.99", product.Price)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreGetNotFound(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectQuery(`SELECT id, name, description`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreList(t *testing.T) {
	store, mock := newMockProductStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, name, description, price, quantity, category`).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(int64(1), "Laptop", "", "999.99", 3, "", now, now).
			AddRow(int64(2), "Mouse", "", "19.99", 50, "", now, now))

	products, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Laptop", products[0].Name)
	assert.Equal(t, "Mouse", products[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreListEmpty(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectQuery(`SELECT id, name, description`).
		WillReturnRows(sqlmock.NewRows(productColumns))

	products, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreUpdate(t *testing.T) {
	store, mock := newMockProductStore(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE products`).
		WithArgs("Laptop Pro", "Updated", "1299.99", 2, "electronics", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	product := &api.Product{
		ID:          1,
		Name:        "Laptop Pro",
		Description: "Updated",
		Price:       "1299.99",
		Quantity:    2,
		Category:    "electronics",
	}
	require.NoError(t, store.Update(context.Background(), product))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreUpdateNotFound(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectQuery(`UPDATE products`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := store.Update(context.Background(), &api.Product{ID: 42, Name: "x", Price: "1.00"})
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreUpdateNameConflict(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectQuery(`UPDATE products`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "products_name_key"})

	err := store.Update(context.Background(), &api.Product{ID: 1, Name: "Mouse", Price: "1.00"})
	assert.ErrorIs(t, err, apperr.ErrProductNameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreDelete(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectExec(`DELETE FROM products`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreDeleteNotFound(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectExec(`DELETE FROM products`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductStoreExistsByName(t *testing.T) {
	store, mock := newMockProductStore(t)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM products WHERE name`).
		WithArgs("Laptop").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ExistsByName(context.Background(), "Laptop")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}
