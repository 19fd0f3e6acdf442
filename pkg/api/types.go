package api

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/inventoryhq/catalog/pkg/apperr"
	"github.com/inventoryhq/catalog/pkg/auth"
)

// Product is a catalog entry. Price is a decimal string with at most
// eight integer digits and two fraction digits, kept as text end to end
// so no float rounding ever touches money.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductStore persists products. Implementations must enforce name
// uniqueness at the storage layer.
type ProductStore interface {
	// Create inserts a new product and fills in its generated ID and
	// timestamps. Returns apperr.ErrProductNameTaken on a name conflict.
	Create(ctx context.Context, product *Product) error

	// Get returns the product with the given ID, or apperr.ErrProductNotFound
	Get(ctx context.Context, id int64) (*Product, error)

	// List returns all products ordered by ID
	List(ctx context.Context) ([]*Product, error)

	// Update replaces the mutable fields of an existing product. Returns
	// apperr.ErrProductNotFound or apperr.ErrProductNameTaken.
	Update(ctx context.Context, product *Product) error

	// Delete removes the product, or returns apperr.ErrProductNotFound
	Delete(ctx context.Context, id int64) error

	// ExistsByName reports whether a product with the name exists
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Validate checks the registration fields in declaration order and
// returns the first violation as a coded 400 error.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return apperr.ValidationCode("v-1", "username is required")
	}
	if len(r.Username) < 3 || len(r.Username) > 50 {
		return apperr.ValidationCode("v-2", "username must be between 3 and 50 characters")
	}
	if strings.TrimSpace(r.Password) == "" {
		return apperr.ValidationCode("v-3", "password is required")
	}
	if len(r.Password) < 6 {
		return apperr.ValidationCode("v-4", "password must be at least 6 characters")
	}
	if len(r.Password) > auth.MaxPasswordBytes {
		return apperr.ValidationCode("v-4", "password must not exceed 72 bytes")
	}
	if strings.TrimSpace(r.Email) == "" {
		return apperr.ValidationCode("v-5", "email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return apperr.ValidationCode("v-6", "email must be a valid email address")
	}
	return nil
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both credential fields are present
func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return apperr.ValidationCode("v-1", "username is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		return apperr.ValidationCode("v-3", "password is required")
	}
	return nil
}

// priceRe matches a positive decimal with up to 8 integer digits and up
// to 2 fraction digits.
var priceRe = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// ProductRequest is the body of product create and update calls
type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    *int   `json:"quantity"`
	Category    string `json:"category"`
}

// Validate checks the product fields in declaration order and returns
// the first violation as a coded 400 error.
func (r *ProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperr.ValidationCode("v-7", "product name is required")
	}
	if len(r.Name) > 100 {
		return apperr.ValidationCode("v-8", "product name must not exceed 100 characters")
	}
	if len(r.Description) > 500 {
		return apperr.ValidationCode("v-9", "description must not exceed 500 characters")
	}
	if strings.TrimSpace(r.Price) == "" {
		return apperr.ValidationCode("v-10", "price is required")
	}
	if !priceRe.MatchString(r.Price) {
		return apperr.ValidationCode("v-12", "price must have at most 8 integer and 2 fraction digits")
	}
	if isZeroPrice(r.Price) {
		return apperr.ValidationCode("v-11", "price must be greater than zero")
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		return apperr.ValidationCode("v-13", "quantity must not be negative")
	}
	if len(r.Category) > 50 {
		return apperr.ValidationCode("v-14", "category must not exceed 50 characters")
	}
	return nil
}

// isZeroPrice reports whether a price string already matched by priceRe
// has no nonzero digit.
func isZeroPrice(price string) bool {
	for _, c := range price {
		if c >= '1' && c <= '9' {
			return false
		}
	}
	return true
}

// ToProduct builds a Product from the validated request. Quantity
// defaults to zero when omitted.
func (r *ProductRequest) ToProduct() *Product {
	quantity := 0
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return &Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    quantity,
		Category:    r.Category,
	}
}
