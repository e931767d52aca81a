package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an item of the catalog. It belongs to exactly one category.
type Product struct {
	// ID is assigned by the store on insert and never changes.
	ID int `json:"id" db:"id"`

	// Name is the human-readable name of the product.
	Name string `json:"name" db:"name"`

	// Description is a free-form description of the product.
	Description string `json:"description" db:"description"`

	// Price is the unit price, kept as an exact decimal.
	Price decimal.Decimal `json:"price" db:"price"`

	// Stock is the number of units available.
	Stock int `json:"stock" db:"stock"`

	// Image references the product picture. When uploaded through the API
	// it holds the object storage key.
	Image string `json:"image" db:"image"`

	// PurchaseDate is when the stock was bought.
	PurchaseDate time.Time `json:"purchaseDate" db:"purchase_date"`

	// CategoryID references the owning category.
	CategoryID int `json:"categoryId" db:"category_id"`
}
