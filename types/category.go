package types

// Category groups products in the catalog.
type Category struct {
	// ID is assigned by the store on insert and never changes.
	ID int `json:"id" db:"id"`

	// Name is the human-readable name of the category.
	Name string `json:"name" db:"name"`

	// Description is a free-form description of the category.
	Description string `json:"description" db:"description"`
}
