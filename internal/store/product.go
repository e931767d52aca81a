package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/catalogo-api/apiserver/types"
)

const productColumns = `id, name, description, price, stock, image, purchase_date, category_id`

// ProductRepository handles persistence for products.
type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (types.Product, error) {
	var product types.Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.Image,
		&product.PurchaseDate,
		&product.CategoryID,
	)
	return product, err
}

func (r *ProductRepository) List(ctx context.Context) ([]types.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]types.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int) (types.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	return product, nil
}

// Create inserts the product and returns the row as stored, so price and
// purchase_date reflect the column precision.
func (r *ProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	const query = `
		INSERT INTO products (name, description, price, stock, image, purchase_date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + productColumns
	created, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Image,
		product.PurchaseDate,
		product.CategoryID,
	))
	if err != nil {
		return types.Product{}, translate(err)
	}
	return created, nil
}

// Update overwrites every mutable column and returns the stored row.
func (r *ProductRepository) Update(ctx context.Context, product types.Product) (types.Product, error) {
	const query = `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			stock = $4,
			image = $5,
			purchase_date = $6,
			category_id = $7
		WHERE id = $8
		RETURNING ` + productColumns
	updated, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Image,
		product.PurchaseDate,
		product.CategoryID,
		product.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, translate(err)
	}
	return updated, nil
}

// Delete removes the product and returns the row as it was.
func (r *ProductRepository) Delete(ctx context.Context, id int) (types.Product, error) {
	const query = `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, translate(err)
	}
	return product, nil
}
