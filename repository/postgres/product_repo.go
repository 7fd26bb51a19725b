package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

const productColumns = `id, name, description, price, sale_price, image_url, created_by, created_at, updated_at`

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation of ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	const query = `
	SELECT ` + productColumns + `
	FROM products
	WHERE (NOT $1 OR (sale_price IS NOT NULL AND sale_price < price))
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, filter.OnSaleOnly, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, domain.ErrInvalidPayload
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO products (id, name, description, price, sale_price, image_url, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.SalePrice,
		product.ImageURL,
		product.CreatedBy,
	).Scan(&product.CreatedAt, &product.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.ErrCodeConflict, "product already exists")
		}
		return nil, err
	}

	return product, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.SalePrice,
		&product.ImageURL,
		&product.CreatedBy,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}
