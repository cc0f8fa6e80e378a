package repository

import (
	"context"
	"fmt"

	"eshop/mapper/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository interface {
	SaveMappedProduct(ctx context.Context, runID string, product *domain.MappedProduct) error
}

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) SaveMappedProduct(ctx context.Context, runID string, product *domain.MappedProduct) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to serialize mapped product: %w", err)
	}

	query := `
	INSERT INTO mapped_products (product_id, run_id, data)
	VALUES ($1, $2, $3)
	ON CONFLICT (product_id)
	DO UPDATE SET run_id = $2, data = $3`
	_, err = r.db.Exec(ctx, query, product.ID, runID, data)
	if err != nil {
		return fmt.Errorf("failed to save mapped product: %w", err)
	}

	return nil
}
