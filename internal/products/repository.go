// internal/products/repository.go
package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"loandoc-workers/internal/common/logger"
	"loandoc-workers/internal/models"
)

// Repository reads lender product reference data from PostgreSQL. The table
// is populated by a separate sync job from the staff backend; this side only
// ever queries it.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "products-repository"}),
	}
}

const listProductsQuery = `
	SELECT id, lender_id, lender_name, product_name, category, country,
	       amount_min, amount_max, required_documents
	FROM lender_products
	WHERE active = TRUE
	ORDER BY lender_name, product_name`

// ListActive returns every active lender product. Raw requirement payloads
// are kept as-is; normalization happens downstream.
func (r *Repository) ListActive(ctx context.Context) ([]models.LenderProduct, error) {
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("query lender products: %w", err)
	}
	defer rows.Close()

	var results []models.LenderProduct
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lender products: %w", err)
	}

	r.logger.Debug("listed lender products", map[string]interface{}{
		"count":      len(results),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return results, nil
}

const listProductsByCategoryQuery = `
	SELECT id, lender_id, lender_name, product_name, category, country,
	       amount_min, amount_max, required_documents
	FROM lender_products
	WHERE active = TRUE AND category = $1
	ORDER BY lender_name, product_name`

// ListByCategory returns the active products in one category.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]models.LenderProduct, error) {
	rows, err := r.db.QueryContext(ctx, listProductsByCategoryQuery, category)
	if err != nil {
		return nil, fmt.Errorf("query lender products by category: %w", err)
	}
	defer rows.Close()

	var results []models.LenderProduct
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lender products: %w", err)
	}
	return results, nil
}

func scanProduct(rows *sql.Rows) (models.LenderProduct, error) {
	var (
		product models.LenderProduct
		rawDocs []byte
	)
	err := rows.Scan(
		&product.ID, &product.LenderID, &product.LenderName,
		&product.ProductName, &product.Category, &product.Country,
		&product.AmountMin, &product.AmountMax, &rawDocs,
	)
	if err != nil {
		return models.LenderProduct{}, fmt.Errorf("scan lender product: %w", err)
	}

	if len(rawDocs) > 0 {
		var docs any
		if err := json.Unmarshal(rawDocs, &docs); err != nil {
			return models.LenderProduct{}, fmt.Errorf("decode required_documents for product %s: %w", product.ID, err)
		}
		product.RequiredDocs = docs
	}
	return product, nil
}
