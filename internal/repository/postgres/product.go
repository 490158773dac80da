package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/pkg/database"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

const productColumns = "id, name, about, price, review_ids, total_score, created_at, updated_at"

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ProductRepository) WithTx(tx database.DBTX) repository.ProductRepository {
	return &ProductRepository{db: tx}
}

// Create inserts a new product and fills in its generated ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (name, about, price, review_ids, total_score)
		VALUES ($1, $2, $3, '{}', 0)
		RETURNING id, review_ids, total_score, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, p.Name, p.About, p.Price).Scan(
		&p.ID,
		&p.ReviewIDs,
		&p.TotalScore,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	p, err := scanProductRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

// GetMany retrieves the products whose IDs appear in ids. The result carries
// one row per distinct existing ID, ordered by ID.
func (r *ProductRepository) GetMany(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ANY($1) ORDER BY id`, productColumns)

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Name != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Name+"%")
		argIndex++
	}

	if filter.About != nil {
		conditions = append(conditions, fmt.Sprintf("about ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.About+"%")
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() yields the total count in the same query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit, offset := limitOffset(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   = []domain.Product{}
		totalCount int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.About,
			&p.Price,
			&p.ReviewIDs,
			&p.TotalScore,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Update modifies a product's own fields. Aggregate fields are owned by the
// review service and left untouched here.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, about = $2, price = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query, p.Name, p.About, p.Price, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// SetAggregates overwrites a product's review_ids and total_score.
func (r *ProductRepository) SetAggregates(ctx context.Context, id int64, reviewIDs []int64, totalScore float64) error {
	if reviewIDs == nil {
		reviewIDs = []int64{}
	}

	query := `
		UPDATE products
		SET review_ids = $1, total_score = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, reviewIDs, totalScore, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set product aggregates: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.Consistency("product %d missing during aggregate recompute", id)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// ExistingIDs returns the subset of ids that exist in the store.
func (r *ProductRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return existingIDs(ctx, r.db, "products", ids)
}

// scanProductRow scans a single product from a QueryRow result.
func scanProductRow(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.About,
		&p.Price,
		&p.ReviewIDs,
		&p.TotalScore,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanProduct scans a product from a multi-row result.
func scanProduct(rows pgx.Rows, p *domain.Product) error {
	return rows.Scan(
		&p.ID,
		&p.Name,
		&p.About,
		&p.Price,
		&p.ReviewIDs,
		&p.TotalScore,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
