package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/pkg/database"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

const orderColumns = "id, user_id, product_ids, total, payment, created_at, updated_at"

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *OrderRepository) WithTx(tx database.DBTX) repository.OrderRepository {
	return &OrderRepository{db: tx}
}

// Create inserts a new order and fills in its generated ID and timestamps.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (user_id, product_ids, total, payment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, o.UserID, o.ProductIDs, o.Total, o.Payment).Scan(
		&o.ID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	var o domain.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.ProductIDs,
		&o.Total,
		&o.Payment,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &o, nil
}

// List returns orders with the total count.
func (r *OrderRepository) List(ctx context.Context, params repository.ListParams) ([]domain.Order, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		ORDER BY id
		LIMIT $1 OFFSET $2`,
		orderColumns,
	)

	limit, offset := limitOffset(params.Page, params.PerPage)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders     = []domain.Order{}
		totalCount int
	)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.ProductIDs,
			&o.Total,
			&o.Payment,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, totalCount, nil
}

// Update modifies an existing order.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE orders
		SET user_id = $1, product_ids = $2, total = $3, payment = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.db.Exec(ctx, query, o.UserID, o.ProductIDs, o.Total, o.Payment, o.UpdatedAt, o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", o.ID)
	}

	return nil
}

// Delete removes an order from the database by its ID.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// ExistsByUser reports whether any order references the given user.
func (r *OrderRepository) ExistsByUser(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check orders by user: %w", err)
	}
	return exists, nil
}
