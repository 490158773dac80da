// Package postgres contains pgx-backed implementations of the repository
// interfaces. Every repository is written against database.DBTX so the same
// methods run standalone against the pool or bound to a transaction via
// WithTx.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Es-saiydy/webService/pkg/database"
)

// defaultPerPage is used when a listing is requested without a page size.
const defaultPerPage = 10

// limitOffset converts 1-based page parameters into LIMIT/OFFSET values.
func limitOffset(page, perPage int) (int, int) {
	limit := perPage
	if limit <= 0 {
		limit = defaultPerPage
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	return limit, offset
}

// existingIDs returns the subset of ids present in the given table. The table
// name is always a compile-time constant supplied by a repository method.
func existingIDs(ctx context.Context, db database.DBTX, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = ANY($1)`, table)

	rows, err := db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("check existing %s: %w", table, err)
	}
	defer rows.Close()

	found := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, err)
		}
		found = append(found, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", table, err)
	}

	return found, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
