package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Es-saiydy/webService/internal/repository"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

// Refs is the set of cross-entity references a write wants to rely on.
// Duplicate IDs are checked once.
type Refs struct {
	UserIDs    []int64
	ProductIDs []int64
}

// ReferentialValidator batch-checks that referenced entities exist before a
// dependent write begins. It reports every missing reference, not just the
// first, so a client can fix all of them in one round trip.
type ReferentialValidator struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

// NewReferentialValidator creates a validator over the given repositories.
// Bind the repositories to a transaction first when the check must hold for
// the duration of that transaction.
func NewReferentialValidator(users repository.UserRepository, products repository.ProductRepository) *ReferentialValidator {
	return &ReferentialValidator{
		users:    users,
		products: products,
	}
}

// Validate checks every reference in refs with one query per entity kind.
// If any are missing it returns a ReferenceNotFoundError listing all of them,
// users first, then products, each kind in ascending ID order.
func (v *ReferentialValidator) Validate(ctx context.Context, refs Refs) error {
	var missing []apperrors.MissingRef

	missingUsers, err := v.missingIDs(ctx, v.users.ExistingIDs, refs.UserIDs)
	if err != nil {
		return fmt.Errorf("validate user refs: %w", err)
	}
	for _, id := range missingUsers {
		missing = append(missing, apperrors.MissingRef{Kind: "user", ID: id})
	}

	missingProducts, err := v.missingIDs(ctx, v.products.ExistingIDs, refs.ProductIDs)
	if err != nil {
		return fmt.Errorf("validate product refs: %w", err)
	}
	for _, id := range missingProducts {
		missing = append(missing, apperrors.MissingRef{Kind: "product", ID: id})
	}

	if len(missing) > 0 {
		return apperrors.ReferenceNotFound(missing)
	}

	return nil
}

// missingIDs dedupes ids and returns the ones lookup does not report as
// existing, in ascending order.
func (v *ReferentialValidator) missingIDs(ctx context.Context, lookup func(context.Context, []int64) ([]int64, error), ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := lookup(ctx, unique)
	if err != nil {
		return nil, err
	}

	existing := make(map[int64]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}

	var missing []int64
	for _, id := range unique {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })

	return missing, nil
}
