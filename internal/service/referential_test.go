package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

func TestReferentialValidator_AllPresent(t *testing.T) {
	users := new(mockUserRepository)
	products := new(mockProductRepository)
	v := NewReferentialValidator(users, products)
	ctx := context.Background()

	users.On("ExistingIDs", ctx, []int64{2}).Return([]int64{2}, nil)
	products.On("ExistingIDs", ctx, []int64{1, 3}).Return([]int64{1, 3}, nil)

	err := v.Validate(ctx, Refs{UserIDs: []int64{2}, ProductIDs: []int64{1, 3}})
	assert.NoError(t, err)
	users.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestReferentialValidator_ReportsAllMissing(t *testing.T) {
	users := new(mockUserRepository)
	products := new(mockProductRepository)
	v := NewReferentialValidator(users, products)
	ctx := context.Background()

	users.On("ExistingIDs", ctx, []int64{4}).Return([]int64{}, nil)
	products.On("ExistingIDs", ctx, []int64{1, 7, 9}).Return([]int64{1}, nil)

	err := v.Validate(ctx, Refs{UserIDs: []int64{4}, ProductIDs: []int64{1, 7, 9}})
	require.Error(t, err)

	var refErr *apperrors.ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []apperrors.MissingRef{
		{Kind: "user", ID: 4},
		{Kind: "product", ID: 7},
		{Kind: "product", ID: 9},
	}, refErr.Missing)
	assert.ErrorIs(t, err, apperrors.ErrReferenceNotFound)
}

func TestReferentialValidator_DeduplicatesIDs(t *testing.T) {
	users := new(mockUserRepository)
	products := new(mockProductRepository)
	v := NewReferentialValidator(users, products)
	ctx := context.Background()

	// Duplicate occurrences collapse to a single check per ID.
	products.On("ExistingIDs", ctx, []int64{1, 3}).Return([]int64{1, 3}, nil)

	err := v.Validate(ctx, Refs{ProductIDs: []int64{1, 1, 3, 1}})
	assert.NoError(t, err)
	products.AssertExpectations(t)
}

func TestReferentialValidator_MissingDuplicateReportedOnce(t *testing.T) {
	users := new(mockUserRepository)
	products := new(mockProductRepository)
	v := NewReferentialValidator(users, products)
	ctx := context.Background()

	products.On("ExistingIDs", ctx, []int64{7}).Return([]int64{}, nil)

	err := v.Validate(ctx, Refs{ProductIDs: []int64{7, 7, 7}})
	require.Error(t, err)

	var refErr *apperrors.ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []apperrors.MissingRef{{Kind: "product", ID: 7}}, refErr.Missing)
}

func TestReferentialValidator_EmptyRefs(t *testing.T) {
	users := new(mockUserRepository)
	products := new(mockProductRepository)
	v := NewReferentialValidator(users, products)

	err := v.Validate(context.Background(), Refs{})
	assert.NoError(t, err)
	users.AssertNotCalled(t, "ExistingIDs")
	products.AssertNotCalled(t, "ExistingIDs")
}

func TestReferentialValidator_LookupFailure(t *testing.T) {
	users := new(mockUserRepository)
	products := new(mockProductRepository)
	v := NewReferentialValidator(users, products)
	ctx := context.Background()

	users.On("ExistingIDs", ctx, []int64{2}).Return([]int64{}, errors.New("connection reset"))

	err := v.Validate(ctx, Refs{UserIDs: []int64{2}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrReferenceNotFound)
}
