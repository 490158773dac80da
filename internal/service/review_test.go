package service

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Es-saiydy/webService/internal/repository/postgres"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

var testTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var reviewTestCols = []string{
	"id", "user_id", "product_id", "score", "content", "created_at", "updated_at",
}

func newReviewService(t *testing.T) (*ReviewService, pgxmock.PgxPoolIface, *capturePublisher) {
	t.Helper()
	mockDB := newMockDB(t)
	publisher := &capturePublisher{}
	svc := NewReviewService(
		mockDB,
		postgres.NewReviewRepository(mockDB),
		postgres.NewProductRepository(mockDB),
		postgres.NewUserRepository(mockDB),
		publisher,
		newTestLogger(),
	)
	return svc, mockDB, publisher
}

func TestCreateReview_Success(t *testing.T) {
	svc, mockDB, publisher := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT id FROM users WHERE id = ANY").
		WithArgs([]int64{2}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{1}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mockDB.ExpectQuery("INSERT INTO reviews").
		WithArgs(int64(2), int64(1), 4, "Solid product").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(10), testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 4, "Solid product", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{10}, float64(4), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	review, err := svc.CreateReview(ctx, CreateReviewInput{
		UserID:    2,
		ProductID: 1,
		Score:     4,
		Content:   "Solid product",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), review.ID)
	assert.Equal(t, []string{"review.created"}, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateReview_InvalidScore(t *testing.T) {
	svc, mockDB, _ := newReviewService(t)
	defer mockDB.Close()

	_, err := svc.CreateReview(context.Background(), CreateReviewInput{
		UserID:    2,
		ProductID: 1,
		Score:     6,
		Content:   "too good",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	// No transaction is begun for input the service can reject locally.
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateReview_EmptyContent(t *testing.T) {
	svc, mockDB, _ := newReviewService(t)
	defer mockDB.Close()

	_, err := svc.CreateReview(context.Background(), CreateReviewInput{
		UserID:    2,
		ProductID: 1,
		Score:     3,
		Content:   "   ",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateReview_MissingRefsListsAll(t *testing.T) {
	svc, mockDB, publisher := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT id FROM users WHERE id = ANY").
		WithArgs([]int64{4}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{7}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mockDB.ExpectRollback()

	_, err := svc.CreateReview(ctx, CreateReviewInput{
		UserID:    4,
		ProductID: 7,
		Score:     5,
		Content:   "never lands",
	})
	require.Error(t, err)

	var refErr *apperrors.ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []apperrors.MissingRef{
		{Kind: "user", ID: 4},
		{Kind: "product", ID: 7},
	}, refErr.Missing)
	assert.Empty(t, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestUpdateReview_MoveRecomputesBothParents(t *testing.T) {
	svc, mockDB, publisher := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs(int64(10)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 4, "Solid product", testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mockDB.ExpectExec("UPDATE reviews").
		WithArgs(int64(2), int64(3), 4, "Solid product", pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// New parent gains the review.
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(3)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(3), 4, "Solid product", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{10}, float64(4), pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// Old parent is left with no reviews and drops to zero.
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(reviewTestCols))
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{}, float64(0), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	newProduct := int64(3)
	review, err := svc.UpdateReview(ctx, 10, UpdateReviewInput{ProductID: &newProduct})
	require.NoError(t, err)
	assert.Equal(t, int64(3), review.ProductID)
	assert.Equal(t, []string{"review.updated"}, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestUpdateReview_NotFound(t *testing.T) {
	svc, mockDB, _ := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows(reviewTestCols))
	mockDB.ExpectRollback()

	score := 3
	_, err := svc.UpdateReview(ctx, 404, UpdateReviewInput{Score: &score})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeleteReview_RecomputesParent(t *testing.T) {
	svc, mockDB, publisher := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs(int64(10)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 4, "Solid product", testTime, testTime),
		)
	mockDB.ExpectExec("DELETE FROM reviews").
		WithArgs(int64(10)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(11), int64(3), int64(1), 5, "Great", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{11}, float64(5), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	err := svc.DeleteReview(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"review.deleted"}, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeleteReview_MissingParentIsConsistencyViolation(t *testing.T) {
	svc, mockDB, publisher := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs(int64(10)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 4, "Solid product", testTime, testTime),
		)
	mockDB.ExpectExec("DELETE FROM reviews").
		WithArgs(int64(10)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(reviewTestCols))
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{}, float64(0), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mockDB.ExpectRollback()

	err := svc.DeleteReview(ctx, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConsistency)
	assert.Empty(t, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

// Two reviews scoring 4 and 2 average the product to 3.0; deleting the 4
// recomputes it to 2.0 from the single remaining review.
func TestReviewLifecycle_AggregateFollowsChildSet(t *testing.T) {
	svc, mockDB, _ := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	// First review: score 4, the product averages 4.0.
	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT id FROM users WHERE id = ANY").
		WithArgs([]int64{2}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{1}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mockDB.ExpectQuery("INSERT INTO reviews").
		WithArgs(int64(2), int64(1), 4, "Solid product").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(10), testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 4, "Solid product", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{10}, float64(4), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	first, err := svc.CreateReview(ctx, CreateReviewInput{
		UserID: 2, ProductID: 1, Score: 4, Content: "Solid product",
	})
	require.NoError(t, err)

	// Second review: score 2, the product averages 3.0.
	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT id FROM users WHERE id = ANY").
		WithArgs([]int64{3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{1}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mockDB.ExpectQuery("INSERT INTO reviews").
		WithArgs(int64(3), int64(1), 2, "Disappointing").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(11), testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 4, "Solid product", testTime, testTime).
				AddRow(int64(11), int64(3), int64(1), 2, "Disappointing", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{10, 11}, float64(3), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	_, err = svc.CreateReview(ctx, CreateReviewInput{
		UserID: 3, ProductID: 1, Score: 2, Content: "Disappointing",
	})
	require.NoError(t, err)

	// Deleting the 4 leaves only the 2; the product averages 2.0.
	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs(int64(10)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 4, "Solid product", testTime, testTime),
		)
	mockDB.ExpectExec("DELETE FROM reviews").
		WithArgs(int64(10)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(11), int64(3), int64(1), 2, "Disappointing", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{11}, float64(2), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	require.NoError(t, svc.DeleteReview(ctx, first.ID))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

// A score update without a product move recomputes only the single parent
// from the full current child set.
func TestUpdateReview_ScoreChangeFullRecompute(t *testing.T) {
	svc, mockDB, _ := newReviewService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE id").
		WithArgs(int64(10)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 2, "Meh", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE reviews").
		WithArgs(int64(2), int64(1), 5, "Meh", pgxmock.AnyArg(), int64(10)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectQuery("SELECT .+ FROM reviews WHERE product_id").
		WithArgs(int64(1)).
		WillReturnRows(
			pgxmock.NewRows(reviewTestCols).
				AddRow(int64(10), int64(2), int64(1), 5, "Meh", testTime, testTime).
				AddRow(int64(11), int64(3), int64(1), 4, "Good", testTime, testTime),
		)
	mockDB.ExpectExec("UPDATE products").
		WithArgs([]int64{10, 11}, 4.5, pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	score := 5
	review, err := svc.UpdateReview(ctx, 10, UpdateReviewInput{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Score)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
