package service

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/internal/repository/postgres"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

var productTestCols = []string{
	"id", "name", "about", "price", "review_ids", "total_score", "created_at", "updated_at",
}

var orderTestCols = []string{
	"id", "user_id", "product_ids", "total", "payment", "created_at", "updated_at",
}

func newOrderService(t *testing.T) (*OrderService, pgxmock.PgxPoolIface, *capturePublisher) {
	t.Helper()
	mockDB := newMockDB(t)
	publisher := &capturePublisher{}
	svc := NewOrderService(
		mockDB,
		postgres.NewOrderRepository(mockDB),
		postgres.NewProductRepository(mockDB),
		postgres.NewUserRepository(mockDB),
		publisher,
		newTestLogger(),
	)
	return svc, mockDB, publisher
}

func productTestRow(id, price int64) []any {
	return []any{id, "Widget", "A fine widget for fine people", price, []int64{}, float64(0), testTime, testTime}
}

func TestCreateOrder_SnapshotsPricesWithMarkup(t *testing.T) {
	svc, mockDB, publisher := newOrderService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT id FROM users WHERE id = ANY").
		WithArgs([]int64{2}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{1, 3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(3)))
	mockDB.ExpectQuery("SELECT .+ FROM products WHERE id = ANY").
		WithArgs([]int64{1, 1, 3}).
		WillReturnRows(
			pgxmock.NewRows(productTestCols).
				AddRow(productTestRow(1, 1000)...).
				AddRow(productTestRow(3, 500)...),
		)
	// Subtotal is 1000 + 1000 + 500 = 2500 cents, duplicates billed per
	// occurrence; total is 2500 * 1.2 = 3000.
	mockDB.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(2), []int64{1, 1, 3}, int64(3000), false).
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(5), testTime, testTime),
		)
	mockDB.ExpectCommit()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: 2, ProductIDs: []int64{1, 1, 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), order.Total)
	assert.False(t, order.Payment)
	assert.Equal(t, []string{"order.created"}, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateOrder_EmptyProducts(t *testing.T) {
	svc, mockDB, _ := newOrderService(t)
	defer mockDB.Close()

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestCreateOrder_MissingRefsListsAll(t *testing.T) {
	svc, mockDB, publisher := newOrderService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT id FROM users WHERE id = ANY").
		WithArgs([]int64{9}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{1, 7}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mockDB.ExpectRollback()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: 9, ProductIDs: []int64{1, 7}})
	require.Error(t, err)

	var refErr *apperrors.ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, []apperrors.MissingRef{
		{Kind: "user", ID: 9},
		{Kind: "product", ID: 7},
	}, refErr.Missing)
	assert.Empty(t, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestUpdateOrder_RecomputesTotalOnProductChange(t *testing.T) {
	svc, mockDB, publisher := newOrderService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(
			pgxmock.NewRows(orderTestCols).
				AddRow(int64(5), int64(2), []int64{1}, int64(1200), false, testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT id FROM products WHERE id = ANY").
		WithArgs([]int64{3}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mockDB.ExpectQuery("SELECT .+ FROM products WHERE id = ANY").
		WithArgs([]int64{3, 3}).
		WillReturnRows(pgxmock.NewRows(productTestCols).AddRow(productTestRow(3, 500)...))
	// New total: (500 + 500) * 1.2 = 1200.
	mockDB.ExpectExec("UPDATE orders").
		WithArgs(int64(2), []int64{3, 3}, int64(1200), false, pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	order, err := svc.UpdateOrder(ctx, 5, UpdateOrderInput{ProductIDs: []int64{3, 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), order.Total)
	assert.Equal(t, []string{"order.updated"}, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestUpdateOrder_PaymentOnlyKeepsStoredTotal(t *testing.T) {
	svc, mockDB, _ := newOrderService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(
			pgxmock.NewRows(orderTestCols).
				AddRow(int64(5), int64(2), []int64{1}, int64(1200), false, testTime, testTime),
		)
	// No product queries: the stored total survives price drift.
	mockDB.ExpectExec("UPDATE orders").
		WithArgs(int64(2), []int64{1}, int64(1200), true, pgxmock.AnyArg(), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockDB.ExpectCommit()

	paid := true
	order, err := svc.UpdateOrder(ctx, 5, UpdateOrderInput{Payment: &paid})
	require.NoError(t, err)
	assert.True(t, order.Payment)
	assert.Equal(t, int64(1200), order.Total)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGetOrder_JoinsUserAndProducts(t *testing.T) {
	svc, mockDB, _ := newOrderService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(
			pgxmock.NewRows(orderTestCols).
				AddRow(int64(5), int64(2), []int64{1, 1}, int64(2400), false, testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(int64(2)).
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
				AddRow(int64(2), "alice", "alice@example.com", "hash", testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT .+ FROM products WHERE id = ANY").
		WithArgs([]int64{1, 1}).
		WillReturnRows(pgxmock.NewRows(productTestCols).AddRow(productTestRow(1, 1000)...))

	detail, err := svc.GetOrder(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.User.Username)
	// One product entry per occurrence in the order.
	require.Len(t, detail.Products, 2)
	assert.Equal(t, int64(1), detail.Products[0].ID)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestDeleteOrder_PublishesEvent(t *testing.T) {
	svc, mockDB, publisher := newOrderService(t)
	defer mockDB.Close()

	mockDB.ExpectExec("DELETE FROM orders").
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.DeleteOrder(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"order.deleted"}, publisher.published())
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestListOrders_BuildsDetails(t *testing.T) {
	svc, mockDB, _ := newOrderService(t)
	defer mockDB.Close()
	ctx := context.Background()

	mockDB.ExpectQuery("SELECT .+ FROM orders").
		WithArgs(10, 0).
		WillReturnRows(
			pgxmock.NewRows(append(append([]string{}, orderTestCols...), "total_count")).
				AddRow(int64(5), int64(2), []int64{1}, int64(1200), false, testTime, testTime, 1),
		)
	mockDB.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(int64(2)).
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
				AddRow(int64(2), "alice", "alice@example.com", "hash", testTime, testTime),
		)
	mockDB.ExpectQuery("SELECT .+ FROM products WHERE id = ANY").
		WithArgs([]int64{1}).
		WillReturnRows(pgxmock.NewRows(productTestCols).AddRow(productTestRow(1, 1000)...))

	details, total, err := svc.ListOrders(ctx, repository.ListParams{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, details, 1)
	assert.IsType(t, domain.OrderDetail{}, details[0])
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
