package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/games"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/internal/service"
	"github.com/Es-saiydy/webService/pkg/database"
	"github.com/Es-saiydy/webService/pkg/health"
	"github.com/Es-saiydy/webService/pkg/httputil"
	"github.com/Es-saiydy/webService/pkg/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	return mockPool
}

// testDeps bundles everything needed to build the full router in tests.
type testDeps struct {
	db       pgxmock.PgxPoolIface
	products *mockProductRepository
	reviews  *mockReviewRepository
	orders   *mockOrderRepository
	users    *mockUserRepository
	games    *games.Client
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	return &testDeps{
		db:       newMockDB(t),
		products: new(mockProductRepository),
		reviews:  new(mockReviewRepository),
		orders:   new(mockOrderRepository),
		users:    new(mockUserRepository),
	}
}

func newTestRouter(t *testing.T, deps *testDeps) *chi.Mux {
	t.Helper()
	logger := testLogger()
	publisher := &capturePublisher{}

	svcs := Services{
		Products: service.NewProductService(deps.db, deps.products, deps.reviews, logger),
		Users:    service.NewUserService(deps.db, deps.users, deps.reviews, deps.orders, logger),
		Reviews:  service.NewReviewService(deps.db, deps.reviews, deps.products, deps.users, publisher, logger),
		Orders:   service.NewOrderService(deps.db, deps.orders, deps.products, deps.users, publisher, logger),
		Games:    deps.games,
	}

	router := NewRouter(svcs, health.NewHandler(), logger, middleware.DefaultCORSConfig(), time.Minute)
	mux, ok := router.(*chi.Mux)
	require.True(t, ok)
	return mux
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// --- capturePublisher records published events without a broker ---

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (c *capturePublisher) record(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return nil
}

func (c *capturePublisher) PublishReviewCreated(ctx context.Context, review *domain.Review, totalScore float64) error {
	return c.record("review.created")
}

func (c *capturePublisher) PublishReviewUpdated(ctx context.Context, review *domain.Review, totalScore float64) error {
	return c.record("review.updated")
}

func (c *capturePublisher) PublishReviewDeleted(ctx context.Context, review *domain.Review, totalScore float64) error {
	return c.record("review.deleted")
}

func (c *capturePublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return c.record("order.created")
}

func (c *capturePublisher) PublishOrderUpdated(ctx context.Context, order *domain.Order) error {
	return c.record("order.updated")
}

func (c *capturePublisher) PublishOrderDeleted(ctx context.Context, orderID int64) error {
	return c.record("order.deleted")
}

// --- Mock repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetMany(ctx context.Context, ids []int64) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) SetAggregates(ctx context.Context, id int64, reviewIDs []int64, totalScore float64) error {
	args := m.Called(ctx, id, reviewIDs, totalScore)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockProductRepository) WithTx(tx database.DBTX) repository.ProductRepository {
	return m
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepository) ExistsByUser(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepository) ExistsByProduct(ctx context.Context, productID int64) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepository) WithTx(tx database.DBTX) repository.ReviewRepository {
	return m
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, params repository.ListParams) ([]domain.Order, int, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOrderRepository) ExistsByUser(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) WithTx(tx database.DBTX) repository.OrderRepository {
	return m
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetMany(ctx context.Context, ids []int64) ([]domain.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, params repository.ListParams) ([]domain.User, int, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockUserRepository) WithTx(tx database.DBTX) repository.UserRepository {
	return m
}
