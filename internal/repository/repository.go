package repository

import (
	"context"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/pkg/database"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Name     *string
	About    *string
	MaxPrice *int64
	Page     int
	PerPage  int
}

// ReviewFilter defines filter criteria for listing reviews.
type ReviewFilter struct {
	ProductID *int64
	UserID    *int64
	Page      int
	PerPage   int
}

// ListParams holds plain pagination for unfiltered listings.
type ListParams struct {
	Page    int
	PerPage int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product and assigns its store-generated ID.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// GetMany retrieves the products whose IDs appear in ids. Missing IDs are
	// simply absent from the result; the caller decides whether that is an error.
	GetMany(ctx context.Context, ids []int64) ([]domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies a product's own fields. Aggregate fields are not touched.
	Update(ctx context.Context, product *domain.Product) error

	// SetAggregates overwrites a product's review_ids and total_score.
	SetAggregates(ctx context.Context, id int64, reviewIDs []int64, totalScore float64) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id int64) error

	// ExistingIDs returns the subset of ids that exist in the store.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)

	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx database.DBTX) ProductRepository
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review and assigns its store-generated ID.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// List returns reviews matching the given filter along with the total count.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// ListByProduct returns every live review of a product, ordered by ID.
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)

	// Update modifies an existing review.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review from the store by its identifier.
	Delete(ctx context.Context, id int64) error

	// ExistsByUser reports whether any review references the given user.
	ExistsByUser(ctx context.Context, userID int64) (bool, error)

	// ExistsByProduct reports whether any review references the given product.
	ExistsByProduct(ctx context.Context, productID int64) (bool, error)

	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx database.DBTX) ReviewRepository
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and assigns its store-generated ID.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// List returns orders along with the total count.
	List(ctx context.Context, params ListParams) ([]domain.Order, int, error)

	// Update modifies an existing order.
	Update(ctx context.Context, order *domain.Order) error

	// Delete removes an order from the store by its identifier.
	Delete(ctx context.Context, id int64) error

	// ExistsByUser reports whether any order references the given user.
	ExistsByUser(ctx context.Context, userID int64) (bool, error)

	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx database.DBTX) OrderRepository
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and assigns its store-generated ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetMany retrieves the users whose IDs appear in ids.
	GetMany(ctx context.Context, ids []int64) ([]domain.User, error)

	// List returns users along with the total count.
	List(ctx context.Context, params ListParams) ([]domain.User, int, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by its identifier.
	Delete(ctx context.Context, id int64) error

	// ExistingIDs returns the subset of ids that exist in the store.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)

	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx database.DBTX) UserRepository
}
