package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/event"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/pkg/database"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

// OrderService composes orders: it validates the buyer and every product
// reference, snapshots current prices into a stored total, and persists the
// order atomically. Stored totals never change when prices drift afterwards.
type OrderService struct {
	db       database.DBTX
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	db database.DBTX,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	producer event.Publisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		db:       db,
		orders:   orders,
		products: products,
		users:    users,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrderInput holds the parameters for creating an order. ProductIDs may
// contain duplicates; each occurrence is billed separately.
type CreateOrderInput struct {
	UserID     int64
	ProductIDs []int64
}

// UpdateOrderInput holds the parameters for a partial order update. Nil
// fields are left unchanged. A client-supplied total is never accepted; when
// ProductIDs change the total is recomputed from current prices.
type UpdateOrderInput struct {
	UserID     *int64
	ProductIDs []int64
	Payment    *bool
}

// CreateOrder validates the buyer and products, computes the total from
// current prices with the flat markup, and persists the order. Payment always
// starts false.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if len(input.ProductIDs) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one product")
	}

	order := &domain.Order{
		UserID:     input.UserID,
		ProductIDs: input.ProductIDs,
		Payment:    false,
	}

	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		orders := s.orders.WithTx(tx)
		products := s.products.WithTx(tx)

		validator := NewReferentialValidator(s.users.WithTx(tx), products)
		if err := validator.Validate(ctx, Refs{
			UserIDs:    []int64{input.UserID},
			ProductIDs: input.ProductIDs,
		}); err != nil {
			return err
		}

		total, err := snapshotTotal(ctx, products, input.ProductIDs)
		if err != nil {
			return err
		}
		order.Total = total

		return orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	return order, nil
}

// GetOrder retrieves an order joined with its buyer and product rows.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail, err := s.buildDetail(ctx, order)
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// ListOrders returns orders joined with buyers and products, with the total
// count.
func (s *OrderService) ListOrders(ctx context.Context, params repository.ListParams) ([]domain.OrderDetail, int, error) {
	orders, total, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	details := make([]domain.OrderDetail, 0, len(orders))
	for i := range orders {
		detail, err := s.buildDetail(ctx, &orders[i])
		if err != nil {
			return nil, 0, err
		}
		details = append(details, *detail)
	}

	return details, total, nil
}

// UpdateOrder applies a partial update. A changed buyer or product list is
// re-validated, and a changed product list recomputes the total from prices
// current at update time.
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, input UpdateOrderInput) (*domain.Order, error) {
	if input.ProductIDs != nil && len(input.ProductIDs) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one product")
	}

	var order *domain.Order
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		orders := s.orders.WithTx(tx)
		products := s.products.WithTx(tx)

		existing, err := orders.GetByID(ctx, id)
		if err != nil {
			return err
		}

		refs := Refs{}
		if input.UserID != nil && *input.UserID != existing.UserID {
			refs.UserIDs = append(refs.UserIDs, *input.UserID)
			existing.UserID = *input.UserID
		}
		if input.ProductIDs != nil {
			refs.ProductIDs = input.ProductIDs
			existing.ProductIDs = input.ProductIDs
		}
		if input.Payment != nil {
			existing.Payment = *input.Payment
		}

		if len(refs.UserIDs) > 0 || len(refs.ProductIDs) > 0 {
			validator := NewReferentialValidator(s.users.WithTx(tx), products)
			if err := validator.Validate(ctx, refs); err != nil {
				return err
			}
		}

		if input.ProductIDs != nil {
			total, err := snapshotTotal(ctx, products, existing.ProductIDs)
			if err != nil {
				return err
			}
			existing.Total = total
		}

		if err := orders.Update(ctx, existing); err != nil {
			return err
		}

		order = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishOrderUpdated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.updated event",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.producer.PublishOrderDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.deleted event",
			slog.Int64("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// snapshotTotal sums the current price of every product occurrence and
// applies the flat markup. The product IDs must have been validated already;
// a row missing here means the store changed underneath the transaction.
func snapshotTotal(ctx context.Context, products repository.ProductRepository, productIDs []int64) (int64, error) {
	rows, err := products.GetMany(ctx, productIDs)
	if err != nil {
		return 0, err
	}

	prices := make(map[int64]int64, len(rows))
	for _, p := range rows {
		prices[p.ID] = p.Price
	}

	var subtotal int64
	for _, id := range productIDs {
		price, ok := prices[id]
		if !ok {
			return 0, apperrors.Consistency("product %d missing during order total snapshot", id)
		}
		subtotal += price
	}

	return domain.OrderTotal(subtotal), nil
}

// buildDetail joins an order with its buyer and one product row per
// occurrence in ProductIDs.
func (s *OrderService) buildDetail(ctx context.Context, order *domain.Order) (*domain.OrderDetail, error) {
	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.products.GetMany(ctx, order.ProductIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}

	// Deleted products simply drop out of the joined view; the stored total
	// is not affected.
	productsList := make([]domain.Product, 0, len(order.ProductIDs))
	for _, id := range order.ProductIDs {
		if p, ok := byID[id]; ok {
			productsList = append(productsList, p)
		}
	}

	return &domain.OrderDetail{
		Order:    *order,
		User:     user,
		Products: productsList,
	}, nil
}
