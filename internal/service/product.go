package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/pkg/database"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

// ProductService implements the business logic for product operations.
// Aggregate fields (review_ids, total_score) are owned by the review service
// and cannot be written through here.
type ProductService struct {
	db       database.DBTX
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(db database.DBTX, products repository.ProductRepository, reviews repository.ReviewRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		db:       db,
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name  string
	About string
	Price int64
}

// UpdateProductInput holds the parameters for a partial product update. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name  *string
	About *string
	Price *int64
}

func validateProductFields(name, about string, price int64) error {
	if len(strings.TrimSpace(name)) < domain.ProductNameMinLen {
		return apperrors.InvalidInput(fmt.Sprintf("name must be at least %d characters", domain.ProductNameMinLen))
	}
	if len(strings.TrimSpace(about)) < domain.ProductAboutMinLen {
		return apperrors.InvalidInput(fmt.Sprintf("about must be at least %d characters", domain.ProductAboutMinLen))
	}
	if price <= 0 {
		return apperrors.InvalidInput("price must be a positive amount in cents")
	}
	return nil
}

// CreateProduct creates a new product with empty aggregates.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := validateProductFields(input.Name, input.About, input.Price); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:  input.Name,
		About: input.About,
		Price: input.Price,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts returns products matching the filter with the total count.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	return s.products.List(ctx, filter)
}

// UpdateProduct applies a partial update to a product's own fields.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.About != nil {
		existing.About = *input.About
	}
	if input.Price != nil {
		existing.Price = *input.Price
	}

	if err := validateProductFields(existing.Name, existing.About, existing.Price); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// DeleteProduct removes a product. Deletion is blocked while reviews still
// reference the product; the client must delete or move them first. The check
// and the delete commit in the same transaction so a review created in
// between cannot be orphaned.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		referenced, err := s.reviews.WithTx(tx).ExistsByProduct(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperrors.Conflict(fmt.Sprintf("product %d still has reviews", id))
		}

		return s.products.WithTx(tx).Delete(ctx, id)
	})
}
