package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/event"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/pkg/database"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

// ReviewService implements review CRUD and keeps the parent product's
// aggregate fields in sync. Every mutation and its aggregate recompute commit
// in the same transaction; the recompute always runs over the full current
// child set, never as an incremental delta.
type ReviewService struct {
	db       database.DBTX
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	users    repository.UserRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	db database.DBTX,
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	producer event.Publisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		db:       db,
		reviews:  reviews,
		products: products,
		users:    users,
		producer: producer,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	UserID    int64
	ProductID int64
	Score     int
	Content   string
}

// UpdateReviewInput holds the parameters for a partial review update. Nil
// fields are left unchanged.
type UpdateReviewInput struct {
	UserID    *int64
	ProductID *int64
	Score     *int
	Content   *string
}

// CreateReview validates the referenced user and product, inserts the review,
// and recomputes the parent product's aggregates, all in one transaction.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if !domain.IsValidScore(input.Score) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("score must be between %d and %d", domain.ReviewScoreMin, domain.ReviewScoreMax))
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.InvalidInput("content must not be empty")
	}

	review := &domain.Review{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Score:     input.Score,
		Content:   input.Content,
	}

	var totalScore float64
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		reviews := s.reviews.WithTx(tx)
		products := s.products.WithTx(tx)

		validator := NewReferentialValidator(s.users.WithTx(tx), products)
		if err := validator.Validate(ctx, Refs{
			UserIDs:    []int64{input.UserID},
			ProductIDs: []int64{input.ProductID},
		}); err != nil {
			return err
		}

		if err := reviews.Create(ctx, review); err != nil {
			return err
		}

		score, err := recomputeAggregates(ctx, reviews, products, input.ProductID)
		if err != nil {
			return err
		}
		totalScore = score
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishReviewCreated(ctx, review, totalScore); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.Int64("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	return review, nil
}

// GetReview retrieves a review by ID.
func (s *ReviewService) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// ListReviews returns reviews matching the filter with the total count.
func (s *ReviewService) ListReviews(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	return s.reviews.List(ctx, filter)
}

// UpdateReview applies a partial update to a review and recomputes the
// aggregates of every affected parent. Moving a review to another product
// recomputes both the old and the new parent in the same transaction.
func (s *ReviewService) UpdateReview(ctx context.Context, id int64, input UpdateReviewInput) (*domain.Review, error) {
	if input.Score != nil && !domain.IsValidScore(*input.Score) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("score must be between %d and %d", domain.ReviewScoreMin, domain.ReviewScoreMax))
	}
	if input.Content != nil && strings.TrimSpace(*input.Content) == "" {
		return nil, apperrors.InvalidInput("content must not be empty")
	}

	var (
		review     *domain.Review
		totalScore float64
	)
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		reviews := s.reviews.WithTx(tx)
		products := s.products.WithTx(tx)

		existing, err := reviews.GetByID(ctx, id)
		if err != nil {
			return err
		}

		oldProductID := existing.ProductID

		refs := Refs{}
		if input.UserID != nil && *input.UserID != existing.UserID {
			refs.UserIDs = append(refs.UserIDs, *input.UserID)
			existing.UserID = *input.UserID
		}
		if input.ProductID != nil && *input.ProductID != existing.ProductID {
			refs.ProductIDs = append(refs.ProductIDs, *input.ProductID)
			existing.ProductID = *input.ProductID
		}
		if input.Score != nil {
			existing.Score = *input.Score
		}
		if input.Content != nil {
			existing.Content = *input.Content
		}

		if len(refs.UserIDs) > 0 || len(refs.ProductIDs) > 0 {
			validator := NewReferentialValidator(s.users.WithTx(tx), products)
			if err := validator.Validate(ctx, refs); err != nil {
				return err
			}
		}

		if err := reviews.Update(ctx, existing); err != nil {
			return err
		}

		score, err := recomputeAggregates(ctx, reviews, products, existing.ProductID)
		if err != nil {
			return err
		}
		totalScore = score

		// A moved review leaves its old parent's aggregates stale too.
		if oldProductID != existing.ProductID {
			if _, err := recomputeAggregates(ctx, reviews, products, oldProductID); err != nil {
				return err
			}
		}

		review = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishReviewUpdated(ctx, review, totalScore); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.Int64("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	return review, nil
}

// DeleteReview removes a review and recomputes the parent product's
// aggregates in the same transaction.
func (s *ReviewService) DeleteReview(ctx context.Context, id int64) error {
	var (
		review     *domain.Review
		totalScore float64
	)
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		reviews := s.reviews.WithTx(tx)
		products := s.products.WithTx(tx)

		existing, err := reviews.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := reviews.Delete(ctx, id); err != nil {
			return err
		}

		score, err := recomputeAggregates(ctx, reviews, products, existing.ProductID)
		if err != nil {
			return err
		}

		review = existing
		totalScore = score
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.producer.PublishReviewDeleted(ctx, review, totalScore); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.Int64("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// recomputeAggregates rebuilds a product's review_ids and total_score from
// the full set of its current reviews, as read inside the caller's
// transaction.
func recomputeAggregates(ctx context.Context, reviews repository.ReviewRepository, products repository.ProductRepository, productID int64) (float64, error) {
	current, err := reviews.ListByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	ids := make([]int64, len(current))
	scores := make([]int, len(current))
	for i, rev := range current {
		ids[i] = rev.ID
		scores[i] = rev.Score
	}

	score := domain.MeanScore(scores)
	if err := products.SetAggregates(ctx, productID, ids, score); err != nil {
		return 0, err
	}

	return score, nil
}
