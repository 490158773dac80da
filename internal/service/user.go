package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Es-saiydy/webService/internal/domain"
	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/pkg/database"
	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

// bcryptCost is the work factor used for password hashes.
const bcryptCost = 12

// UserService implements the business logic for user operations.
type UserService struct {
	db      database.DBTX
	users   repository.UserRepository
	reviews repository.ReviewRepository
	orders  repository.OrderRepository
	logger  *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(db database.DBTX, users repository.UserRepository, reviews repository.ReviewRepository, orders repository.OrderRepository, logger *slog.Logger) *UserService {
	return &UserService{
		db:      db,
		users:   users,
		reviews: reviews,
		orders:  orders,
		logger:  logger,
	}
}

// CreateUserInput holds the parameters for creating a user.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput holds the parameters for a user update. Nil fields are left
// unchanged; a non-nil Password is re-hashed.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

// CreateUser hashes the password and inserts the user. Username and email
// uniqueness is enforced by the store.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if len(strings.TrimSpace(input.Username)) < domain.UsernameMinLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("username must be at least %d characters", domain.UsernameMinLen))
	}
	if len(input.Password) < domain.PasswordMinLen {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", domain.PasswordMinLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns users with the total count.
func (s *UserService) ListUsers(ctx context.Context, params repository.ListParams) ([]domain.User, int, error) {
	return s.users.List(ctx, params)
}

// UpdateUser applies an update to a user. Both full (PUT) and partial (PATCH)
// updates route through here; the handler decides which fields are required.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		if len(strings.TrimSpace(*input.Username)) < domain.UsernameMinLen {
			return nil, apperrors.InvalidInput(fmt.Sprintf("username must be at least %d characters", domain.UsernameMinLen))
		}
		existing.Username = *input.Username
	}
	if input.Email != nil {
		existing.Email = *input.Email
	}
	if input.Password != nil {
		if len(*input.Password) < domain.PasswordMinLen {
			return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", domain.PasswordMinLen))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// DeleteUser removes a user. Deletion is blocked while reviews or orders
// still reference the user. The checks and the delete commit in the same
// transaction so a review or order created in between cannot be orphaned.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		hasReviews, err := s.reviews.WithTx(tx).ExistsByUser(ctx, id)
		if err != nil {
			return err
		}
		if hasReviews {
			return apperrors.Conflict(fmt.Sprintf("user %d still has reviews", id))
		}

		hasOrders, err := s.orders.WithTx(tx).ExistsByUser(ctx, id)
		if err != nil {
			return err
		}
		if hasOrders {
			return apperrors.Conflict(fmt.Sprintf("user %d still has orders", id))
		}

		return s.users.WithTx(tx).Delete(ctx, id)
	})
}
