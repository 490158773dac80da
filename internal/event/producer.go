package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Es-saiydy/webService/internal/domain"
	pkgkafka "github.com/Es-saiydy/webService/pkg/kafka"
)

// Kafka topic constants for domain events.
const (
	TopicReviewCreated = "webshop.review.created"
	TopicReviewUpdated = "webshop.review.updated"
	TopicReviewDeleted = "webshop.review.deleted"
	TopicOrderCreated  = "webshop.order.created"
	TopicOrderUpdated  = "webshop.order.updated"
	TopicOrderDeleted  = "webshop.order.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeReview = "review"
	AggregateTypeOrder  = "order"
)

// Source identifier for events originating from this service.
const SourceWebService = "webservice"

// Publisher is the interface the services publish through. Satisfied by
// *Producer; tests substitute a no-op implementation.
type Publisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review, totalScore float64) error
	PublishReviewUpdated(ctx context.Context, review *domain.Review, totalScore float64) error
	PublishReviewDeleted(ctx context.Context, review *domain.Review, totalScore float64) error
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderUpdated(ctx context.Context, order *domain.Order) error
	PublishOrderDeleted(ctx context.Context, orderID int64) error
}

// ReviewEventData is the payload for review.* events. TotalScore is the
// parent product's aggregate score after the triggering mutation.
type ReviewEventData struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	ProductID  int64   `json:"product_id"`
	Score      int     `json:"score"`
	Content    string  `json:"content"`
	TotalScore float64 `json:"total_score"`
}

// OrderEventData is the payload for order.created and order.updated events.
type OrderEventData struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	ProductIDs []int64 `json:"product_ids"`
	Total      int64   `json:"total"`
	Payment    bool    `json:"payment"`
}

// OrderDeletedData is the payload for an order.deleted event.
type OrderDeletedData struct {
	OrderID int64 `json:"order_id"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publishReview(ctx context.Context, topic string, review *domain.Review, totalScore float64) error {
	data := ReviewEventData{
		ID:         review.ID,
		UserID:     review.UserID,
		ProductID:  review.ProductID,
		Score:      review.Score,
		Content:    review.Content,
		TotalScore: totalScore,
	}

	event, err := pkgkafka.NewEvent(topic, review.ID, AggregateTypeReview, SourceWebService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.Int64("review_id", review.ID),
		slog.Int64("product_id", review.ProductID),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, totalScore float64) error {
	return p.publishReview(ctx, TopicReviewCreated, review, totalScore)
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review, totalScore float64) error {
	return p.publishReview(ctx, TopicReviewUpdated, review, totalScore)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review, totalScore float64) error {
	return p.publishReview(ctx, TopicReviewDeleted, review, totalScore)
}

func (p *Producer) publishOrder(ctx context.Context, topic string, order *domain.Order) error {
	data := OrderEventData{
		ID:         order.ID,
		UserID:     order.UserID,
		ProductIDs: order.ProductIDs,
		Total:      order.Total,
		Payment:    order.Payment,
	}

	event, err := pkgkafka.NewEvent(topic, order.ID, AggregateTypeOrder, SourceWebService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published order event",
		slog.String("topic", topic),
		slog.Int64("order_id", order.ID),
	)

	return nil
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publishOrder(ctx, TopicOrderCreated, order)
}

// PublishOrderUpdated publishes an order.updated event.
func (p *Producer) PublishOrderUpdated(ctx context.Context, order *domain.Order) error {
	return p.publishOrder(ctx, TopicOrderUpdated, order)
}

// PublishOrderDeleted publishes an order.deleted event.
func (p *Producer) PublishOrderDeleted(ctx context.Context, orderID int64) error {
	event, err := pkgkafka.NewEvent(TopicOrderDeleted, orderID, AggregateTypeOrder, SourceWebService, OrderDeletedData{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("create %s event: %w", TopicOrderDeleted, err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderDeleted, event); err != nil {
		return fmt.Errorf("publish %s event: %w", TopicOrderDeleted, err)
	}

	return nil
}
