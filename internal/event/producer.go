package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/INOCcent-afk/productly-server/internal/domain"
	pkgkafka "github.com/INOCcent-afk/productly-server/pkg/kafka"
)

// Event type constants for productly domain events.
const (
	TypeUserRegistered = "productly.user.registered"
	TypeUserUpdated    = "productly.user.updated"
	TypeReviewCreated  = "productly.review.created"
)

// Source identifier for events originating from this server.
const Source = "productly-server"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserUpdatedData is the payload for a user.updated event.
type UserUpdatedData struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
}

// Publisher is the interface services publish domain events through.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserUpdated(ctx context.Context, user *domain.User) error
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
}

// Producer publishes productly domain events to Kafka.
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

// PublishUserRegistered publishes a user.registered event keyed by user id.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	return p.publish(ctx, TypeUserRegistered, user.ID, data)
}

// PublishUserUpdated publishes a user.updated event keyed by user id.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	data := UserUpdatedData{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	return p.publish(ctx, TypeUserUpdated, user.ID, data)
}

// PublishReviewCreated publishes a review.created event keyed by product id,
// so reviews of the same product stay ordered.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
	}

	return p.publish(ctx, TypeReviewCreated, review.ProductID, data)
}

func (p *Producer) publish(ctx context.Context, eventType, key string, data any) error {
	ev, err := pkgkafka.NewEvent(eventType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.kafka.Publish(ctx, key, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "domain event published",
		slog.String("event_type", eventType),
		slog.String("key", key),
	)

	return nil
}
