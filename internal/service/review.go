package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/INOCcent-afk/productly-server/internal/domain"
	"github.com/INOCcent-afk/productly-server/internal/event"
	"github.com/INOCcent-afk/productly-server/internal/repository"
	apperrors "github.com/INOCcent-afk/productly-server/pkg/errors"
)

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	producer event.Publisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	ProductID string
	UserID    string
	Message   string
	Rating    int
}

// Create adds a review to a product. The path user id must match the
// authenticated caller; the rating must be an integer in [1,5]. An empty
// message is a rating-only review and stays valid.
func (s *ReviewService) Create(ctx context.Context, callerID string, input CreateReviewInput) (*domain.Review, error) {
	if callerID != input.UserID {
		return nil, apperrors.Forbidden("cannot review on behalf of another user")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Message:   input.Message,
		Rating:    input.Rating,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	// Publish review event (non-blocking on failure).
	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ProductReviews returns all reviews for a product with the average rating
// truncated to two decimal places. The average is nil when the product has
// no reviews.
func (s *ReviewService) ProductReviews(ctx context.Context, productID string) (*domain.ProductReviews, error) {
	reviews, err := s.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	avg, err := s.reviews.AverageRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	return &domain.ProductReviews{
		Reviews:       reviews,
		AverageRating: avg,
	}, nil
}

// Update modifies a review owned by the caller.
func (s *ReviewService) Update(ctx context.Context, callerID, reviewID, message string, rating int) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if err := s.requireOwnership(ctx, callerID, reviewID); err != nil {
		return nil, err
	}

	review, err := s.reviews.Update(ctx, reviewID, message, rating)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("review", reviewID)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated", slog.String("review_id", reviewID))

	return review, nil
}

// Delete removes a review owned by the caller and returns the removed row.
func (s *ReviewService) Delete(ctx context.Context, callerID, reviewID string) (*domain.Review, error) {
	if err := s.requireOwnership(ctx, callerID, reviewID); err != nil {
		return nil, err
	}

	review, err := s.reviews.Delete(ctx, reviewID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("review", reviewID)
		}
		return nil, fmt.Errorf("delete review: %w", err)
	}

	s.logger.InfoContext(ctx, "review deleted", slog.String("review_id", reviewID))

	return review, nil
}

func (s *ReviewService) requireOwnership(ctx context.Context, callerID, reviewID string) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("review", reviewID)
		}
		return fmt.Errorf("get review: %w", err)
	}

	if review.UserID != callerID {
		return apperrors.Forbidden("not the review author")
	}

	return nil
}
