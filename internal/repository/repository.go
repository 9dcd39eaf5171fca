package repository

import (
	"context"

	"github.com/INOCcent-afk/productly-server/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all users.
	List(ctx context.Context) ([]domain.User, error)

	// SearchByName returns users whose "first last" name starts with the
	// given prefix, case-insensitively.
	SearchByName(ctx context.Context, prefix string) ([]domain.UserSummary, error)

	// UpdateProfile applies a partial profile update; nil fields keep their
	// stored values. Returns the updated user.
	UpdateProfile(ctx context.Context, id string, update *domain.UserUpdate) (*domain.User, error)

	// CountWrittenReviews counts the user's reviews with a non-empty message.
	CountWrittenReviews(ctx context.Context, userID string) (int64, error)

	// CountRatings counts all the user's reviews, written or not.
	CountRatings(ctx context.Context, userID string) (int64, error)

	// Activity returns the products the user has reviewed, with the user's
	// aggregate contribution to each.
	Activity(ctx context.Context, userID string) ([]domain.UserActivity, error)
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product without aggregates, for ownership checks.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetWithRating retrieves a product joined with its review aggregates.
	GetWithRating(ctx context.Context, id string) (*domain.ProductWithRating, error)

	// ListWithRatings returns all products with their review aggregates.
	ListWithRatings(ctx context.Context) ([]domain.ProductWithRating, error)

	// ListTopRated returns all products ordered by average rating descending,
	// unreviewed products last.
	ListTopRated(ctx context.Context) ([]domain.ProductWithRating, error)

	// ListByUserID returns all products created by the given user.
	ListByUserID(ctx context.Context, userID string) ([]domain.Product, error)

	// SearchByName returns products whose name starts with the given prefix,
	// case-insensitively, with their review aggregates.
	SearchByName(ctx context.Context, prefix string) ([]domain.ProductWithRating, error)

	// Update modifies the product's name and description. Returns the
	// updated product.
	Update(ctx context.Context, id, name string, description *string) (*domain.Product, error)

	// Delete removes the product and, via cascade, its reviews. Returns the
	// removed product.
	Delete(ctx context.Context, id string) (*domain.Product, error)

	// CountWrittenReviews counts the product's reviews with a non-empty message.
	CountWrittenReviews(ctx context.Context, productID string) (int64, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review into the store.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByProductID returns all reviews for the given product.
	ListByProductID(ctx context.Context, productID string) ([]domain.Review, error)

	// AverageRating computes the product's average rating truncated to two
	// decimal places, returned as its exact text representation. Nil when the
	// product has no reviews.
	AverageRating(ctx context.Context, productID string) (*string, error)

	// Update modifies the review's message and rating. Returns the updated
	// review.
	Update(ctx context.Context, id, message string, rating int) (*domain.Review, error)

	// Delete removes the review. Returns the removed review.
	Delete(ctx context.Context, id string) (*domain.Review, error)
}
