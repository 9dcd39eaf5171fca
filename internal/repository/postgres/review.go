package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/INOCcent-afk/productly-server/internal/domain"
	"github.com/INOCcent-afk/productly-server/pkg/database"
	apperrors "github.com/INOCcent-afk/productly-server/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, product_id, user_id, message, rating, created_at`

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, message, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		rev.ID,
		rev.ProductID,
		rev.UserID,
		rev.Message,
		rev.Rating,
		rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	return r.scanReview(ctx, query, id)
}

// ListByProductID returns all reviews for the given product.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID, &rev.ProductID, &rev.UserID, &rev.Message, &rev.Rating, &rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// AverageRating computes the product's average rating truncated to two
// decimal places, carried as text so the exact representation survives.
// Returns nil for a product with no reviews; AVG over zero rows is NULL and
// the NULL is preserved, never coalesced to zero.
func (r *ReviewRepository) AverageRating(ctx context.Context, productID string) (*string, error) {
	query := `SELECT TRUNC(AVG(rating), 2)::text FROM reviews WHERE product_id = $1`

	var avg *string
	if err := r.db.QueryRow(ctx, query, productID).Scan(&avg); err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	return avg, nil
}

// Update modifies the review's message and rating.
func (r *ReviewRepository) Update(ctx context.Context, id, message string, rating int) (*domain.Review, error) {
	query := `
		UPDATE reviews SET message = $1, rating = $2
		WHERE id = $3
		RETURNING ` + reviewColumns

	return r.scanReview(ctx, query, message, rating, id)
}

// Delete removes the review and returns the removed row.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (*domain.Review, error) {
	query := `DELETE FROM reviews WHERE id = $1 RETURNING ` + reviewColumns
	return r.scanReview(ctx, query, id)
}

// scanReview is a helper that executes a query expected to return a single review row.
func (r *ReviewRepository) scanReview(ctx context.Context, query string, args ...any) (*domain.Review, error) {
	var rev domain.Review

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&rev.ID,
		&rev.ProductID,
		&rev.UserID,
		&rev.Message,
		&rev.Rating,
		&rev.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rev, nil
}
