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

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, user_id, name, description, image, created_at, updated_at`

// ratingJoin is the aggregate subquery every listing shares: per-product
// review count plus the average rating truncated (not rounded) to one
// decimal place. The average is cast to text so the exact decimal
// representation reaches the client; a separate numeric copy exists purely
// for ordering, since ordering the text form would compare lexically.
const ratingJoin = `
	LEFT JOIN (
		SELECT product_id,
		       COUNT(*) AS review_count,
		       TRUNC(AVG(rating), 1) AS avg_numeric,
		       TRUNC(AVG(rating), 1)::text AS average_rating
		FROM reviews
		GROUP BY product_id
	) r ON p.id = r.product_id`

const productWithRatingSelect = `
	SELECT p.id, p.user_id, p.name, p.description, p.image, p.created_at, p.updated_at,
	       r.review_count, r.average_rating
	FROM products p` + ratingJoin

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, user_id, name, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Description,
		p.Image,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product without aggregates, for ownership checks.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// GetWithRating retrieves a single product joined with its review aggregates.
// A product with no reviews is returned with nil aggregates, not an error.
func (r *ProductRepository) GetWithRating(ctx context.Context, id string) (*domain.ProductWithRating, error) {
	query := productWithRatingSelect + ` WHERE p.id = $1`

	var p domain.ProductWithRating
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
		&p.ReviewCount, &p.AverageRating,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product with rating: %w", err)
	}

	return &p, nil
}

// ListWithRatings returns all products with their review aggregates.
// Zero-review products are included with nil count and rating.
func (r *ProductRepository) ListWithRatings(ctx context.Context) ([]domain.ProductWithRating, error) {
	return r.queryWithRatings(ctx, productWithRatingSelect)
}

// ListTopRated returns all products ordered by average rating descending,
// with unreviewed products last.
func (r *ProductRepository) ListTopRated(ctx context.Context) ([]domain.ProductWithRating, error) {
	query := productWithRatingSelect + ` ORDER BY r.avg_numeric DESC NULLS LAST`
	return r.queryWithRatings(ctx, query)
}

// SearchByName returns products whose name starts with the given prefix.
// Case-insensitive, anchored at the start, LIKE metacharacters match
// literally.
func (r *ProductRepository) SearchByName(ctx context.Context, prefix string) ([]domain.ProductWithRating, error) {
	query := productWithRatingSelect + ` WHERE p.name ILIKE $1 || '%'`
	return r.queryWithRatings(ctx, query, escapeLikePrefix(prefix))
}

// ListByUserID returns all products created by the given user, without
// aggregates.
func (r *ProductRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list products by user: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Update modifies the product's name and description.
func (r *ProductRepository) Update(ctx context.Context, id, name string, description *string) (*domain.Product, error) {
	query := `
		UPDATE products SET name = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + productColumns

	var p domain.Product
	err := r.db.QueryRow(ctx, query, name, description, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return &p, nil
}

// Delete removes the product; its reviews go with it via the FK cascade.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	var p domain.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}

	return &p, nil
}

// CountWrittenReviews counts the product's reviews with a non-empty message.
func (r *ProductRepository) CountWrittenReviews(ctx context.Context, productID string) (int64, error) {
	query := `SELECT COUNT(product_id) FROM reviews WHERE product_id = $1 AND message <> ''`

	var count int64
	if err := r.db.QueryRow(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count written reviews: %w", err)
	}
	return count, nil
}

func (r *ProductRepository) queryWithRatings(ctx context.Context, query string, args ...any) ([]domain.ProductWithRating, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products with ratings: %w", err)
	}
	defer rows.Close()

	products := []domain.ProductWithRating{}
	for rows.Next() {
		var p domain.ProductWithRating
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
			&p.ReviewCount, &p.AverageRating,
		); err != nil {
			return nil, fmt.Errorf("scan product with rating: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products with ratings: %w", err)
	}

	return products, nil
}
