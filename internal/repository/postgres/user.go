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

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, bio_description, display_picture, cover_photo, created_at, updated_at`

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, bio_description, display_picture, cover_photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.BioDescription,
		u.DisplayPicture,
		u.CoverPhoto,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// GetByEmail retrieves a user by their email address. The lookup is
// case-insensitive; the stored casing is preserved on the returned user.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.scanUser(ctx, query, email)
}

// List returns all users.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.BioDescription, &u.DisplayPicture, &u.CoverPhoto,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// SearchByName returns users whose full name starts with the given prefix.
// The match is case-insensitive and anchored at the start; LIKE
// metacharacters in the prefix match literally.
func (r *UserRepository) SearchByName(ctx context.Context, prefix string) ([]domain.UserSummary, error) {
	query := `
		SELECT id, first_name, last_name, display_picture
		FROM users
		WHERE (first_name || ' ' || last_name) ILIKE $1 || '%'`

	rows, err := r.db.Query(ctx, query, escapeLikePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users := []domain.UserSummary{}
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.DisplayPicture); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user summaries: %w", err)
	}

	return users, nil
}

// UpdateProfile applies a null-coalescing partial update: nil fields keep
// their stored values.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update *domain.UserUpdate) (*domain.User, error) {
	query := `
		UPDATE users SET
			first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			bio_description = COALESCE($3, bio_description),
			display_picture = COALESCE($4, display_picture),
			cover_photo = COALESCE($5, cover_photo),
			updated_at = now()
		WHERE id = $6
		RETURNING ` + userColumns

	return r.scanUser(ctx, query,
		update.FirstName,
		update.LastName,
		update.BioDescription,
		update.DisplayPicture,
		update.CoverPhoto,
		id,
	)
}

// CountWrittenReviews counts the user's reviews with a non-empty message.
func (r *UserRepository) CountWrittenReviews(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(user_id) FROM reviews WHERE user_id = $1 AND message <> ''`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count written reviews: %w", err)
	}
	return count, nil
}

// CountRatings counts all the user's reviews.
func (r *UserRepository) CountRatings(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(rating) FROM reviews WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return count, nil
}

// Activity returns the products the user has reviewed, each joined with the
// user's review count, truncated one-decimal average, and latest review date.
// The average is computed and truncated in SQL and carried as text so the
// exact decimal representation survives to the response.
func (r *UserRepository) Activity(ctx context.Context, userID string) ([]domain.UserActivity, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.image,
		       r.review_count, r.average_rating, r.latest_review_date
		FROM products p
		INNER JOIN (
			SELECT product_id,
			       MAX(created_at) AS latest_review_date,
			       COUNT(*) AS review_count,
			       TRUNC(AVG(rating), 1)::text AS average_rating
			FROM reviews
			WHERE user_id = $1
			GROUP BY product_id
		) r ON p.id = r.product_id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("load user activity: %w", err)
	}
	defer rows.Close()

	activity := []domain.UserActivity{}
	for rows.Next() {
		var a domain.UserActivity
		if err := rows.Scan(
			&a.ProductID, &a.UserID, &a.ProductName, &a.ProductDescription, &a.ProductImage,
			&a.ReviewCount, &a.AverageRating, &a.LatestReviewDate,
		); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}

	return activity, nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.BioDescription,
		&u.DisplayPicture,
		&u.CoverPhoto,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}
