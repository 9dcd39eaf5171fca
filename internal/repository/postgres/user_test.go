package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INOCcent-afk/productly-server/internal/domain"
	apperrors "github.com/INOCcent-afk/productly-server/pkg/errors"
)

func newUserTestFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func strPtr(s string) *string { return &s }

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:             "fe1e8579-4ff7-4a61-bdb6-128342257308",
		Email:          "alice@example.com",
		PasswordHash:   "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:      "Alice",
		LastName:       "Smith",
		BioDescription: strPtr("product enthusiast"),
		DisplayPicture: strPtr("https://img.example.com/alice.png"),
		CoverPhoto:     nil,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// userTestColumns returns the 10 column names scanned by scanUser.
func userTestColumns() []string {
	return []string{
		"id", "email", "password_hash", "first_name", "last_name",
		"bio_description", "display_picture", "cover_photo",
		"created_at", "updated_at",
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userTestColumns()).AddRow(
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.BioDescription, u.DisplayPicture, u.CoverPhoto,
		u.CreatedAt, u.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
			u.BioDescription, u.DisplayPicture, u.CoverPhoto,
			u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
			u.BioDescription, u.DisplayPicture, u.CoverPhoto,
			u.CreatedAt, u.UpdatedAt,
		).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID / GetByEmail
// ---------------------------------------------------------------------------

func TestUserRepository_GetByID_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.BioDescription, got.BioDescription)
	assert.Nil(t, got.CoverPhoto)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing-id")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_CaseInsensitive(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	recased := strings.ToUpper(u.Email)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs(recased).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), recased)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email, "stored casing should be preserved")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// List / SearchByName
// ---------------------------------------------------------------------------

func TestUserRepository_List_ReturnsAll(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	rows := userRow(u).AddRow(
		"user-2", "bob@example.com", "hash", "Bob", "Jones",
		nil, nil, nil, u.CreatedAt, u.UpdatedAt,
	)

	mock.ExpectQuery("SELECT .+ FROM users ORDER BY created_at").
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice@example.com", got[0].Email)
	assert.Equal(t, "bob@example.com", got[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_Empty(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users ORDER BY created_at").
		WillReturnRows(pgxmock.NewRows(userTestColumns()))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SearchByName_EscapesLikeMetacharacters(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "first_name", "last_name", "display_picture"}).
		AddRow("user-1", "Al%", "Smith", nil)

	// The raw prefix "al%" must be escaped so '%' matches literally.
	mock.ExpectQuery(`ILIKE \$1 \|\| '%'`).
		WithArgs(`al\%`).
		WillReturnRows(rows)

	got, err := repo.SearchByName(context.Background(), "al%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "user-1", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SearchByName_NoMatches(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery(`ILIKE \$1 \|\| '%'`).
		WithArgs("zz").
		WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "display_picture"}))

	got, err := repo.SearchByName(context.Background(), "zz")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// UpdateProfile
// ---------------------------------------------------------------------------

func TestUserRepository_UpdateProfile_PartialUpdate(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	u := sampleUser()
	update := &domain.UserUpdate{
		FirstName:      strPtr("Alicia"),
		BioDescription: strPtr("updated bio"),
	}

	updated := *u
	updated.FirstName = "Alicia"
	updated.BioDescription = strPtr("updated bio")

	mock.ExpectQuery("UPDATE users SET").
		WithArgs(update.FirstName, update.LastName, update.BioDescription, update.DisplayPicture, update.CoverPhoto, u.ID).
		WillReturnRows(userRow(&updated))

	got, err := repo.UpdateProfile(context.Background(), u.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.FirstName)
	assert.Equal(t, "Smith", got.LastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_NotFound(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	update := &domain.UserUpdate{FirstName: strPtr("Alicia")}

	mock.ExpectQuery("UPDATE users SET").
		WithArgs(update.FirstName, update.LastName, update.BioDescription, update.DisplayPicture, update.CoverPhoto, "missing-id").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.UpdateProfile(context.Background(), "missing-id", update)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Counters / Activity
// ---------------------------------------------------------------------------

func TestUserRepository_CountWrittenReviews_ExcludesEmptyMessages(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(user_id\) FROM reviews WHERE user_id = \$1 AND message <> ''`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountWrittenReviews(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CountRatings_CountsAllReviews(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(rating\) FROM reviews WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))

	count, err := repo.CountRatings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Activity_CarriesTruncatedAverageAsText(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	reviewedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "name", "description", "image",
		"review_count", "average_rating", "latest_review_date",
	}).AddRow(
		"prod-1", "owner-1", "Widget", strPtr("a widget"), nil,
		int64(2), strPtr("4.5"), reviewedAt,
	)

	mock.ExpectQuery("INNER JOIN").
		WithArgs("user-1").
		WillReturnRows(rows)

	activity, err := repo.Activity(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, "prod-1", activity[0].ProductID)
	assert.Equal(t, int64(2), activity[0].ReviewCount)
	// The average arrives as the exact truncated text from SQL.
	require.NotNil(t, activity[0].AverageRating)
	assert.Equal(t, "4.5", *activity[0].AverageRating)
	assert.Equal(t, reviewedAt, activity[0].LatestReviewDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Activity_EmptyForUserWithNoReviews(t *testing.T) {
	repo, mock := newUserTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("INNER JOIN").
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "name", "description", "image",
			"review_count", "average_rating", "latest_review_date",
		}))

	activity, err := repo.Activity(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, activity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
