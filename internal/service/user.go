package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/INOCcent-afk/productly-server/internal/auth"
	"github.com/INOCcent-afk/productly-server/internal/domain"
	"github.com/INOCcent-afk/productly-server/internal/event"
	"github.com/INOCcent-afk/productly-server/internal/repository"
	"github.com/INOCcent-afk/productly-server/internal/storage"
	apperrors "github.com/INOCcent-afk/productly-server/pkg/errors"
)

// UserService implements the business logic for user and auth operations.
type UserService struct {
	repo     repository.UserRepository
	tokens   *auth.Manager
	producer event.Publisher
	store    storage.Storage
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	repo repository.UserRepository,
	tokens *auth.Manager,
	producer event.Publisher,
	store storage.Storage,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		producer: producer,
		store:    store,
		logger:   logger,
	}
}

// SignupInput holds the parameters for registering a new user.
type SignupInput struct {
	FirstName      string
	LastName       string
	Email          string
	Password       string
	CoverPhoto     *string
	DisplayPicture *string
}

// UpdateProfileInput holds the nullable fields of a partial profile update.
type UpdateProfileInput struct {
	FirstName      *string
	LastName       *string
	BioDescription *string
	DisplayPicture *string
	CoverPhoto     *string
}

// Signup registers a new user and returns a signed access token.
// A duplicate email is a conflict. The pre-insert existence check is a
// fast path only; the database unique constraint is what actually guarantees
// uniqueness under concurrent signups.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (string, error) {
	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return "", apperrors.AlreadyExists("user", "email", input.Email)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uuid.New().String(),
		Email:          input.Email,
		PasswordHash:   hash,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		CoverPhoto:     input.CoverPhoto,
		DisplayPicture: input.DisplayPicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return token, nil
}

// Login authenticates a user and returns a signed access token with the user.
// Unknown email and wrong password produce the same error so the two cases
// are indistinguishable to a caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.Unauthorized("wrong email or password")
		}
		return "", nil, fmt.Errorf("get user by email: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, apperrors.Unauthorized("wrong email or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return token, user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Profile returns a user with their review activity and counters.
func (s *UserService) Profile(ctx context.Context, id string) (*domain.UserProfile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	reviewCount, err := s.repo.CountWrittenReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count written reviews: %w", err)
	}

	ratingsCount, err := s.repo.CountRatings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}

	activity, err := s.repo.Activity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	return &domain.UserProfile{
		User:         user,
		Activity:     activity,
		ReviewCount:  reviewCount,
		RatingsCount: ratingsCount,
	}, nil
}

// Search returns users whose full name starts with the given prefix.
func (s *UserService) Search(ctx context.Context, prefix string) ([]domain.UserSummary, error) {
	users, err := s.repo.SearchByName(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies a partial update to the caller's own profile. A
// data-URI display picture is uploaded to the object store first and the
// resulting URL persisted; an already-hosted URL passes through untouched.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, targetID string, input UpdateProfileInput) (*domain.User, error) {
	if callerID != targetID {
		return nil, apperrors.Forbidden("cannot edit another user's profile")
	}

	update := &domain.UserUpdate{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		BioDescription: input.BioDescription,
		DisplayPicture: input.DisplayPicture,
		CoverPhoto:     input.CoverPhoto,
	}

	if input.DisplayPicture != nil {
		if contentType, data, ok := parseDataURI(*input.DisplayPicture); ok {
			url, err := s.uploadAvatar(ctx, targetID, contentType, data)
			if err != nil {
				return nil, apperrors.Internal(err)
			}
			update.DisplayPicture = &url
		}
	}

	user, err := s.repo.UpdateProfile(ctx, targetID, update)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", targetID)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// Publish profile update event (non-blocking on failure).
	if err := s.producer.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", user.ID))

	return user, nil
}

func (s *UserService) uploadAvatar(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	ext := extensionFor(contentType)
	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)

	result, err := s.store.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	return result.URL, nil
}

// parseDataURI splits a base64 data URI ("data:image/png;base64,...") into
// its content type and decoded bytes. Returns ok=false for anything else,
// including plain URLs.
func parseDataURI(s string) (contentType string, data []byte, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, false
	}

	meta, encoded, found := strings.Cut(s[len("data:"):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, false
	}

	return strings.TrimSuffix(meta, ";base64"), decoded, true
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
