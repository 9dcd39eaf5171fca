package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/INOCcent-afk/productly-server/internal/domain"
	"github.com/INOCcent-afk/productly-server/internal/repository"
	apperrors "github.com/INOCcent-afk/productly-server/pkg/errors"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Image       *string
}

// Create lists a new product under the caller's account. The path owner id
// must match the authenticated caller.
func (s *ProductService) Create(ctx context.Context, callerID, ownerID string, input CreateProductInput) (*domain.Product, error) {
	if callerID != ownerID {
		return nil, apperrors.Forbidden("cannot create a product for another user")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("user_id", ownerID),
	)

	return product, nil
}

// List returns all products with their review aggregates.
func (s *ProductService) List(ctx context.Context) ([]domain.ProductWithRating, error) {
	products, err := s.products.ListWithRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// TopRated returns all products ordered best-first, unreviewed last.
func (s *ProductService) TopRated(ctx context.Context) ([]domain.ProductWithRating, error) {
	products, err := s.products.ListTopRated(ctx)
	if err != nil {
		return nil, fmt.Errorf("list top rated products: %w", err)
	}
	return products, nil
}

// ByUser returns all products created by the given user.
func (s *ProductService) ByUser(ctx context.Context, userID string) ([]domain.Product, error) {
	products, err := s.products.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list products by user: %w", err)
	}
	return products, nil
}

// Search returns products whose name starts with the given prefix.
func (s *ProductService) Search(ctx context.Context, prefix string) ([]domain.ProductWithRating, error) {
	products, err := s.products.SearchByName(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Detail returns a product with its aggregate rating, all its reviews, and
// the count of reviews carrying a written message.
func (s *ProductService) Detail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	product, err := s.products.GetWithRating(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	reviews, err := s.reviews.ListByProductID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	writtenCount, err := s.products.CountWrittenReviews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count written reviews: %w", err)
	}

	return &domain.ProductDetail{
		Product:     product,
		Reviews:     reviews,
		ReviewCount: writtenCount,
	}, nil
}

// Update modifies a product owned by the caller.
func (s *ProductService) Update(ctx context.Context, callerID, productID, name string, description *string) (*domain.Product, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}

	if err := s.requireOwnership(ctx, callerID, productID); err != nil {
		return nil, err
	}

	product, err := s.products.Update(ctx, productID, name, description)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", productID))

	return product, nil
}

// Delete removes a product owned by the caller, cascading to its reviews.
func (s *ProductService) Delete(ctx context.Context, callerID, productID string) (*domain.Product, error) {
	if err := s.requireOwnership(ctx, callerID, productID); err != nil {
		return nil, err
	}

	product, err := s.products.Delete(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", productID))

	return product, nil
}

func (s *ProductService) requireOwnership(ctx context.Context, callerID, productID string) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("product", productID)
		}
		return fmt.Errorf("get product: %w", err)
	}

	if product.UserID != callerID {
		return apperrors.Forbidden("not the product owner")
	}

	return nil
}
