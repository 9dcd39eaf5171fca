package domain

import (
	"time"
)

// Product represents a product listed by a user.
type Product struct {
	ID          string    `json:"product_id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"product_name"`
	Description *string   `json:"product_description"`
	Image       *string   `json:"product_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductWithRating is a product joined with its review aggregates. Both
// aggregate fields are nil for products with no reviews; AverageRating is a
// pre-truncated decimal string (one decimal place for listings) carried
// verbatim from the database so clients see the exact representation.
type ProductWithRating struct {
	Product
	ReviewCount   *int64  `json:"count"`
	AverageRating *string `json:"average_rating"`
}

// ProductDetail is the composite returned by the single-product endpoint.
// ReviewCount here counts only reviews with a non-empty message.
type ProductDetail struct {
	Product     *ProductWithRating `json:"product"`
	Reviews     []Review           `json:"reviews"`
	ReviewCount int64              `json:"review_count"`
}

// ProductReviews is the composite returned by the product-reviews endpoint.
// AverageRating is truncated to two decimal places here, unlike listings.
type ProductReviews struct {
	Reviews       []Review `json:"reviews"`
	AverageRating *string  `json:"average_rating"`
}
