package domain

import (
	"time"
)

// User represents a registered user in the system.
type User struct {
	ID             string    `json:"user_id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	BioDescription *string   `json:"bio_description"`
	DisplayPicture *string   `json:"display_picture"`
	CoverPhoto     *string   `json:"cover_photo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserSummary is the reduced shape returned by user search.
type UserSummary struct {
	ID             string  `json:"user_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	DisplayPicture *string `json:"display_picture"`
}

// UserActivity is one row of a user's review activity: a product the user
// reviewed, with the user's aggregate contribution to it. AverageRating is a
// pre-truncated decimal string (one decimal place) and is nil only when the
// row would have no reviews, which cannot happen for activity rows.
type UserActivity struct {
	ProductID          string    `json:"product_id"`
	UserID             string    `json:"user_id"`
	ProductName        string    `json:"product_name"`
	ProductDescription *string   `json:"product_description"`
	ProductImage       *string   `json:"product_image"`
	ReviewCount        int64     `json:"count"`
	AverageRating      *string   `json:"average_rating"`
	LatestReviewDate   time.Time `json:"latest_review_date"`
}

// UserProfile is the composite returned by the single-user endpoint.
type UserProfile struct {
	User         *User          `json:"user"`
	Activity     []UserActivity `json:"activity"`
	ReviewCount  int64          `json:"reviews_count"`
	RatingsCount int64          `json:"ratings_count"`
}

// UserUpdate carries the nullable fields of a partial profile update. Nil
// fields keep their stored values.
type UserUpdate struct {
	FirstName      *string
	LastName       *string
	BioDescription *string
	DisplayPicture *string
	CoverPhoto     *string
}
