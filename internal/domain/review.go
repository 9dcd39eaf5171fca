package domain

import (
	"time"
)

// Review represents a user's review of a product. Rating is an integer in
// [1,5], enforced both in the service and by a database check constraint.
// Message may be empty; empty-message reviews count toward ratings but not
// toward the written-review counters.
type Review struct {
	ID        string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"review_message"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
