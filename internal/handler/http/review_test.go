package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/INOCcent-afk/productly-server/internal/domain"
	apperrors "github.com/INOCcent-afk/productly-server/pkg/errors"
)

func sampleReview(author string) *domain.Review {
	return &domain.Review{
		ID:        testReviewID,
		ProductID: testProductID,
		UserID:    author,
		Message:   "Solid keys",
		Rating:    4,
		CreatedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProductReviews(t *testing.T) {
	avg := "4.33"
	d := newRouterDeps()
	d.reviews.On("ListByProductID", mock.Anything, testProductID).Return([]domain.Review{
		*sampleReview(testUserID),
		*sampleReview(testOtherID),
	}, nil)
	d.reviews.On("AverageRating", mock.Anything, testProductID).Return(&avg, nil)
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/productly/product/"+testProductID+"/reviews", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, 2, *env.Results)

	var data domain.ProductReviews
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Reviews, 2)
	// The average arrives as the database's truncated text form, untouched.
	require.Equal(t, "4.33", *data.AverageRating)
}

func TestProductReviews_NoneYet(t *testing.T) {
	d := newRouterDeps()
	d.reviews.On("ListByProductID", mock.Anything, testProductID).Return([]domain.Review{}, nil)
	d.reviews.On("AverageRating", mock.Anything, testProductID).Return(nil, nil)
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/productly/product/"+testProductID+"/reviews", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, 0, *env.Results)

	var data domain.ProductReviews
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Nil(t, data.AverageRating)
}

func addReviewRequest(t *testing.T, reviewerID string, body ReviewRequest, authUserID string, d *routerDeps) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/productly/product/"+reviewerID+"/"+testProductID+"/addReview", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, d.tokens, authUserID))
	rec := httptest.NewRecorder()
	newTestRouter(d).ServeHTTP(rec, req)
	return rec
}

func TestAddReview_Created(t *testing.T) {
	d := newRouterDeps()
	d.products.On("GetByID", mock.Anything, testProductID).Return(sampleProduct(testOtherID), nil)
	d.reviews.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.ProductID == testProductID && r.UserID == testUserID && r.Rating == 4
	})).Return(nil)
	d.pub.On("PublishReviewCreated", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	rec := addReviewRequest(t, testUserID, ReviewRequest{Message: "Solid keys", Rating: 4}, testUserID, d)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)

	var data struct {
		Review domain.Review `json:"review"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, testUserID, data.Review.UserID)
	require.NotEmpty(t, data.Review.ID)
}

func TestAddReview_PathUserMismatch(t *testing.T) {
	d := newRouterDeps()

	rec := addReviewRequest(t, testOtherID, ReviewRequest{Message: "Solid keys", Rating: 4}, testUserID, d)

	require.Equal(t, http.StatusForbidden, rec.Code)
	d.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddReview_RatingOutOfRange(t *testing.T) {
	for _, rating := range []int{-1, 6, 100} {
		d := newRouterDeps()

		rec := addReviewRequest(t, testUserID, ReviewRequest{Rating: rating}, testUserID, d)

		require.Equal(t, http.StatusBadRequest, rec.Code, "rating %d", rating)
		env := decodeEnvelope(t, rec)
		require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		d.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestAddReview_ProductMissing(t *testing.T) {
	d := newRouterDeps()
	d.products.On("GetByID", mock.Anything, testProductID).Return(nil, apperrors.ErrNotFound)

	rec := addReviewRequest(t, testUserID, ReviewRequest{Message: "Solid keys", Rating: 4}, testUserID, d)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddReview_PublishFailureTolerated(t *testing.T) {
	d := newRouterDeps()
	d.products.On("GetByID", mock.Anything, testProductID).Return(sampleProduct(testOtherID), nil)
	d.reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)
	d.pub.On("PublishReviewCreated", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Return(apperrors.ErrInternal)

	rec := addReviewRequest(t, testUserID, ReviewRequest{Message: "Solid keys", Rating: 4}, testUserID, d)

	// A broker outage never fails the write.
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateReview_Success(t *testing.T) {
	updated := sampleReview(testUserID)
	updated.Message = "Even better after a month"
	updated.Rating = 5

	d := newRouterDeps()
	d.reviews.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(testUserID), nil)
	d.reviews.On("Update", mock.Anything, testReviewID, "Even better after a month", 5).
		Return(updated, nil)
	router := newTestRouter(d)

	b, err := json.Marshal(ReviewRequest{Message: "Even better after a month", Rating: 5})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/productly/product/"+testReviewID+"/updateReview", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, d.tokens, testUserID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var data struct {
		Review domain.Review `json:"review"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 5, data.Review.Rating)
}

func TestUpdateReview_NotAuthor(t *testing.T) {
	d := newRouterDeps()
	d.reviews.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(testOtherID), nil)
	router := newTestRouter(d)

	b, err := json.Marshal(ReviewRequest{Message: "Hijacked", Rating: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/productly/product/"+testReviewID+"/updateReview", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, d.tokens, testUserID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	d.reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReview_Success(t *testing.T) {
	d := newRouterDeps()
	d.reviews.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(testUserID), nil)
	d.reviews.On("Delete", mock.Anything, testReviewID).Return(sampleReview(testUserID), nil)
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/productly/product/"+testReviewID+"/deleteReview", nil)
	req.Header.Set("Authorization", bearerToken(t, d.tokens, testUserID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status)
}

func TestDeleteReview_NotAuthor(t *testing.T) {
	d := newRouterDeps()
	d.reviews.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(testOtherID), nil)
	router := newTestRouter(d)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/productly/product/"+testReviewID+"/deleteReview", nil)
	req.Header.Set("Authorization", bearerToken(t, d.tokens, testUserID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	d.reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
