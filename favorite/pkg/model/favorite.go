package model

import (
	"time"

	reviewmodel "github.com/abhishek622/foodreview/review/pkg/model"
)

// FavoriteID identifies a favorite record.
type FavoriteID string

// Favorite links a user to a review they marked as liked.
type Favorite struct {
	ID        FavoriteID           `json:"_id"`
	ReviewID  reviewmodel.ReviewID `json:"review_id"`
	UserEmail string               `json:"user_email"`
	AddedAt   time.Time            `json:"addedAt"`
}

// CreateRequest is the body of POST /favorites.
type CreateRequest struct {
	ReviewID  reviewmodel.ReviewID `json:"reviewId"`
	UserEmail string               `json:"user_email"`
}

// FavoriteWithReview is a favorite joined with the review it points at.
type FavoriteWithReview struct {
	Favorite
	Review *reviewmodel.Review `json:"review,omitempty"`
}

type FavoriteEventType string

const (
	FavoriteEventTypePut    = FavoriteEventType("put")
	FavoriteEventTypeDelete = FavoriteEventType("delete")
)

// FavoriteEvent records an acknowledged favorite change.
type FavoriteEvent struct {
	Favorite
	ProviderID string            `json:"providerId"`
	EventType  FavoriteEventType `json:"eventType"`
}
