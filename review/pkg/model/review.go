package model

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ReviewID identifies a review on the API.
type ReviewID string

// MaxRating is the upper bound of a review rating.
const MaxRating = 5.0

// Review defines a food review as stored by the API.
type Review struct {
	ID             ReviewID  `json:"_id,omitempty"`
	FoodName       string    `json:"food_name"`
	FoodImage      string    `json:"food_image"`
	RestaurantName string    `json:"restaurant_name"`
	Location       string    `json:"location"`
	Rating         Rating    `json:"rating"`
	Text           string    `json:"review_text"`
	ReviewerName   string    `json:"reviewer_name"`
	ReviewerEmail  string    `json:"reviewer_email"`
	ReviewerImage  string    `json:"reviewer_image"`
	Date           time.Time `json:"date"`
	Favorites      bool      `json:"favorites"`
}

// Rating is a review score. Reviews saved by the web edit form store it as a
// string, so it decodes from a JSON number or a numeric string.
type Rating float64

func (r *Rating) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*r = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid rating %s", data)
	}
	*r = Rating(v)
	return nil
}

// Stars returns the rating rounded to whole stars.
func (r Review) Stars() int {
	return int(r.Rating + 0.5)
}

// Query holds the optional list parameters of GET /reviews.
type Query struct {
	Search string
	Page   int
	Limit  int
	Sort   string
}

// Page is a page of reviews.
type Page struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

// InsertResult is returned by create endpoints.
type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

// UpdateResult is returned by update endpoints.
type UpdateResult struct {
	ModifiedCount int `json:"modifiedCount"`
}

// DeleteResult is returned by delete endpoints.
type DeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}
