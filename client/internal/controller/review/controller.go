package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	authmodel "github.com/abhishek622/foodreview/auth/pkg/model"
	"github.com/abhishek622/foodreview/client/internal/notify"
	"github.com/abhishek622/foodreview/pkg/gateway"
	"github.com/abhishek622/foodreview/review/pkg/model"
)

var (
	ErrNotFound    = errors.New("review not found")
	ErrNotSignedIn = errors.New("not signed in")
	ErrNotOwner    = errors.New("review belongs to another user")
	ErrNotCreated  = errors.New("review was not created")
	ErrNoChanges   = errors.New("no changes made")
	ErrInvalid     = errors.New("invalid review")
)

const (
	defaultReviewerName  = "Anonymous User"
	defaultReviewerImage = "https://i.ibb.co/3N1sTkn/user.png"
)

type reviewGateway interface {
	List(ctx context.Context, q model.Query) (*model.Page, error)
	Get(ctx context.Context, id model.ReviewID) (*model.Review, error)
	ListByOwner(ctx context.Context, email string) ([]model.Review, error)
	Create(ctx context.Context, r *model.Review) (model.ReviewID, error)
	Update(ctx context.Context, id model.ReviewID, r *model.Review) (int, error)
	Delete(ctx context.Context, id model.ReviewID) (int, error)
}

type sessionReader interface {
	Current() *authmodel.Session
}

// Draft holds the user-editable fields of a review.
type Draft struct {
	FoodName       string
	FoodImage      string
	RestaurantName string
	Location       string
	Rating         float64
	Text           string
	Favorite       bool
}

// Validate checks the draft before anything is sent.
func (d Draft) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"food name", d.FoodName},
		{"restaurant name", d.RestaurantName},
		{"location", d.Location},
		{"review text", d.Text},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	if math.IsNaN(d.Rating) || d.Rating < 0 || d.Rating > model.MaxRating {
		return fmt.Errorf("%w: rating must be between 0 and %g", ErrInvalid, model.MaxRating)
	}
	return nil
}

// Controller defines the review controller.
type Controller struct {
	reviews  reviewGateway
	sessions sessionReader
	notifier notify.Notifier
	now      func() time.Time
}

// New creates a review controller.
func New(reviews reviewGateway, sessions sessionReader, notifier notify.Notifier) *Controller {
	return &Controller{reviews: reviews, sessions: sessions, notifier: notifier, now: time.Now}
}

// List returns a page of reviews.
func (c *Controller) List(ctx context.Context, q model.Query) (*model.Page, error) {
	page, err := c.reviews.List(ctx, q)
	if err != nil {
		notify.Error(c.notifier, "Failed to load reviews")
		return nil, err
	}
	return page, nil
}

// Get returns a review by id.
func (c *Controller) Get(ctx context.Context, id model.ReviewID) (*model.Review, error) {
	r, err := c.reviews.Get(ctx, id)
	if errors.Is(err, gateway.ErrNotFound) {
		notify.Error(c.notifier, "Review not found.")
		return nil, ErrNotFound
	} else if err != nil {
		notify.Error(c.notifier, "Failed to load review details")
		return nil, err
	}
	return r, nil
}

// Mine returns the reviews written by the signed-in user.
func (c *Controller) Mine(ctx context.Context) ([]model.Review, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	reviews, err := c.reviews.ListByOwner(ctx, sess.Email)
	if err != nil {
		notify.Error(c.notifier, "Failed to fetch reviews")
		return nil, err
	}
	return reviews, nil
}

// Create publishes a new review written by the signed-in user.
func (c *Controller) Create(ctx context.Context, d Draft) (model.ReviewID, error) {
	sess, err := c.session()
	if err != nil {
		return "", err
	}
	if err := d.Validate(); err != nil {
		notify.Error(c.notifier, err.Error())
		return "", err
	}
	r := &model.Review{
		FoodName:       d.FoodName,
		FoodImage:      d.FoodImage,
		RestaurantName: d.RestaurantName,
		Location:       d.Location,
		Rating:         model.Rating(d.Rating),
		Text:           d.Text,
		Favorites:      d.Favorite,
		ReviewerName:   sess.DisplayName,
		ReviewerEmail:  sess.Email,
		ReviewerImage:  sess.PhotoURL,
		Date:           c.now().UTC(),
	}
	if r.ReviewerName == "" {
		r.ReviewerName = defaultReviewerName
	}
	if r.ReviewerImage == "" {
		r.ReviewerImage = defaultReviewerImage
	}
	id, err := c.reviews.Create(ctx, r)
	if err != nil {
		notify.Error(c.notifier, "Something went wrong")
		return "", err
	}
	if id == "" {
		notify.Error(c.notifier, "Failed to add review")
		return "", ErrNotCreated
	}
	notify.Success(c.notifier, "Review added successfully")
	return id, nil
}

// Update replaces the editable fields of a review owned by the signed-in user.
func (c *Controller) Update(ctx context.Context, id model.ReviewID, d Draft) error {
	if err := d.Validate(); err != nil {
		notify.Error(c.notifier, err.Error())
		return err
	}
	cur, err := c.owned(ctx, id)
	if err != nil {
		return err
	}
	next := *cur
	next.FoodName = d.FoodName
	next.FoodImage = d.FoodImage
	next.RestaurantName = d.RestaurantName
	next.Location = d.Location
	next.Rating = model.Rating(d.Rating)
	next.Text = d.Text
	next.Favorites = d.Favorite

	n, err := c.reviews.Update(ctx, id, &next)
	if err != nil {
		notify.Error(c.notifier, "Failed to update review")
		return err
	}
	if n == 0 {
		notify.Error(c.notifier, "No changes made")
		return ErrNoChanges
	}
	notify.Success(c.notifier, "Review updated successfully!")
	return nil
}

// Delete removes a review owned by the signed-in user.
func (c *Controller) Delete(ctx context.Context, id model.ReviewID) error {
	if _, err := c.owned(ctx, id); err != nil {
		return err
	}
	n, err := c.reviews.Delete(ctx, id)
	if err != nil {
		notify.Error(c.notifier, "Something went wrong while deleting review")
		return err
	}
	if n == 0 {
		notify.Error(c.notifier, "Failed to delete review")
		return ErrNotFound
	}
	notify.Success(c.notifier, "Review deleted successfully")
	return nil
}

func (c *Controller) session() (*authmodel.Session, error) {
	sess := c.sessions.Current()
	if sess == nil {
		notify.Error(c.notifier, "Please login first")
		return nil, ErrNotSignedIn
	}
	return sess, nil
}

// owned fetches a review and checks the signed-in user wrote it.
func (c *Controller) owned(ctx context.Context, id model.ReviewID) (*model.Review, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	r, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(r.ReviewerEmail, sess.Email) {
		notify.Error(c.notifier, "You can only change your own reviews")
		return nil, ErrNotOwner
	}
	return r, nil
}
