package favorite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	authmodel "github.com/abhishek622/foodreview/auth/pkg/model"
	"github.com/abhishek622/foodreview/client/internal/notify"
	"github.com/abhishek622/foodreview/favorite/pkg/model"
	"github.com/abhishek622/foodreview/pkg/gateway"
	reviewmodel "github.com/abhishek622/foodreview/review/pkg/model"
	"go.uber.org/zap"
)

var (
	// ErrNotSignedIn is returned when a favorites operation needs a session.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrUnmounted is returned when a card was unmounted before its request completed.
	ErrUnmounted = errors.New("card unmounted")
)

const (
	msgLoginRequired = "Please login to manage favorites"
	msgLookupFailed  = "Failed to load favorite status"
	msgAdded         = "Added to favorites!"
	msgAddFailed     = "Failed to add favorite"
	msgRemoved       = "Removed from favorites!"
	msgRemoveFailed  = "Failed to remove favorite"
	msgListFailed    = "Failed to load favorites"
)

type favoriteGateway interface {
	List(ctx context.Context, email string) ([]model.Favorite, error)
	Create(ctx context.Context, reviewID reviewmodel.ReviewID, email string) (model.FavoriteID, error)
	Delete(ctx context.Context, id model.FavoriteID) error
}

type reviewGateway interface {
	Get(ctx context.Context, id reviewmodel.ReviewID) (*reviewmodel.Review, error)
}

type sessionReader interface {
	Current() *authmodel.Session
}

type eventPublisher interface {
	Publish(ctx context.Context, event model.FavoriteEvent) error
}

// Controller defines the favorites controller. It hands out per-review cards
// and serves the user's favorites list.
type Controller struct {
	favorites  favoriteGateway
	reviews    reviewGateway
	sessions   sessionReader
	notifier   notify.Notifier
	publisher  eventPublisher
	providerID string
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithPublisher publishes every acknowledged favorite change to p.
func WithPublisher(p eventPublisher) Option { return func(c *Controller) { c.publisher = p } }

// WithProviderID sets the provider id stamped on published events.
func WithProviderID(id string) Option { return func(c *Controller) { c.providerID = id } }

func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.logger = l } }

// New creates a favorites controller.
func New(favorites favoriteGateway, reviews reviewGateway, sessions sessionReader, notifier notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		favorites:  favorites,
		reviews:    reviews,
		sessions:   sessions,
		notifier:   notifier,
		providerID: "foodreview",
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListDetailed returns the favorites of the current user joined with their
// reviews. Favorites whose review no longer exists carry a nil Review.
func (c *Controller) ListDetailed(ctx context.Context) ([]model.FavoriteWithReview, error) {
	sess := c.sessions.Current()
	if sess == nil {
		notify.Error(c.notifier, msgLoginRequired)
		return nil, ErrNotSignedIn
	}
	favs, err := c.favorites.List(ctx, sess.Email)
	if err != nil {
		notify.Error(c.notifier, msgListFailed)
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	res := make([]model.FavoriteWithReview, len(favs))
	errs := make([]error, len(favs))
	var wg sync.WaitGroup
	for i, f := range favs {
		res[i].Favorite = f
		wg.Add(1)
		go func(i int, id reviewmodel.ReviewID) {
			defer wg.Done()
			r, err := c.reviews.Get(ctx, id)
			if errors.Is(err, gateway.ErrNotFound) {
				return
			} else if err != nil {
				errs[i] = fmt.Errorf("get review %s: %w", id, err)
				return
			}
			res[i].Review = r
		}(i, f.ReviewID)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		notify.Error(c.notifier, msgListFailed)
		return nil, err
	}
	return res, nil
}

// Remove deletes a favorite by id.
func (c *Controller) Remove(ctx context.Context, id model.FavoriteID) error {
	sess := c.sessions.Current()
	if sess == nil {
		notify.Error(c.notifier, msgLoginRequired)
		return ErrNotSignedIn
	}
	if err := c.favorites.Delete(ctx, id); err != nil && !errors.Is(err, gateway.ErrNotFound) {
		notify.Error(c.notifier, msgRemoveFailed)
		return fmt.Errorf("remove favorite %s: %w", id, err)
	}
	notify.Success(c.notifier, msgRemoved)
	c.publish(ctx, model.Favorite{ID: id, UserEmail: sess.Email}, model.FavoriteEventTypeDelete)
	return nil
}

func (c *Controller) publish(ctx context.Context, f model.Favorite, t model.FavoriteEventType) {
	if c.publisher == nil {
		return
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = c.now().UTC()
	}
	event := model.FavoriteEvent{Favorite: f, ProviderID: c.providerID, EventType: t}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("Failed to publish favorite event", zap.String("favoriteId", string(f.ID)), zap.Error(err))
	}
}
