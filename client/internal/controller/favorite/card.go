package favorite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhishek622/foodreview/client/internal/notify"
	"github.com/abhishek622/foodreview/favorite/pkg/model"
	"github.com/abhishek622/foodreview/pkg/gateway"
	reviewmodel "github.com/abhishek622/foodreview/review/pkg/model"
	"go.uber.org/zap"
)

// Card reconciles the favorite membership of one review for the current user.
// The state only changes after the API acknowledged a request, and operations
// on a card run one at a time.
type Card struct {
	ctrl     *Controller
	reviewID reviewmodel.ReviewID

	ops sync.Mutex

	mu    sync.RWMutex
	state State
	owner string // email the state was checked for

	life    context.Context
	unmount context.CancelFunc
}

// Card creates the reconciler of a review card. Call Unmount when the card goes away.
func (c *Controller) Card(reviewID reviewmodel.ReviewID) *Card {
	life, unmount := context.WithCancel(context.Background())
	return &Card{ctrl: c, reviewID: reviewID, life: life, unmount: unmount}
}

// ReviewID returns the review the card shows.
func (c *Card) ReviewID() reviewmodel.ReviewID { return c.reviewID }

// State returns the current state.
func (c *Card) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Card) setState(s State, owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.owner = owner
}

// Unmount cancels in-flight requests. Their results are discarded.
func (c *Card) Unmount() {
	c.unmount()
}

// Mount checks whether the review is in the current user's favorites. Without
// a session no request is made and the card stays Unknown. A failed lookup
// leaves the card Unknown and notifies the user.
func (c *Card) Mount(ctx context.Context) (State, error) {
	c.ops.Lock()
	defer c.ops.Unlock()
	return c.lookup(ctx)
}

func (c *Card) lookup(ctx context.Context) (State, error) {
	if c.life.Err() != nil {
		return c.State(), ErrUnmounted
	}
	sess := c.ctrl.sessions.Current()
	if sess == nil {
		c.setState(State{Status: StatusUnknown}, "")
		return c.State(), nil
	}

	c.mu.Lock()
	prev, prevOwner := c.state, c.owner
	c.state = State{Status: StatusChecking}
	c.mu.Unlock()

	ctx, cancel := c.bind(ctx)
	defer cancel()
	favs, err := c.ctrl.favorites.List(ctx, sess.Email)
	if c.life.Err() != nil {
		c.setState(prev, prevOwner)
		return prev, ErrUnmounted
	}
	if err != nil {
		c.setState(State{Status: StatusUnknown}, "")
		c.ctrl.logger.Warn("Failed to look up favorites", zap.String("reviewId", string(c.reviewID)), zap.Error(err))
		notify.Error(c.ctrl.notifier, msgLookupFailed)
		return c.State(), fmt.Errorf("look up favorites: %w", err)
	}

	next := State{Status: StatusNotFavorited}
	for _, f := range favs {
		if f.ReviewID == c.reviewID {
			next = State{Status: StatusFavorited, FavoriteID: f.ID}
			break
		}
	}
	c.setState(next, sess.Email)
	return next, nil
}

// Toggle adds the review to the favorites when it is not favorited and removes
// it otherwise. Without a session it notifies the user and returns
// ErrNotSignedIn without making a request. When membership is not known for
// the current user it is looked up first, so a favorite is never created twice.
func (c *Card) Toggle(ctx context.Context) (State, error) {
	if c.ctrl.sessions.Current() == nil {
		notify.Error(c.ctrl.notifier, msgLoginRequired)
		return c.State(), ErrNotSignedIn
	}

	c.ops.Lock()
	defer c.ops.Unlock()
	if c.life.Err() != nil {
		return c.State(), ErrUnmounted
	}
	sess := c.ctrl.sessions.Current()
	if sess == nil {
		notify.Error(c.ctrl.notifier, msgLoginRequired)
		return c.State(), ErrNotSignedIn
	}

	c.mu.RLock()
	state, owner := c.state, c.owner
	c.mu.RUnlock()
	if owner != sess.Email || (state.Status != StatusFavorited && state.Status != StatusNotFavorited) {
		var err error
		if state, err = c.lookup(ctx); err != nil {
			return state, err
		}
	}

	if state.Status == StatusFavorited {
		return c.remove(ctx, sess.Email, state)
	}
	return c.add(ctx, sess.Email, state)
}

func (c *Card) add(ctx context.Context, email string, state State) (State, error) {
	ctx, cancel := c.bind(ctx)
	defer cancel()
	id, err := c.ctrl.favorites.Create(ctx, c.reviewID, email)
	if c.life.Err() != nil {
		return state, ErrUnmounted
	}
	if err != nil {
		c.ctrl.logger.Warn("Failed to add favorite", zap.String("reviewId", string(c.reviewID)), zap.Error(err))
		notify.Error(c.ctrl.notifier, msgAddFailed)
		return state, fmt.Errorf("add favorite: %w", err)
	}
	next := State{Status: StatusFavorited, FavoriteID: id}
	c.setState(next, email)
	notify.Success(c.ctrl.notifier, msgAdded)
	c.ctrl.publish(ctx, model.Favorite{ID: id, ReviewID: c.reviewID, UserEmail: email}, model.FavoriteEventTypePut)
	return next, nil
}

func (c *Card) remove(ctx context.Context, email string, state State) (State, error) {
	ctx, cancel := c.bind(ctx)
	defer cancel()
	err := c.ctrl.favorites.Delete(ctx, state.FavoriteID)
	if c.life.Err() != nil {
		return state, ErrUnmounted
	}
	if err != nil && !errors.Is(err, gateway.ErrNotFound) {
		c.ctrl.logger.Warn("Failed to remove favorite", zap.String("favoriteId", string(state.FavoriteID)), zap.Error(err))
		notify.Error(c.ctrl.notifier, msgRemoveFailed)
		return state, fmt.Errorf("remove favorite: %w", err)
	}
	next := State{Status: StatusNotFavorited}
	c.setState(next, email)
	notify.Success(c.ctrl.notifier, msgRemoved)
	c.ctrl.publish(ctx, model.Favorite{ID: state.FavoriteID, ReviewID: c.reviewID, UserEmail: email}, model.FavoriteEventTypeDelete)
	return next, nil
}

// bind derives a context that is also cancelled when the card unmounts.
func (c *Card) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
