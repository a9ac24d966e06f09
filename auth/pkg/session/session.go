// Package session holds the signed-in identity of the client and hands out
// bearer credentials to the request gateway.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhishek622/foodreview/auth/pkg/model"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	// ErrNoSession is returned when nobody is signed in.
	ErrNoSession = errors.New("no session")
	// ErrRefreshRejected is wrapped by refreshers when the identity service
	// refuses the refresh token for good, as opposed to a transient failure.
	ErrRefreshRejected = errors.New("refresh token rejected")
)

// Credential is the bearer token of the current session together with the
// epoch of the sign-in it belongs to.
type Credential struct {
	Token string
	Epoch uint64
}

// Observer is notified on every sign-in and sign-out transition. A nil session means signed out.
type Observer func(*model.Session)

type tokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
}

// Backend persists the session between runs.
type Backend interface {
	Load() (*model.Session, error)
	Save(*model.Session) error
	Clear() error
}

// Store holds the current session.
type Store struct {
	mu        sync.RWMutex
	current   *model.Session
	epoch     uint64
	refresher tokenRefresher
	backend   Backend
	observers map[int]Observer
	nextID    int
	skew      time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBackend persists the session with b.
func WithBackend(b Backend) Option { return func(s *Store) { s.backend = b } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.logger = l } }

// WithRefreshSkew refreshes tokens that expire within d.
func WithRefreshSkew(d time.Duration) Option { return func(s *Store) { s.skew = d } }

// New creates a store. refresher may be nil, in which case tokens are never refreshed.
func New(refresher tokenRefresher, opts ...Option) *Store {
	s := &Store{
		refresher: refresher,
		observers: map[int]Observer{},
		skew:      30 * time.Second,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore loads a persisted session from the backend, if any.
func (s *Store) Restore() error {
	if s.backend == nil {
		return nil
	}
	sess, err := s.backend.Load()
	if err != nil {
		return err
	}
	if sess != nil {
		s.set(sess, true)
	}
	return nil
}

// Current returns a copy of the current session or nil.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// SignIn replaces the current session and starts a new epoch.
func (s *Store) SignIn(sess *model.Session) {
	s.set(sess, false)
}

func (s *Store) set(sess *model.Session, restored bool) {
	c := *sess
	s.mu.Lock()
	s.current = &c
	s.epoch++
	observers := s.snapshotObservers()
	s.mu.Unlock()

	if !restored {
		s.persist(&c)
	}
	s.notify(observers, &c)
}

// UpdateProfile changes the display name and photo of the current session.
func (s *Store) UpdateProfile(name, photo string) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	s.current.DisplayName = name
	s.current.PhotoURL = photo
	c := *s.current
	s.mu.Unlock()
	s.persist(&c)
	return nil
}

// Credential returns the freshest bearer token of the current session,
// refreshing it first when it is expired or about to expire. When the refresh
// fails the returned Credential carries only the epoch; errors.Is(err,
// ErrRefreshRejected) tells a revoked session from a transient failure.
func (s *Store) Credential(ctx context.Context) (Credential, error) {
	s.mu.RLock()
	if s.current == nil {
		s.mu.RUnlock()
		return Credential{}, ErrNoSession
	}
	cred := Credential{Token: s.current.Token, Epoch: s.epoch}
	refreshToken := s.current.RefreshToken
	s.mu.RUnlock()

	if !s.needsRefresh(cred.Token) || s.refresher == nil || refreshToken == "" {
		return cred, nil
	}

	fresh, err := s.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		// The epoch lets the caller invalidate the session when the refresh
		// token was rejected.
		return Credential{Epoch: cred.Epoch}, fmt.Errorf("refresh token: %w", err)
	}

	s.mu.Lock()
	if s.current == nil || s.epoch != cred.Epoch {
		// Signed out or replaced while refreshing.
		s.mu.Unlock()
		return Credential{}, ErrNoSession
	}
	s.current.Token = fresh.Token
	if fresh.RefreshToken != "" {
		s.current.RefreshToken = fresh.RefreshToken
	}
	c := *s.current
	s.mu.Unlock()
	s.persist(&c)

	cred.Token = fresh.Token
	return cred, nil
}

// needsRefresh reports whether a JWT expires within the refresh skew.
// Opaque tokens are used as they are.
func (s *Store) needsRefresh(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(s.now().Add(s.skew))
}

// SignOut clears the session.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	return s.clearLocked()
}

// Invalidate signs out the session of the given epoch. It reports false when
// that session is already gone, so concurrent auth failures sign out once.
func (s *Store) Invalidate(ctx context.Context, epoch uint64) (bool, error) {
	s.mu.Lock()
	if s.current == nil || s.epoch != epoch {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.clearLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// clearLocked is called with mu held and releases it.
func (s *Store) clearLocked() error {
	if s.backend != nil {
		if err := s.backend.Clear(); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("clear persisted session: %w", err)
		}
	}
	s.current = nil
	observers := s.snapshotObservers()
	s.mu.Unlock()
	s.notify(observers, nil)
	return nil
}

// Observe registers fn for sign-in/sign-out transitions and returns a function removing it.
func (s *Store) Observe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotObservers() []Observer {
	res := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		res = append(res, o)
	}
	return res
}

func (s *Store) notify(observers []Observer, sess *model.Session) {
	for _, o := range observers {
		if sess == nil {
			o(nil)
			continue
		}
		c := *sess
		o(&c)
	}
}

func (s *Store) persist(sess *model.Session) {
	if s.backend == nil {
		return
	}
	if err := s.backend.Save(sess); err != nil {
		s.logger.Warn("Failed to persist session", zap.Error(err))
	}
}
