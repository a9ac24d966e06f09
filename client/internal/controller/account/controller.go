package account

import (
	"context"
	"errors"
	"time"

	"github.com/abhishek622/foodreview/auth/pkg/model"
	identity "github.com/abhishek622/foodreview/client/internal/gateway/identity/http"
	"github.com/abhishek622/foodreview/client/internal/notify"
	"go.uber.org/zap"
)

const defaultGoogleName = "No Name"

type identityGateway interface {
	SignUp(ctx context.Context, email, password string) (*model.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*model.Session, error)
	UpdateProfile(ctx context.Context, idToken, name, photo string) error
}

type userGateway interface {
	Upsert(ctx context.Context, u *model.User) (existed bool, err error)
}

type sessionStore interface {
	SignIn(sess *model.Session)
	UpdateProfile(name, photo string) error
	SignOut(ctx context.Context) error
}

// RegisterInput holds the fields of the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	PhotoURL string
	Password string
	Confirm  string
}

// Controller defines the account controller.
type Controller struct {
	identity identityGateway
	users    userGateway
	sessions sessionStore
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an account controller.
func New(identity identityGateway, users userGateway, sessions sessionStore, notifier notify.Notifier, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		identity: identity,
		users:    users,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an account, signs it in and records the user profile.
func (c *Controller) Register(ctx context.Context, in RegisterInput) (*model.Session, error) {
	if err := in.validate(); err != nil {
		notify.Error(c.notifier, err.Error())
		return nil, err
	}
	sess, err := c.identity.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		c.notifyIdentityError(err)
		return nil, err
	}
	c.sessions.SignIn(sess)

	if err := c.identity.UpdateProfile(ctx, sess.Token, in.Name, in.PhotoURL); err != nil {
		c.logger.Warn("Failed to update profile", zap.String("email", in.Email), zap.Error(err))
		notify.Error(c.notifier, "Failed to update profile")
	} else if err := c.sessions.UpdateProfile(in.Name, in.PhotoURL); err != nil {
		c.logger.Warn("Failed to store profile", zap.Error(err))
	}

	c.saveUser(ctx, in.Name, in.Email, in.PhotoURL)
	notify.Success(c.notifier, "Registration successful!")
	sess.DisplayName, sess.PhotoURL = in.Name, in.PhotoURL
	return sess, nil
}

// SignIn signs in an email/password account.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		notify.Error(c.notifier, "Email and password are required")
		return nil, ErrMissingField
	}
	sess, err := c.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		c.notifyIdentityError(err)
		return nil, err
	}
	c.sessions.SignIn(sess)
	notify.Success(c.notifier, "Login successful!")
	return sess, nil
}

// SignInWithGoogle signs in with a Google id token and records the user profile.
func (c *Controller) SignInWithGoogle(ctx context.Context, googleIDToken string) (*model.Session, error) {
	sess, err := c.identity.SignInWithGoogle(ctx, googleIDToken)
	if err != nil {
		c.notifyIdentityError(err)
		return nil, err
	}
	c.sessions.SignIn(sess)
	name := sess.DisplayName
	if name == "" {
		name = defaultGoogleName
	}
	c.saveUser(ctx, name, sess.Email, sess.PhotoURL)
	notify.Success(c.notifier, "Login successful!")
	return sess, nil
}

// SignOut ends the current session.
func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.sessions.SignOut(ctx); err != nil {
		notify.Error(c.notifier, "Failed to log out")
		return err
	}
	notify.Success(c.notifier, "Logged out successfully")
	return nil
}

// saveUser upserts the profile. Failures are reported but do not undo the sign-in.
func (c *Controller) saveUser(ctx context.Context, name, email, photo string) {
	existed, err := c.users.Upsert(ctx, &model.User{
		Name:      name,
		Email:     email,
		Photo:     photo,
		Role:      model.RoleUser,
		CreatedAt: c.now().UTC(),
	})
	switch {
	case err != nil:
		c.logger.Warn("Failed to save user", zap.String("email", email), zap.Error(err))
		notify.Error(c.notifier, "Failed to save user to database")
	case existed:
		notify.Info(c.notifier, "User already exists in database")
	}
}

func (c *Controller) notifyIdentityError(err error) {
	switch {
	case errors.Is(err, identity.ErrEmailExists):
		notify.Error(c.notifier, "Email is already registered")
	case errors.Is(err, identity.ErrInvalidCredentials):
		notify.Error(c.notifier, "Invalid email or password")
	default:
		c.logger.Warn("Identity request failed", zap.Error(err))
		notify.Error(c.notifier, "Authentication failed, please try again")
	}
}
