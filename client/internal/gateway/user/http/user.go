package http

import (
	"context"
	"net/http"

	"github.com/abhishek622/foodreview/auth/pkg/model"
	"github.com/abhishek622/foodreview/pkg/gateway"
)

type apiGateway interface {
	Do(ctx context.Context, req gateway.Request, out any) error
}

// Gateway defines an HTTP gateway for the users endpoint.
type Gateway struct {
	api apiGateway
}

// New creates a new HTTP gateway for users.
func New(api apiGateway) *Gateway {
	return &Gateway{api}
}

// Upsert stores the profile of u. existed is true when the API already knew the user.
func (g *Gateway) Upsert(ctx context.Context, u *model.User) (existed bool, err error) {
	var res model.UpsertResult
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/users", Body: u}, &res); err != nil {
		return false, err
	}
	return res.Message != "", nil
}
