package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/abhishek622/foodreview/favorite/pkg/model"
	"github.com/abhishek622/foodreview/pkg/gateway"
	reviewmodel "github.com/abhishek622/foodreview/review/pkg/model"
)

type apiGateway interface {
	Do(ctx context.Context, req gateway.Request, out any) error
}

// Gateway defines an HTTP gateway for the favorites endpoints.
type Gateway struct {
	api apiGateway
}

// New creates a new HTTP gateway for favorites.
func New(api apiGateway) *Gateway {
	return &Gateway{api}
}

// List returns the favorites owned by email.
func (g *Gateway) List(ctx context.Context, email string) ([]model.Favorite, error) {
	var favs []model.Favorite
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/favorites/" + url.PathEscape(email)}, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// Create adds reviewID to the favorites of email and returns the new record id.
func (g *Gateway) Create(ctx context.Context, reviewID reviewmodel.ReviewID, email string) (model.FavoriteID, error) {
	var res reviewmodel.InsertResult
	req := gateway.Request{
		Method: http.MethodPost,
		Path:   "/favorites",
		Body:   model.CreateRequest{ReviewID: reviewID, UserEmail: email},
	}
	if err := g.api.Do(ctx, req, &res); err != nil {
		return "", err
	}
	if res.InsertedID == "" {
		return "", fmt.Errorf("create favorite for review %s: missing insertedId", reviewID)
	}
	return model.FavoriteID(res.InsertedID), nil
}

// Delete removes a favorite record. A response reporting zero deleted records
// is returned as gateway.ErrNotFound.
func (g *Gateway) Delete(ctx context.Context, id model.FavoriteID) error {
	var res struct {
		DeletedCount *int `json:"deletedCount"`
	}
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: "/favorites/" + url.PathEscape(string(id))}, &res); err != nil {
		return err
	}
	if res.DeletedCount != nil && *res.DeletedCount == 0 {
		return fmt.Errorf("delete favorite %s: %w", id, gateway.ErrNotFound)
	}
	return nil
}
