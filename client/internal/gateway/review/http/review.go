package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abhishek622/foodreview/pkg/gateway"
	"github.com/abhishek622/foodreview/review/pkg/model"
)

type apiGateway interface {
	Do(ctx context.Context, req gateway.Request, out any) error
}

// Gateway defines an HTTP gateway for the review endpoints.
type Gateway struct {
	api apiGateway
}

// New creates a new HTTP gateway for reviews.
func New(api apiGateway) *Gateway {
	return &Gateway{api}
}

// List returns reviews matching q. The API may answer with a bare array or a
// paginated envelope; both are returned as a Page.
func (g *Gateway) List(ctx context.Context, q model.Query) (*model.Page, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	var raw json.RawMessage
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/reviews", Query: query}, &raw); err != nil {
		return nil, err
	}
	return decodePage(raw, q)
}

func decodePage(raw json.RawMessage, q model.Query) (*model.Page, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return &model.Page{Reviews: []model.Review{}, Page: q.Page, Limit: q.Limit}, nil
	}
	if raw[0] == '[' {
		var reviews []model.Review
		if err := json.Unmarshal(raw, &reviews); err != nil {
			return nil, fmt.Errorf("decode reviews: %w", err)
		}
		return &model.Page{Reviews: reviews, Total: len(reviews), Page: q.Page, Limit: q.Limit}, nil
	}
	var page model.Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode review page: %w", err)
	}
	if page.Reviews == nil {
		page.Reviews = []model.Review{}
	}
	return &page, nil
}

// Get returns a single review.
func (g *Gateway) Get(ctx context.Context, id model.ReviewID) (*model.Review, error) {
	var r model.Review
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/reviews/" + url.PathEscape(string(id))}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByOwner returns the reviews written by email.
func (g *Gateway) ListByOwner(ctx context.Context, email string) ([]model.Review, error) {
	var reviews []model.Review
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/reviews/user/" + url.PathEscape(email)}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Create stores a review and returns its id.
func (g *Gateway) Create(ctx context.Context, r *model.Review) (model.ReviewID, error) {
	var res model.InsertResult
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/reviews", Body: r}, &res); err != nil {
		return "", err
	}
	return model.ReviewID(res.InsertedID), nil
}

// Update replaces a review and returns the number of modified records.
func (g *Gateway) Update(ctx context.Context, id model.ReviewID, r *model.Review) (int, error) {
	var res model.UpdateResult
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodPut, Path: "/reviews/" + url.PathEscape(string(id)), Body: r}, &res); err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a review and returns the number of deleted records.
func (g *Gateway) Delete(ctx context.Context, id model.ReviewID) (int, error) {
	var res model.DeleteResult
	if err := g.api.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: "/reviews/" + url.PathEscape(string(id))}, &res); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
