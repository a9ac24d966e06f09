package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/abhishek622/foodreview/pkg/gateway"
	"github.com/abhishek622/foodreview/review/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	req      gateway.Request
	response string
	err      error
}

func (s *stubAPI) Do(_ context.Context, req gateway.Request, out any) error {
	s.req = req
	if s.err != nil {
		return s.err
	}
	if out == nil || s.response == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.response), out)
}

func TestListBareArray(t *testing.T) {
	api := &stubAPI{response: `[{"_id":"R1","food_name":"Ramen","rating":4.5},{"_id":"R2","food_name":"Pho","rating":3}]`}
	g := New(api)

	page, err := g.List(context.Background(), model.Query{Search: "ramen", Sort: "rating", Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "/reviews", api.req.Path)
	assert.Equal(t, "ramen", api.req.Query.Get("search"))
	assert.Equal(t, "rating", api.req.Query.Get("sort"))
	assert.Equal(t, "2", api.req.Query.Get("page"))
	assert.Equal(t, "10", api.req.Query.Get("limit"))
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, model.ReviewID("R1"), page.Reviews[0].ID)
	assert.Equal(t, 5, page.Reviews[0].Stars())
}

func TestListEnvelope(t *testing.T) {
	api := &stubAPI{response: `{"reviews":[{"_id":"R3"}],"total":31,"page":4,"limit":10}`}
	page, err := New(api).List(context.Background(), model.Query{})
	require.NoError(t, err)
	assert.Empty(t, api.req.Query)
	assert.Equal(t, 31, page.Total)
	assert.Equal(t, 4, page.Page)
	require.Len(t, page.Reviews, 1)
}

func TestListEmpty(t *testing.T) {
	page, err := New(&stubAPI{response: `null`}).List(context.Background(), model.Query{})
	require.NoError(t, err)
	assert.NotNil(t, page.Reviews)
	assert.Empty(t, page.Reviews)
}

func TestPaths(t *testing.T) {
	api := &stubAPI{response: `{}`}
	g := New(api)
	ctx := context.Background()

	_, err := g.ListByOwner(ctx, "a b@c.com")
	require.NoError(t, err)
	assert.Equal(t, "/reviews/user/a%20b@c.com", api.req.Path)

	api.response = `{"modifiedCount":1}`
	n, err := g.Update(ctx, "R1", &model.Review{FoodName: "Ramen"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "PUT", api.req.Method)
	assert.Equal(t, "/reviews/R1", api.req.Path)

	api.response = `{"deletedCount":1}`
	n, err = g.Delete(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "DELETE", api.req.Method)

	api.response = `{"insertedId":"R9"}`
	id, err := g.Create(ctx, &model.Review{FoodName: "Ramen"})
	require.NoError(t, err)
	assert.Equal(t, model.ReviewID("R9"), id)
}

func TestListStringRating(t *testing.T) {
	api := &stubAPI{response: `[{"_id":"R1","rating":4.5},{"_id":"R2","rating":"3.5","favorites":true}]`}
	page, err := New(api).List(context.Background(), model.Query{})
	require.NoError(t, err)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, model.Rating(3.5), page.Reviews[1].Rating)
	assert.True(t, page.Reviews[1].Favorites)

	body, err := json.Marshal(page.Reviews[1])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"rating":3.5`)
	assert.Contains(t, string(body), `"favorites":true`)
}
