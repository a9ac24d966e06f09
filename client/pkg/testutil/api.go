// Package testutil provides an in-process review API for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	authmodel "github.com/abhishek622/foodreview/auth/pkg/model"
	favoritemodel "github.com/abhishek622/foodreview/favorite/pkg/model"
	"github.com/abhishek622/foodreview/pkg/discovery/memory"
	"github.com/abhishek622/foodreview/pkg/gateway"
	"github.com/abhishek622/foodreview/review/pkg/model"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TokenValidator resolves a bearer token to the email it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type failure struct {
	method string
	prefix string
	status int
}

// API is a fake review API backed by memory. It does not enforce the
// one-favorite-per-review rule so clients can be tested against it.
type API struct {
	*httptest.Server

	mu        sync.RWMutex
	reviews   map[model.ReviewID]*model.Review
	raw       map[model.ReviewID]json.RawMessage // documents served verbatim
	favorites map[favoritemodel.FavoriteID]*favoritemodel.Favorite
	users     map[string]*authmodel.User
	requests  []string
	failures  []failure
	tokens    TokenValidator
}

// NewAPI starts a fake API validating bearer tokens with tokens. Close it when done.
func NewAPI(tokens TokenValidator) *API {
	a := &API{
		reviews:   map[model.ReviewID]*model.Review{},
		raw:       map[model.ReviewID]json.RawMessage{},
		favorites: map[favoritemodel.FavoriteID]*favoritemodel.Favorite{},
		users:     map[string]*authmodel.User{},
		tokens:    tokens,
	}
	r := mux.NewRouter()
	r.Use(a.record, a.authenticate)
	r.HandleFunc("/reviews", a.listReviews).Methods(http.MethodGet)
	r.HandleFunc("/reviews", a.requireUser(a.createReview)).Methods(http.MethodPost)
	r.HandleFunc("/reviews/user/{email}", a.requireUser(a.listUserReviews)).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{id}", a.getReview).Methods(http.MethodGet)
	r.HandleFunc("/reviews/{id}", a.requireUser(a.updateReview)).Methods(http.MethodPut)
	r.HandleFunc("/reviews/{id}", a.requireUser(a.deleteReview)).Methods(http.MethodDelete)
	r.HandleFunc("/favorites/{email}", a.requireUser(a.listFavorites)).Methods(http.MethodGet)
	r.HandleFunc("/favorites", a.requireUser(a.createFavorite)).Methods(http.MethodPost)
	r.HandleFunc("/favorites/{id}", a.requireUser(a.deleteFavorite)).Methods(http.MethodDelete)
	r.HandleFunc("/users", a.upsertUser).Methods(http.MethodPost)
	a.Server = httptest.NewServer(r)
	return a
}

// Registry returns a registry resolving the API under gateway.DefaultServiceName.
func (a *API) Registry() *memory.Registry {
	return memory.NewStaticRegistry(gateway.DefaultServiceName, a.URL)
}

// PutReview stores r, assigning an id when it has none.
func (a *API) PutReview(r model.Review) model.ReviewID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r.ID == "" {
		r.ID = model.ReviewID(uuid.NewString())
	}
	a.reviews[r.ID] = &r
	delete(a.raw, r.ID)
	return r.ID
}

// PutRawReview stores a review document exactly as given, the way another
// client may have written it. It panics if doc has no decodable _id.
func (a *API) PutRawReview(doc string) model.ReviewID {
	var r model.Review
	if err := json.Unmarshal([]byte(doc), &r); err != nil || r.ID == "" {
		panic("testutil: bad raw review: " + doc)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reviews[r.ID] = &r
	a.raw[r.ID] = json.RawMessage(doc)
	return r.ID
}

// wireLocked returns the documents served for reviews.
func (a *API) wireLocked(reviews []model.Review) []json.RawMessage {
	res := make([]json.RawMessage, 0, len(reviews))
	for _, r := range reviews {
		if doc, ok := a.raw[r.ID]; ok {
			res = append(res, doc)
			continue
		}
		doc, _ := json.Marshal(r)
		res = append(res, doc)
	}
	return res
}

// PutFavorite stores f, assigning an id when it has none.
func (a *API) PutFavorite(f favoritemodel.Favorite) favoritemodel.FavoriteID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f.ID == "" {
		f.ID = favoritemodel.FavoriteID(uuid.NewString())
	}
	a.favorites[f.ID] = &f
	return f.ID
}

// FavoriteCount returns how many records link email to reviewID.
func (a *API) FavoriteCount(email string, reviewID model.ReviewID) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, f := range a.favorites {
		if f.UserEmail == email && f.ReviewID == reviewID {
			n++
		}
	}
	return n
}

// Review returns a stored review.
func (a *API) Review(id model.ReviewID) (model.Review, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.reviews[id]
	if !ok {
		return model.Review{}, false
	}
	return *r, true
}

// User returns a stored user.
func (a *API) User(email string) (authmodel.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[email]
	if !ok {
		return authmodel.User{}, false
	}
	return *u, true
}

// FailNext makes the next request whose method matches and whose path starts
// with prefix fail with status.
func (a *API) FailNext(method, prefix string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, failure{method: method, prefix: prefix, status: status})
}

// Requests returns "METHOD path" for every request received.
func (a *API) Requests() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.requests...)
}

func (a *API) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.requests = append(a.requests, r.Method+" "+r.URL.Path)
		for i, f := range a.failures {
			if f.method == r.Method && strings.HasPrefix(r.URL.Path, f.prefix) {
				a.failures = append(a.failures[:i], a.failures[i+1:]...)
				a.mu.Unlock()
				writeJSON(w, f.status, map[string]string{"message": http.StatusText(f.status)})
				return
			}
		}
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authenticate rejects requests carrying an invalid bearer token.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del("X-Test-User")
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized access"})
			return
		}
		email, err := a.tokens.ValidateToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized access"})
			return
		}
		r.Header.Set("X-Test-User", email)
		next.ServeHTTP(w, r)
	})
}

func (a *API) requireUser(h func(w http.ResponseWriter, r *http.Request, email string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get("X-Test-User")
		if email == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized access"})
			return
		}
		h(w, r, email)
	}
}

func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	a.mu.RLock()
	res := []model.Review{}
	for _, rev := range a.reviews {
		if search == "" || strings.Contains(strings.ToLower(rev.FoodName), search) {
			res = append(res, *rev)
		}
	}
	a.mu.RUnlock()

	if q.Get("sort") == "rating" {
		sort.SliceStable(res, func(i, j int) bool { return res[i].Rating > res[j].Rating })
	} else {
		sort.SliceStable(res, func(i, j int) bool { return res[i].Date.After(res[j].Date) })
	}

	if q.Get("page") == "" && q.Get("limit") == "" {
		a.mu.RLock()
		defer a.mu.RUnlock()
		writeJSON(w, http.StatusOK, a.wireLocked(res))
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := min((page-1)*limit, len(res))
	end := min(start+limit, len(res))
	a.mu.RLock()
	defer a.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews": a.wireLocked(res[start:end]),
		"total":   len(res),
		"page":    page,
		"limit":   limit,
	})
}

func (a *API) listUserReviews(w http.ResponseWriter, r *http.Request, _ string) {
	email := mux.Vars(r)["email"]
	a.mu.RLock()
	defer a.mu.RUnlock()
	res := []model.Review{}
	for _, rev := range a.reviews {
		if rev.ReviewerEmail == email {
			res = append(res, *rev)
		}
	}
	writeJSON(w, http.StatusOK, a.wireLocked(res))
}

func (a *API) getReview(w http.ResponseWriter, r *http.Request) {
	rev, ok := a.Review(model.ReviewID(mux.Vars(r)["id"]))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "review not found"})
		return
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	writeJSON(w, http.StatusOK, a.wireLocked([]model.Review{rev})[0])
}

func (a *API) createReview(w http.ResponseWriter, r *http.Request, _ string) {
	var rev model.Review
	if err := json.NewDecoder(r.Body).Decode(&rev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	rev.ID = ""
	id := a.PutReview(rev)
	writeJSON(w, http.StatusOK, model.InsertResult{InsertedID: string(id)})
}

func (a *API) updateReview(w http.ResponseWriter, r *http.Request, _ string) {
	id := model.ReviewID(mux.Vars(r)["id"])
	var rev model.Review
	if err := json.NewDecoder(r.Body).Decode(&rev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	cur, ok := a.reviews[id]
	if !ok {
		writeJSON(w, http.StatusOK, model.UpdateResult{})
		return
	}
	rev.ID = id
	if rev == *cur {
		writeJSON(w, http.StatusOK, model.UpdateResult{})
		return
	}
	a.reviews[id] = &rev
	delete(a.raw, id)
	writeJSON(w, http.StatusOK, model.UpdateResult{ModifiedCount: 1})
}

func (a *API) deleteReview(w http.ResponseWriter, r *http.Request, _ string) {
	id := model.ReviewID(mux.Vars(r)["id"])
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.reviews[id]; !ok {
		writeJSON(w, http.StatusOK, model.DeleteResult{})
		return
	}
	delete(a.reviews, id)
	delete(a.raw, id)
	writeJSON(w, http.StatusOK, model.DeleteResult{DeletedCount: 1})
}

func (a *API) listFavorites(w http.ResponseWriter, r *http.Request, user string) {
	email := mux.Vars(r)["email"]
	if email != user {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden access"})
		return
	}
	a.mu.RLock()
	res := []favoritemodel.Favorite{}
	for _, f := range a.favorites {
		if f.UserEmail == email {
			res = append(res, *f)
		}
	}
	a.mu.RUnlock()
	sort.SliceStable(res, func(i, j int) bool { return res[i].AddedAt.Before(res[j].AddedAt) })
	writeJSON(w, http.StatusOK, res)
}

func (a *API) createFavorite(w http.ResponseWriter, r *http.Request, user string) {
	var req favoritemodel.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if req.UserEmail != user {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden access"})
		return
	}
	id := a.PutFavorite(favoritemodel.Favorite{ReviewID: req.ReviewID, UserEmail: req.UserEmail, AddedAt: time.Now().UTC()})
	writeJSON(w, http.StatusOK, model.InsertResult{InsertedID: string(id)})
}

func (a *API) deleteFavorite(w http.ResponseWriter, r *http.Request, user string) {
	id := favoritemodel.FavoriteID(mux.Vars(r)["id"])
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.favorites[id]
	if !ok {
		writeJSON(w, http.StatusOK, model.DeleteResult{})
		return
	}
	if f.UserEmail != user {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden access"})
		return
	}
	delete(a.favorites, id)
	writeJSON(w, http.StatusOK, model.DeleteResult{DeletedCount: 1})
}

func (a *API) upsertUser(w http.ResponseWriter, r *http.Request) {
	var u authmodel.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[u.Email]; ok {
		writeJSON(w, http.StatusOK, authmodel.UpsertResult{Message: "user already exists"})
		return
	}
	a.users[u.Email] = &u
	writeJSON(w, http.StatusOK, authmodel.UpsertResult{InsertedID: uuid.NewString()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
