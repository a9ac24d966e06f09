package favorite

import (
	"context"
	"errors"
	"testing"

	authmodel "github.com/abhishek622/foodreview/auth/pkg/model"
	"github.com/abhishek622/foodreview/client/internal/notify"
	"github.com/abhishek622/foodreview/favorite/pkg/model"
	"github.com/abhishek622/foodreview/pkg/gateway"
	reviewmodel "github.com/abhishek622/foodreview/review/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var alice = &authmodel.Session{Email: "a@b.com", Token: "t"}

type fixture struct {
	favorites *MockfavoriteGateway
	reviews   *MockreviewGateway
	sessions  *MocksessionReader
	publisher *MockeventPublisher
	notices   *notify.Recorder
	ctrl      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mc := gomock.NewController(t)
	f := &fixture{
		favorites: NewMockfavoriteGateway(mc),
		reviews:   NewMockreviewGateway(mc),
		sessions:  NewMocksessionReader(mc),
		publisher: NewMockeventPublisher(mc),
		notices:   &notify.Recorder{},
	}
	f.ctrl = New(f.favorites, f.reviews, f.sessions, f.notices, WithPublisher(f.publisher))
	return f
}

func TestMountWithoutSessionMakesNoRequest(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(nil)

	state, err := f.ctrl.Card("R1").Mount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, State{Status: StatusUnknown}, state)
	assert.Empty(t, f.notices.Notices())
}

func TestMount(t *testing.T) {
	tests := []struct {
		name    string
		favs    []model.Favorite
		listErr error
		want    State
		wantErr bool
		notices []string
	}{
		{
			name: "match found",
			favs: []model.Favorite{{ID: "F0", ReviewID: "R0"}, {ID: "F1", ReviewID: "R1"}},
			want: State{Status: StatusFavorited, FavoriteID: "F1"},
		},
		{
			name: "no match",
			favs: []model.Favorite{{ID: "F0", ReviewID: "R0"}},
			want: State{Status: StatusNotFavorited},
		},
		{
			name: "empty collection",
			want: State{Status: StatusNotFavorited},
		},
		{
			name:    "lookup fails",
			listErr: errors.New("connection refused"),
			want:    State{Status: StatusUnknown},
			wantErr: true,
			notices: []string{msgLookupFailed},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.sessions.EXPECT().Current().Return(alice)
			f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return(tt.favs, tt.listErr)

			card := f.ctrl.Card("R1")
			state, err := card.Mount(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, state)
			assert.Equal(t, tt.want, card.State())
			if len(tt.notices) == 0 {
				assert.Empty(t, f.notices.Messages())
			} else {
				assert.Equal(t, tt.notices, f.notices.Messages())
			}
		})
	}
}

func TestToggleWithoutSession(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(nil)

	state, err := f.ctrl.Card("R1").Toggle(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Equal(t, State{Status: StatusUnknown}, state)
	assert.Equal(t, []string{"Please login to manage favorites"}, f.notices.Messages())
}

func TestToggleAddsThenRemoves(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	gomock.InOrder(
		f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return(nil, nil),
		f.favorites.EXPECT().Create(gomock.Any(), reviewmodel.ReviewID("R1"), "a@b.com").Return(model.FavoriteID("F1"), nil),
		f.favorites.EXPECT().Delete(gomock.Any(), model.FavoriteID("F1")).Return(nil),
	)
	var events []model.FavoriteEvent
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e model.FavoriteEvent) error {
		events = append(events, e)
		return nil
	}).Times(2)

	card := f.ctrl.Card("R1")
	state, err := card.Mount(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusNotFavorited, state.Status)

	state, err = card.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, State{Status: StatusFavorited, FavoriteID: "F1"}, state)
	assert.True(t, state.Favorited())

	state, err = card.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, State{Status: StatusNotFavorited}, state)
	assert.Empty(t, state.FavoriteID)

	assert.Equal(t, []string{msgAdded, msgRemoved}, f.notices.Messages())
	require.Len(t, events, 2)
	assert.Equal(t, model.FavoriteEventTypePut, events[0].EventType)
	assert.Equal(t, model.FavoriteID("F1"), events[0].ID)
	assert.Equal(t, model.FavoriteEventTypeDelete, events[1].EventType)
	assert.Equal(t, "foodreview", events[1].ProviderID)
}

func TestToggleCreateFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return(nil, nil)
	f.favorites.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.FavoriteID(""), errors.New("boom"))

	card := f.ctrl.Card("R1")
	_, err := card.Mount(context.Background())
	require.NoError(t, err)

	state, err := card.Toggle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, State{Status: StatusNotFavorited}, state)
	assert.Equal(t, []string{msgAddFailed}, f.notices.Messages())
}

func TestToggleDeleteFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return([]model.Favorite{{ID: "F1", ReviewID: "R1"}}, nil)
	f.favorites.EXPECT().Delete(gomock.Any(), model.FavoriteID("F1")).Return(&gateway.StatusError{StatusCode: 500})

	card := f.ctrl.Card("R1")
	_, err := card.Mount(context.Background())
	require.NoError(t, err)

	state, err := card.Toggle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, State{Status: StatusFavorited, FavoriteID: "F1"}, state)
	assert.Equal(t, []string{msgRemoveFailed}, f.notices.Messages())
}

func TestToggleDeleteAlreadyGone(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return([]model.Favorite{{ID: "F1", ReviewID: "R1"}}, nil)
	f.favorites.EXPECT().Delete(gomock.Any(), model.FavoriteID("F1")).Return(gateway.ErrNotFound)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	card := f.ctrl.Card("R1")
	_, err := card.Mount(context.Background())
	require.NoError(t, err)

	state, err := card.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, State{Status: StatusNotFavorited}, state)
}

func TestToggleUnknownLooksUpFirst(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	gomock.InOrder(
		f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return([]model.Favorite{{ID: "F7", ReviewID: "R1"}}, nil),
		f.favorites.EXPECT().Delete(gomock.Any(), model.FavoriteID("F7")).Return(nil),
	)

	state, err := f.ctrl.Card("R1").Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, State{Status: StatusNotFavorited}, state)
}

func TestToggleUnknownLookupFailureMakesNoWrite(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return(nil, errors.New("timeout"))

	state, err := f.ctrl.Card("R1").Toggle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, State{Status: StatusUnknown}, state)
}

func TestToggleRechecksWhenUserChanged(t *testing.T) {
	f := newFixture(t)
	bob := &authmodel.Session{Email: "bob@b.com", Token: "t2"}
	gomock.InOrder(
		f.sessions.EXPECT().Current().Return(alice),
		f.sessions.EXPECT().Current().Return(bob).AnyTimes(),
	)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	gomock.InOrder(
		f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return([]model.Favorite{{ID: "F1", ReviewID: "R1"}}, nil),
		f.favorites.EXPECT().List(gomock.Any(), "bob@b.com").Return(nil, nil),
		f.favorites.EXPECT().Create(gomock.Any(), reviewmodel.ReviewID("R1"), "bob@b.com").Return(model.FavoriteID("F2"), nil),
	)

	card := f.ctrl.Card("R1")
	state, err := card.Mount(context.Background())
	require.NoError(t, err)
	require.True(t, state.Favorited())

	state, err = card.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, State{Status: StatusFavorited, FavoriteID: "F2"}, state)
}

func TestUnmountDuringLookupDiscardsResult(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	card := f.ctrl.Card("R1")
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").DoAndReturn(func(ctx context.Context, _ string) ([]model.Favorite, error) {
		assert.Equal(t, StatusChecking, card.State().Status)
		card.Unmount()
		<-ctx.Done()
		return nil, ctx.Err()
	})

	state, err := card.Mount(context.Background())
	assert.ErrorIs(t, err, ErrUnmounted)
	assert.Equal(t, State{Status: StatusUnknown}, state)
	assert.Equal(t, State{Status: StatusUnknown}, card.State())
	assert.Empty(t, f.notices.Notices())

	_, err = card.Toggle(context.Background())
	assert.ErrorIs(t, err, ErrUnmounted)
}

func TestUnmountDuringAddDiscardsResult(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
	card := f.ctrl.Card("R1")
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return(nil, nil)
	f.favorites.EXPECT().Create(gomock.Any(), reviewmodel.ReviewID("R1"), "a@b.com").DoAndReturn(
		func(ctx context.Context, _ reviewmodel.ReviewID, _ string) (model.FavoriteID, error) {
			card.Unmount()
			<-ctx.Done()
			// The API committed before the card went away.
			return "F9", nil
		})

	_, err := card.Mount(context.Background())
	require.NoError(t, err)
	state, err := card.Toggle(context.Background())
	assert.ErrorIs(t, err, ErrUnmounted)
	assert.Equal(t, State{Status: StatusNotFavorited}, state)
	assert.Equal(t, State{Status: StatusNotFavorited}, card.State())
	assert.Empty(t, f.notices.Notices())
}

func TestUnmountDuringRemoveDiscardsResult(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice).AnyTimes()
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
	card := f.ctrl.Card("R1")
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return([]model.Favorite{{ID: "F1", ReviewID: "R1"}}, nil)
	f.favorites.EXPECT().Delete(gomock.Any(), model.FavoriteID("F1")).DoAndReturn(
		func(ctx context.Context, _ model.FavoriteID) error {
			card.Unmount()
			<-ctx.Done()
			return ctx.Err()
		})

	_, err := card.Mount(context.Background())
	require.NoError(t, err)
	state, err := card.Toggle(context.Background())
	assert.ErrorIs(t, err, ErrUnmounted)
	want := State{Status: StatusFavorited, FavoriteID: "F1"}
	assert.Equal(t, want, state)
	assert.Equal(t, want, card.State())
	assert.Empty(t, f.notices.Notices())
}

func TestListDetailed(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice)
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return([]model.Favorite{
		{ID: "F1", ReviewID: "R1"},
		{ID: "F2", ReviewID: "gone"},
	}, nil)
	f.reviews.EXPECT().Get(gomock.Any(), reviewmodel.ReviewID("R1")).Return(&reviewmodel.Review{ID: "R1", FoodName: "Ramen"}, nil)
	f.reviews.EXPECT().Get(gomock.Any(), reviewmodel.ReviewID("gone")).Return(nil, &gateway.StatusError{StatusCode: 404})

	res, err := f.ctrl.ListDetailed(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Ramen", res[0].Review.FoodName)
	assert.Nil(t, res[1].Review)
}

func TestListDetailedFailure(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice)
	f.favorites.EXPECT().List(gomock.Any(), "a@b.com").Return([]model.Favorite{{ID: "F1", ReviewID: "R1"}}, nil)
	f.reviews.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("reset by peer"))

	_, err := f.ctrl.ListDetailed(context.Background())
	assert.ErrorContains(t, err, "reset by peer")
	assert.Equal(t, []string{msgListFailed}, f.notices.Messages())
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(alice)
	f.favorites.EXPECT().Delete(gomock.Any(), model.FavoriteID("F1")).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.ctrl.Remove(context.Background(), "F1"))
	assert.Equal(t, []string{msgRemoved}, f.notices.Messages())
}

func TestRemoveWithoutSession(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Current().Return(nil)

	assert.ErrorIs(t, f.ctrl.Remove(context.Background(), "F1"), ErrNotSignedIn)
}
