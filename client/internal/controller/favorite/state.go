package favorite

import "github.com/abhishek622/foodreview/favorite/pkg/model"

// Status is the favorite membership of a review card as last acknowledged by the API.
type Status int

const (
	// StatusUnknown means there is no session or membership was never checked.
	StatusUnknown Status = iota
	// StatusChecking means a membership lookup is in flight.
	StatusChecking
	StatusNotFavorited
	StatusFavorited
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusNotFavorited:
		return "not favorited"
	case StatusFavorited:
		return "favorited"
	}
	return "unknown"
}

// State is the value returned by every card operation. FavoriteID is set only when Favorited.
type State struct {
	Status     Status
	FavoriteID model.FavoriteID
}

// Favorited reports whether the card shows a filled heart.
func (s State) Favorited() bool {
	return s.Status == StatusFavorited
}
