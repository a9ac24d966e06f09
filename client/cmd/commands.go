package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/abhishek622/foodreview/client/internal/controller/account"
	"github.com/abhishek622/foodreview/client/internal/controller/review"
	favoritemodel "github.com/abhishek622/foodreview/favorite/pkg/model"
	"github.com/abhishek622/foodreview/review/pkg/model"
)

var errUsage = errors.New("invalid usage")

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	out := os.Stdout
	switch cmd {
	case "reviews":
		return a.listReviews(ctx, out, args)
	case "review":
		id, err := oneArg(cmd, args)
		if err != nil {
			return err
		}
		r, err := a.reviews.Get(ctx, model.ReviewID(id))
		if err != nil {
			return err
		}
		printReview(out, r)
		return nil
	case "mine":
		reviews, err := a.reviews.Mine(ctx)
		if err != nil {
			return err
		}
		printReviews(out, reviews)
		return nil
	case "add":
		d, _, err := parseDraft(cmd, args)
		if err != nil {
			return err
		}
		id, err := a.reviews.Create(ctx, d)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
		return nil
	case "edit":
		d, rest, err := parseDraft(cmd, args)
		if err != nil {
			return err
		}
		id, err := oneArg(cmd, rest)
		if err != nil {
			return err
		}
		return a.reviews.Update(ctx, model.ReviewID(id), d)
	case "delete":
		id, err := oneArg(cmd, args)
		if err != nil {
			return err
		}
		return a.reviews.Delete(ctx, model.ReviewID(id))
	case "favorites":
		favs, err := a.favorites.ListDetailed(ctx)
		if err != nil {
			return err
		}
		printFavorites(out, favs)
		return nil
	case "favorite":
		return a.favorite(ctx, out, args)
	case "unfavorite":
		id, err := oneArg(cmd, args)
		if err != nil {
			return err
		}
		return a.favorites.Remove(ctx, favoritemodel.FavoriteID(id))
	case "register":
		return a.register(ctx, args)
	case "login":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", os.Getenv("FOODREVIEW_PASSWORD"), "account password")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		_, err := a.accounts.SignIn(ctx, *email, *password)
		return err
	case "login-google":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		idToken := fs.String("id-token", "", "Google id token")
		if err := fs.Parse(args); err != nil || *idToken == "" {
			return errUsage
		}
		_, err := a.accounts.SignInWithGoogle(ctx, *idToken)
		return err
	case "logout":
		return a.accounts.SignOut(ctx)
	case "whoami":
		sess := a.sessions.Current()
		if sess == nil {
			fmt.Fprintln(out, "not signed in")
			return nil
		}
		fmt.Fprintf(out, "%s <%s>\n", sess.DisplayName, sess.Email)
		return nil
	}
	usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) listReviews(ctx context.Context, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("reviews", flag.ContinueOnError)
	var q model.Query
	fs.StringVar(&q.Search, "search", "", "filter by food name")
	fs.IntVar(&q.Page, "page", 0, "page number")
	fs.IntVar(&q.Limit, "limit", 0, "page size")
	fs.StringVar(&q.Sort, "sort", "", "sort order (rating)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	page, err := a.reviews.List(ctx, q)
	if err != nil {
		return err
	}
	printReviews(out, page.Reviews)
	if page.Limit > 0 {
		fmt.Fprintf(out, "page %d, %d of %d reviews\n", page.Page, len(page.Reviews), page.Total)
	}
	return nil
}

func (a *app) favorite(ctx context.Context, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("favorite", flag.ContinueOnError)
	toggle := fs.Bool("toggle", false, "add or remove the review from favorites")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	id, err := oneArg("favorite", fs.Args())
	if err != nil {
		return err
	}
	card := a.favorites.Card(model.ReviewID(id))
	defer card.Unmount()

	state, err := card.Mount(ctx)
	if err == nil && *toggle {
		state, err = card.Toggle(ctx)
	}
	fmt.Fprintln(out, state.Status)
	return err
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var in account.RegisterInput
	fs.StringVar(&in.Name, "name", "", "display name")
	fs.StringVar(&in.Email, "email", "", "account email")
	fs.StringVar(&in.PhotoURL, "photo", "", "photo URL")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.Confirm, "confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	_, err := a.accounts.Register(ctx, in)
	return err
}

// parseDraft parses the review flags of add and edit and returns the positional args.
func parseDraft(cmd string, args []string) (review.Draft, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var d review.Draft
	fs.StringVar(&d.FoodName, "food", "", "food name")
	fs.StringVar(&d.FoodImage, "image", "", "food image URL")
	fs.StringVar(&d.RestaurantName, "restaurant", "", "restaurant name")
	fs.StringVar(&d.Location, "location", "", "location")
	fs.Float64Var(&d.Rating, "rating", 0, "rating from 0 to 5")
	fs.StringVar(&d.Text, "text", "", "review text")
	fs.BoolVar(&d.Favorite, "favorite", false, "mark the review as a favorite")
	// Allow the id of edit before the flags.
	var lead []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		lead, args = append(lead, args[0]), args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return review.Draft{}, nil, errUsage
	}
	return d, append(lead, fs.Args()...), nil
}

func oneArg(cmd string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%w: %s takes exactly one argument", errUsage, cmd)
	}
	return args[0], nil
}

func printReviews(out io.Writer, reviews []model.Review) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFOOD\tRESTAURANT\tLOCATION\tRATING\tREVIEWER\t")
	for _, r := range reviews {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.FoodName, r.RestaurantName, r.Location, stars(r), r.ReviewerName, favoriteBadge(r))
	}
	w.Flush()
}

func printReview(out io.Writer, r *model.Review) {
	fmt.Fprintf(out, "%s at %s, %s\n", r.FoodName, r.RestaurantName, r.Location)
	if r.Favorites {
		fmt.Fprintln(out, favoriteBadge(*r))
	}
	fmt.Fprintf(out, "%s (%.1f)\n", stars(*r), r.Rating)
	fmt.Fprintf(out, "by %s on %s\n\n%s\n", r.ReviewerName, r.Date.Format("2006-01-02"), r.Text)
}

func printFavorites(out io.Writer, favs []favoritemodel.FavoriteWithReview) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FAVORITE\tREVIEW\tFOOD\tADDED")
	for _, f := range favs {
		food := "(review removed)"
		if f.Review != nil {
			food = f.Review.FoodName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.ReviewID, food, f.AddedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func favoriteBadge(r model.Review) string {
	if r.Favorites {
		return "❤️ Favorite"
	}
	return ""
}

func stars(r model.Review) string {
	n := min(max(r.Stars(), 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
