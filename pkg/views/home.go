package views

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

// QuickLink is a shortcut tile on the home page.
type QuickLink struct {
	Href  string
	Icon  string
	Label map[string]string
}

var quickLinks = []QuickLink{
	{"/sermoes", "play", map[string]string{"pt": "Sermões", "en": "Sermons"}},
	{"/blog", "book", map[string]string{"pt": "Blog", "en": "Blog"}},
	{"/eventos", "calendar", map[string]string{"pt": "Agenda", "en": "Events"}},
	{"/oracoes", "heart", map[string]string{"pt": "Oração", "en": "Prayer"}},
	{"/biblia", "book-open", map[string]string{"pt": "Bíblia", "en": "Bible"}},
	{"/avisos", "bell", map[string]string{"pt": "Avisos", "en": "Notices"}},
}

const homeCards = 3

type homeData struct {
	Banners    []content.Object
	Verse      content.Verse
	NextEvent  content.Object
	Posts      []content.Object
	Events     []content.Object
	QuickLinks []QuickLink
}

func (s *Set) home(_ context.Context, req view.Request) (view.Result, error) {
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		data := homeData{QuickLinks: quickLinks}

		// Every fetch degrades to an empty section on its own.
		var g errgroup.Group
		g.Go(func() error {
			data.Banners = s.content.Banners(ctx)
			return nil
		})
		g.Go(func() error {
			data.Verse = s.content.VerseOfTheDay(ctx, req.Lang)
			return nil
		})
		g.Go(func() error {
			data.NextEvent = s.content.NextEvent(ctx)
			return nil
		})
		g.Go(func() error {
			data.Posts = s.content.BlogPosts(ctx, content.ListOptions{Limit: homeCards}).Items
			return nil
		})
		g.Go(func() error {
			data.Events = s.content.Events(ctx, content.ListOptions{Limit: homeCards}).Items
			return nil
		})
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return view.Immediate{}, err
		}
		markup, err := s.execute("home", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		return view.Immediate{Markup: markup}, nil
	}), nil
}
