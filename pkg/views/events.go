package views

import (
	"context"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

func (s *Set) eventos(_ context.Context, req view.Request) (view.Result, error) {
	q := parseListQuery(req.Query)
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		list := s.content.Events(ctx, content.ListOptions{Offset: q.Offset, Category: q.Cat})

		var cats []string
		for _, it := range list.Items {
			cats = append(cats, it.First("category"))
		}
		p := page{Lang: req.Lang, dict: s.dict}
		data := listData{
			Items:   list.Items,
			Total:   list.Total,
			Query:   q,
			Filters: newFilters("/eventos", q, "category", q.Cat, distinct(cats), p.T("all_filter")),
			Pager:   newPager("/eventos", q, list.Total, content.DefaultPageSize),
		}
		markup, err := s.execute("eventos", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		return titled(markup, p.T("events_page_title")), nil
	}), nil
}

type eventArgs struct {
	ID string `param:"id"`
}

func (s *Set) evento(_ context.Context, req view.Request) (view.Result, error) {
	var args eventArgs
	if err := router.Bind(req.Params, &args); err != nil {
		return nil, err
	}
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		ev := s.content.Event(ctx, args.ID)
		if ev == nil {
			markup, err := s.execute("missing", req, missing{Message: "event_not_found", Href: "/eventos", Action: "back_to_events"})
			return view.Immediate{Markup: markup}, err
		}
		data := detailData{Record: ev, Extra: s.content.EventICalURL(args.ID)}
		markup, err := s.execute("evento", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		return titled(markup, ev.Text("title", req.Lang)), nil
	}), nil
}
