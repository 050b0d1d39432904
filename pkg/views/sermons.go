package views

import (
	"context"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

const relatedLimit = 4

type listData struct {
	Items   []content.Object
	Total   int
	Query   listQuery
	Filters []Filter
	Pager   Pager
}

func (s *Set) sermoes(_ context.Context, req view.Request) (view.Result, error) {
	q := parseListQuery(req.Query)
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		list := s.content.Sermons(ctx, content.ListOptions{Offset: q.Offset, Search: q.Search, Tag: q.Tag})

		var tags []string
		for _, it := range list.Items {
			tags = append(tags, it.Strings("tags")...)
		}
		lang := page{Lang: req.Lang, dict: s.dict}
		data := listData{
			Items:   list.Items,
			Total:   list.Total,
			Query:   q,
			Filters: newFilters("/sermoes", q, "tag", q.Tag, distinct(tags), lang.T("all_filter")),
			Pager:   newPager("/sermoes", q, list.Total, content.DefaultPageSize),
		}
		markup, err := s.execute("sermoes", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		return titled(markup, lang.T("sermons_page_title")), nil
	}), nil
}

type sermonArgs struct {
	ID string `param:"id"`
}

type detailData struct {
	Record  content.Object
	Related []content.Object
	Extra   string
}

func (s *Set) sermao(_ context.Context, req view.Request) (view.Result, error) {
	var args sermonArgs
	if err := router.Bind(req.Params, &args); err != nil {
		return nil, err
	}
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		sermon := s.content.Sermon(ctx, args.ID)
		if sermon == nil {
			markup, err := s.execute("missing", req, missing{Message: "sermon_not_found", Href: "/sermoes", Action: "see_all"})
			return view.Immediate{Markup: markup}, err
		}

		related := s.content.RelatedSermons(ctx, args.ID).Items
		if len(related) > relatedLimit {
			related = related[:relatedLimit]
		}
		markup, err := s.execute("sermao", req, detailData{Record: sermon, Related: related})
		if err != nil {
			return view.Immediate{}, err
		}

		title := sermon.Text("title", req.Lang)
		if title == "" {
			title = "Sermão"
		}
		if req.Resumed {
			return titled(markup, title), nil
		}
		return titled(markup, title, func(ctx context.Context, _ view.Surface) {
			s.content.RecordSermonView(ctx, args.ID)
		}), nil
	}), nil
}

// missing is the empty state shown for a record the API does not have.
type missing struct {
	Message string
	Href    string
	Action  string
}
