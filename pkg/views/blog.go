package views

import (
	"context"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

func (s *Set) blog(_ context.Context, req view.Request) (view.Result, error) {
	q := parseListQuery(req.Query)
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		list := s.content.BlogPosts(ctx, content.ListOptions{Offset: q.Offset, Search: q.Search, Category: q.Cat})

		var cats []string
		for _, it := range list.Items {
			cats = append(cats, it.Object("category").String("name"))
		}
		p := page{Lang: req.Lang, dict: s.dict}
		data := listData{
			Items:   list.Items,
			Total:   list.Total,
			Query:   q,
			Filters: newFilters("/blog", q, "category", q.Cat, distinct(cats), p.T("all_filter")),
			Pager:   newPager("/blog", q, list.Total, content.DefaultPageSize),
		}
		markup, err := s.execute("blog", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		return titled(markup, "Blog"), nil
	}), nil
}

type postArgs struct {
	Slug string `param:"slug"`
}

func (s *Set) post(_ context.Context, req view.Request) (view.Result, error) {
	var args postArgs
	if err := router.Bind(req.Params, &args); err != nil {
		return nil, err
	}
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		post := s.content.BlogPost(ctx, args.Slug)
		if post == nil {
			markup, err := s.execute("missing", req, missing{Message: "no_articles", Href: "/blog", Action: "back_to_blog"})
			return view.Immediate{Markup: markup}, err
		}

		related := s.content.RelatedBlogPosts(ctx, args.Slug).Items
		if len(related) > relatedLimit {
			related = related[:relatedLimit]
		}
		markup, err := s.execute("post", req, detailData{Record: post, Related: related})
		if err != nil {
			return view.Immediate{}, err
		}
		return titled(markup, post.Text("title", req.Lang)), nil
	}), nil
}
