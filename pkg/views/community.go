package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

// formData carries the endpoint a form posts to. The browser submits
// forms straight to the content API.
type formData struct {
	listData
	Endpoint string
	Church   content.Object
}

func (s *Set) oracoes(_ context.Context, req view.Request) (view.Result, error) {
	q := parseListQuery(req.Query)
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		list := s.content.Prayers(ctx, content.ListOptions{Offset: q.Offset})
		data := formData{
			listData: listData{
				Items: list.Items,
				Total: list.Total,
				Query: q,
				Pager: newPager("/oracoes", q, list.Total, content.PrayersPageSize),
			},
			Endpoint: s.content.URL("/api/prayers"),
		}
		markup, err := s.execute("oracoes", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		p := page{Lang: req.Lang, dict: s.dict}
		return titled(markup, p.T("prayers_page_title")), nil
	}), nil
}

func (s *Set) avisos(_ context.Context, req view.Request) (view.Result, error) {
	q := parseListQuery(req.Query)
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		list := s.content.Notices(ctx, content.ListOptions{Offset: q.Offset})
		items := append([]content.Object(nil), list.Items...)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Bool("pinned") && !items[j].Bool("pinned")
		})
		data := listData{
			Items: items,
			Total: list.Total,
			Query: q,
			Pager: newPager("/avisos", q, list.Total, content.NoticesPageSize),
		}
		markup, err := s.execute("avisos", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		p := page{Lang: req.Lang, dict: s.dict}
		return titled(markup, p.T("notices_page_title")), nil
	}), nil
}

func (s *Set) contacto(_ context.Context, req view.Request) (view.Result, error) {
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		data := formData{
			Church:   s.content.Church(ctx),
			Endpoint: s.content.URL("/api/contact"),
		}
		markup, err := s.execute("contacto", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		p := page{Lang: req.Lang, dict: s.dict}
		return titled(markup, p.T("contact_title")), nil
	}), nil
}

type resourceCard struct {
	Record   content.Object
	Type     string
	Size     string
	Category string
	Download string
}

func (s *Set) recursos(_ context.Context, req view.Request) (view.Result, error) {
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		list := s.content.Resources(ctx, nil)
		cards := make([]resourceCard, 0, len(list.Items))
		for _, r := range list.Items {
			cat := r.String("category")
			if cat == "general" {
				cat = ""
			}
			cards = append(cards, resourceCard{
				Record:   r,
				Type:     strings.ToLower(r.String("file_type")),
				Size:     fileSize(r.Int("file_size")),
				Category: cat,
				Download: s.content.ResourceDownloadURL(r.ID()),
			})
		}
		markup, err := s.execute("recursos", req, cards)
		if err != nil {
			return view.Immediate{}, err
		}
		p := page{Lang: req.Lang, dict: s.dict}
		return titled(markup, p.T("resources_title")), nil
	}), nil
}

// fileSize renders a byte count as B, KB or MB.
func fileSize(n int) string {
	switch {
	case n <= 0:
		return ""
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
