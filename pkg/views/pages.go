package views

import (
	"context"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

const defaultPastorImage = "https://cdn.weserve.one/church-app/default/b8aae5e5-719b-4a16-947f-a281f63ed16d.png"

type aboutData struct {
	Church  content.Object
	Pastors []content.Object
	Times   []content.Object
	Address string
	MapURL  string
	Image   string
}

func (s *Set) sobre(_ context.Context, req view.Request) (view.Result, error) {
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		c := s.content.Church(ctx)
		data := aboutData{
			Church:  c,
			Pastors: c.Objects("pastors"),
			Times:   c.Objects("service_times"),
			Address: c.String("address"),
			Image:   defaultPastorImage,
		}
		if data.Address == "" {
			data.Address = "Open Heavens Church, Estrada de Coselhas, Coimbra"
		}
		data.MapURL = mapURL(c.String("lat"), c.String("lng"))

		markup, err := s.execute("sobre", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		p := page{Lang: req.Lang, dict: s.dict}
		return titled(markup, p.T("about_page_title")), nil
	}), nil
}

func mapURL(lat, lng string) string {
	if lat != "" && lng != "" {
		return "https://www.google.com/maps/embed?pb=!1m14!1m8!1m3!1d3054!2d" + lng + "!3d" + lat +
			"!3m2!1i1024!2i768!4f13.1!3m3!1m2!1s0x0%3A0x0!2sOpen+Heavens+Church!5e0!3m2!1spt-PT!2spt!4v1"
	}
	return "https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d3054.8!2d-8.4285!3d40.2214!2m3!1f0!2f0!3f0!3m2!1i1024!2i768!4f13.1!3m3!1m2!1s0x0%3A0x0!2sOpen+Heavens+Church!5e0!3m2!1spt-PT!2spt!4v1&z=15"
}

type pageArgs struct {
	Slug string `param:"slug"`
}

func (s *Set) pagina(_ context.Context, req view.Request) (view.Result, error) {
	var args pageArgs
	if err := router.Bind(req.Params, &args); err != nil {
		return nil, err
	}
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		pg := s.content.Page(ctx, args.Slug)
		if pg == nil {
			markup, err := s.execute("missing", req, missing{Message: "page_not_found", Href: "/", Action: "back_home"})
			return view.Immediate{Markup: markup}, err
		}
		markup, err := s.execute("pagina", req, detailData{Record: pg})
		if err != nil {
			return view.Immediate{}, err
		}
		title := pg.Text("meta_title", req.Lang)
		if title == "" {
			title = pg.Text("title", req.Lang)
		}
		return titled(markup, title), nil
	}), nil
}

func (s *Set) notFound(_ context.Context, req view.Request) (view.Result, error) {
	markup, err := s.execute("notfound", req, nil)
	if err != nil {
		return nil, err
	}
	p := page{Lang: req.Lang, dict: s.dict}
	return titled(markup, p.T("page_not_found_title")), nil
}

func (s *Set) errorPage(_ context.Context, req view.Request) (view.Result, error) {
	s.logger.Debug("rendering error page", "view", req.View, "error", req.Err)
	markup, err := s.execute("error", req, nil)
	if err != nil {
		return nil, err
	}
	return view.Immediate{Markup: markup}, nil
}
