package router

// View names of the public site.
const (
	ViewHome     = "Home"
	ViewSobre    = "Sobre"
	ViewSermoes  = "Sermoes"
	ViewSermao   = "Sermao"
	ViewBlog     = "Blog"
	ViewPost     = "Post"
	ViewEventos  = "Eventos"
	ViewEvento   = "Evento"
	ViewOracoes  = "Oracoes"
	ViewBiblia   = "Biblia"
	ViewAvisos   = "Avisos"
	ViewContacto = "Contacto"
	ViewRecursos = "Recursos"
	ViewPagina   = "Pagina"
)

// RouteDef is a pattern/view pair used to build a table.
type RouteDef struct {
	Pattern string
	View    string
}

// SiteRoutes returns the public site's URL surface in registration order.
func SiteRoutes() []RouteDef {
	return []RouteDef{
		{"/", ViewHome},
		{"/sobre", ViewSobre},
		{"/sermoes", ViewSermoes},
		{"/sermoes/:id", ViewSermao},
		{"/blog", ViewBlog},
		{"/blog/:slug", ViewPost},
		{"/eventos", ViewEventos},
		{"/evento/:id", ViewEvento},
		{"/oracoes", ViewOracoes},
		{"/biblia", ViewBiblia},
		{"/avisos", ViewAvisos},
		{"/contacto", ViewContacto},
		{"/recursos", ViewRecursos},
		{"/pagina/:slug", ViewPagina},
	}
}

// Build registers defs in order into a new table.
func Build(defs []RouteDef) (*Table, error) {
	t := NewTable()
	for _, d := range defs {
		if err := t.Route(d.Pattern, d.View); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NewSiteTable builds the table for SiteRoutes.
func NewSiteTable() *Table {
	t, err := Build(SiteRoutes())
	if err != nil {
		panic(err)
	}
	return t
}
