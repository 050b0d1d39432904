package router

import "github.com/renatoruis/oh-institutional/pkg/routepath"

// activeTags maps views to the navigation entry highlighted for them.
// Views absent here (the dynamic CMS page, NotFound) highlight nothing.
var activeTags = map[string]string{
	ViewHome:     "home",
	ViewSobre:    "sobre",
	ViewSermoes:  "sermoes",
	ViewSermao:   "sermoes",
	ViewBlog:     "blog",
	ViewPost:     "blog",
	ViewEventos:  "eventos",
	ViewEvento:   "eventos",
	ViewOracoes:  "oracoes",
	ViewBiblia:   "biblia",
	ViewAvisos:   "avisos",
	ViewContacto: "contacto",
	ViewRecursos: "recursos",
}

// ActiveTag returns the navigation tag for view, if it has one.
func ActiveTag(view string) (string, bool) {
	tag, ok := activeTags[view]
	return tag, ok
}

// initialTags maps a path's first segment to a tag for the first paint,
// before any view has resolved.
var initialTags = map[string]string{
	"sobre":    "sobre",
	"sermoes":  "sermoes",
	"blog":     "blog",
	"eventos":  "eventos",
	"evento":   "eventos",
	"oracoes":  "oracoes",
	"biblia":   "biblia",
	"avisos":   "avisos",
	"contacto": "contacto",
	"recursos": "recursos",
}

// InitialActiveTag guesses the navigation tag from the first path segment.
// The root and unknown sections fall back to "home".
func InitialActiveTag(path string) string {
	parts := routepath.Split(routepath.Normalize(path))
	if len(parts) == 0 {
		return "home"
	}
	if tag, ok := initialTags[parts[0]]; ok {
		return tag
	}
	return "home"
}
