package server

import (
	"html/template"
	"io"

	"github.com/renatoruis/oh-institutional/pkg/i18n"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/shell"
)

var shellPage = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="{{.HTMLLang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="theme-color" content="#0f172a">
<title>{{.Page.Title}}</title>
<link rel="manifest" href="/manifest.webmanifest">
<link rel="stylesheet" href="/assets/app.css">
</head>
<body data-default-lang="{{.Page.Lang}}" data-view="{{.Page.View}}">
<header class="site-header">
  <a href="/" class="brand">{{.Brand}}</a>
  <button type="button" class="drawer-toggle" data-drawer-toggle aria-controls="nav-drawer" aria-label="Menu">&#9776;</button>
  <nav id="nav-drawer" class="nav-drawer">
    {{range .Nav}}{{.}}
    {{end}}
  </nav>
  <div class="lang-toggle">
    {{range .Langs}}<button type="button" data-lang="{{.Code}}"{{if .Active}} class="active"{{end}}>{{.Code}}</button>{{end}}
  </div>
</header>
<main id="app-content">{{.Page.Markup}}</main>
<footer class="site-footer">
  <p>&copy; {{.Brand}}</p>
</footer>
<script src="/client.js" defer></script>
</body>
</html>
`))

type langToggle struct {
	Code   string
	Active bool
}

type shellData struct {
	Page     Page
	HTMLLang string
	Brand    string
	Nav      []template.HTML
	Langs    []langToggle
}

// WritePage writes p inside the site shell: header navigation with the
// active entry highlighted, language toggles, the content surface and the
// thin client script.
func WritePage(w io.Writer, p Page) error {
	data := shellData{
		Page:     p,
		HTMLLang: htmlLang(p.Lang),
		Brand:    shell.DefaultTitle,
	}
	for _, entry := range shell.NavEntries() {
		label := i18n.Pick(entry.Label, p.Lang)
		data.Nav = append(data.Nav, router.NavLink(entry.Href, entry.ID, label, entry.ID == p.ActiveTag))
	}
	for _, lang := range i18n.Supported {
		data.Langs = append(data.Langs, langToggle{Code: lang, Active: lang == p.Lang})
	}
	return shellPage.Execute(w, data)
}

func htmlLang(lang string) string {
	if lang == i18n.English {
		return "en"
	}
	return "pt-PT"
}
