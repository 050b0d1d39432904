package router

import (
	"html"
	"html/template"
	"strings"
)

// Attr is an extra attribute on generated anchor markup.
type Attr struct {
	Key   string
	Value string
}

// Class is a shorthand for a class attribute.
func Class(value string) Attr {
	return Attr{Key: "class", Value: value}
}

// Link renders an in-site anchor. Same-origin anchors are intercepted by
// the client and become history navigations instead of page loads.
func Link(href, label string, attrs ...Attr) template.HTML {
	return anchor(append([]Attr{{Key: "href", Value: href}}, attrs...), label)
}

// ExternalLink renders an anchor that opens in a new tab. The interceptor
// ignores target="_blank", so the browser handles it natively.
func ExternalLink(href, label string, attrs ...Attr) template.HTML {
	base := []Attr{
		{Key: "href", Value: href},
		{Key: "target", Value: "_blank"},
		{Key: "rel", Value: "noopener noreferrer"},
	}
	return anchor(append(base, attrs...), label)
}

// DownloadLink renders an anchor with the download attribute, which the
// interceptor also leaves to the browser.
func DownloadLink(href, label string, attrs ...Attr) template.HTML {
	base := []Attr{
		{Key: "href", Value: href},
		{Key: "download", Value: ""},
	}
	return anchor(append(base, attrs...), label)
}

// NavLink renders a navigation entry tagged with data-page-id so the
// client can move the highlight when the active tag changes.
func NavLink(href, pageID, label string, active bool) template.HTML {
	class := "nav-link"
	if active {
		class += " nav-link-active"
	}
	return Link(href, label,
		Attr{Key: "data-page-id", Value: pageID},
		Class(class),
	)
}

func anchor(attrs []Attr, label string) template.HTML {
	var b strings.Builder
	b.WriteString("<a")
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		if a.Value == "" && a.Key != "href" {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(html.EscapeString(label))
	b.WriteString("</a>")
	return template.HTML(b.String())
}
