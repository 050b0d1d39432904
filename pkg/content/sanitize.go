package content

import (
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var allowedTags = map[string]bool{
	"p": true, "br": true, "strong": true, "em": true, "b": true, "i": true,
	"u": true, "s": true, "strike": true, "a": true, "ul": true, "ol": true,
	"li": true, "blockquote": true, "pre": true, "code": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"div": true, "span": true, "table": true, "thead": true, "tbody": true,
	"tr": true, "th": true, "td": true, "img": true, "hr": true,
	"sub": true, "sup": true,
}

var allowedAttrs = map[string]bool{
	"href": true, "src": true, "alt": true, "title": true,
	"target": true, "rel": true, "class": true,
}

// Elements removed together with everything inside them.
var droppedTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "template": true, "noscript": true, "textarea": true,
	"select": true, "title": true, "frameset": true, "frame": true,
	"svg": true, "math": true,
}

// Sanitize reduces CMS rich text to an allowlist of formatting tags and
// attributes. Disallowed elements are unwrapped (their text survives),
// script-like elements are dropped with their contents, and href/src
// values with an unsafe scheme are removed.
func Sanitize(raw string) template.HTML {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(raw), ctx)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(raw))
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	clean(root)

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return template.HTML(b.String())
}

func clean(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
		case html.ElementNode:
			tag := strings.ToLower(c.Data)
			if droppedTags[tag] {
				n.RemoveChild(c)
				break
			}
			clean(c)
			if allowedTags[tag] && c.Namespace == "" {
				c.Attr = filterAttrs(c.Attr)
				break
			}
			for gc := c.FirstChild; gc != nil; {
				gnext := gc.NextSibling
				c.RemoveChild(gc)
				n.InsertBefore(gc, c)
				gc = gnext
			}
			n.RemoveChild(c)
		default:
			n.RemoveChild(c)
		}
		c = next
	}
}

func filterAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	blank, hasRel := false, false
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if a.Namespace != "" || !allowedAttrs[key] {
			continue
		}
		switch key {
		case "href":
			if !safeURL(a.Val, false) {
				continue
			}
		case "src":
			if !safeURL(a.Val, true) {
				continue
			}
		case "target":
			blank = a.Val == "_blank"
		case "rel":
			hasRel = true
		}
		a.Key = key
		out = append(out, a)
	}
	if blank && !hasRel {
		out = append(out, html.Attribute{Key: "rel", Val: "noopener noreferrer"})
	}
	return out
}

func safeURL(raw string, image bool) bool {
	v := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	colon := strings.IndexByte(v, ':')
	if colon < 0 {
		return true
	}
	if i := strings.IndexAny(v, "/?#"); i >= 0 && i < colon {
		return true
	}
	switch scheme := strings.ToLower(v[:colon]); scheme {
	case "http", "https", "mailto", "tel":
		return true
	case "data":
		return image && strings.HasPrefix(strings.ToLower(v), "data:image/")
	default:
		return false
	}
}

// Excerpt returns the plain text of rich content, with whitespace
// collapsed and cut to at most n runes followed by "...".
func Excerpt(raw string, n int) string {
	if raw == "" {
		return ""
	}
	text := strings.Join(strings.Fields(html2text.HTML2TextWithOptions(raw, html2text.WithLinksInnerText())), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:n]), " ") + "..."
}
