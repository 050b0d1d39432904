package views

import (
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/i18n"
	"github.com/renatoruis/oh-institutional/pkg/router"
)

var funcs = template.FuncMap{
	"sanitize": content.Sanitize,
	"excerpt":  content.Excerpt,
	"link": func(href, label string) template.HTML {
		return router.Link(href, label)
	},
	"linkClass": func(href, label, class string) template.HTML {
		return router.Link(href, label, router.Class(class))
	},
	"external": func(href, label, class string) template.HTML {
		return router.ExternalLink(href, label, router.Class(class))
	},
	"download": func(href, label, class string) template.HTML {
		return router.DownloadLink(href, label, router.Class(class))
	},
	"reload": func(href, label, class string) template.HTML {
		return router.Link(href, label, router.Class(class), router.Attr{Key: "target", Value: "_top"})
	},
	"path": func(prefix, id string) string {
		return prefix + "/" + url.PathEscape(id)
	},
	"choose": func(cond bool, a, b string) string {
		if cond {
			return a
		}
		return b
	},
	"card": func(p page, rec content.Object) cardData {
		return cardData{Page: p, Record: rec}
	},
	"youtubeID": youtubeID,
	"thumb":     thumbnail,
}

// Portuguese long dates join day, month and year with "de".
var dateJoiner = map[string]string{
	i18n.Portuguese: "de",
}

var months = map[string][12]string{
	i18n.Portuguese: {"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	i18n.English:    {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDate renders "12 de março de 2025" (pt) or "12 March 2025" (en).
// Short dates keep the day and a three-letter month.
func formatDate(s, lang string, short bool) string {
	t, ok := parseTimestamp(s)
	if !ok {
		return ""
	}
	names, ok := months[lang]
	if !ok {
		lang = i18n.Default
		names = months[lang]
	}
	month := names[t.Month()-1]
	if short {
		r := []rune(month)
		if len(r) > 3 {
			month = string(r[:3])
		}
		return fmt.Sprintf("%d %s", t.Day(), month)
	}
	if sep := dateJoiner[lang]; sep != "" {
		return fmt.Sprintf("%d %s %s %s %d", t.Day(), sep, month, sep, t.Year())
	}
	return fmt.Sprintf("%d %s %d", t.Day(), month, t.Year())
}

func formatTime(s string) string {
	t, ok := parseTimestamp(s)
	if !ok || !strings.ContainsAny(strings.TrimSpace(s), "T ") {
		return ""
	}
	return t.Format("15:04")
}

var youtubePattern = regexp.MustCompile(`(?:v=|youtu\.be/|/embed/|/live/)([^&?\s/]+)`)

func youtubeID(u string) string {
	if m := youtubePattern.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}

// thumbnail picks the card image of a record: the YouTube still when it
// has a video, otherwise its own image.
func thumbnail(o content.Object) string {
	if id := youtubeID(o.String("youtube_url")); id != "" {
		return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
	}
	return o.First("cover_image_url", "image_url", "thumbnail_url")
}

// cardData pairs a record with the page for card partials.
type cardData struct {
	Page   page
	Record content.Object
}

// listQuery is the state of a list page carried in its query string.
type listQuery struct {
	values url.Values
	Offset int
	Search string
	Tag    string
	Cat    string
}

func parseListQuery(raw string) listQuery {
	v, _ := url.ParseQuery(raw)
	off, _ := strconv.Atoi(v.Get("offset"))
	if off < 0 {
		off = 0
	}
	return listQuery{
		values: v,
		Offset: off,
		Search: strings.TrimSpace(v.Get("search")),
		Tag:    v.Get("tag"),
		Cat:    v.Get("category"),
	}
}

// with returns base with the query updated by key=value pairs. Empty
// values remove the key; a filter change resets the offset.
func (q listQuery) with(base string, kv ...string) string {
	v := url.Values{}
	for k, vals := range q.values {
		v[k] = append([]string(nil), vals...)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i] != "offset" {
			v.Del("offset")
		}
		if kv[i+1] == "" || kv[i+1] == "0" {
			v.Del(kv[i])
			continue
		}
		v.Set(kv[i], kv[i+1])
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

// Pager is the pagination state of a list page.
type Pager struct {
	Page  int
	Pages int
	Prev  string
	Next  string
}

func newPager(base string, q listQuery, total, limit int) Pager {
	if limit <= 0 || total <= limit {
		return Pager{}
	}
	p := Pager{
		Page:  q.Offset/limit + 1,
		Pages: (total + limit - 1) / limit,
	}
	if q.Offset > 0 {
		prev := q.Offset - limit
		if prev < 0 {
			prev = 0
		}
		p.Prev = q.with(base, "offset", strconv.Itoa(prev))
	}
	if q.Offset+limit < total {
		p.Next = q.with(base, "offset", strconv.Itoa(q.Offset+limit))
	}
	return p
}

// Filter is one filter chip on a list page.
type Filter struct {
	Label  string
	Href   string
	Active bool
}

func newFilters(base string, q listQuery, key, current string, values []string, allLabel string) []Filter {
	if len(values) == 0 {
		return nil
	}
	out := []Filter{{Label: allLabel, Href: q.with(base, key, ""), Active: current == ""}}
	for _, v := range values {
		out = append(out, Filter{Label: v, Href: q.with(base, key, v), Active: current == v})
	}
	return out
}

// distinct returns the unique non-empty values in first-seen order.
func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
