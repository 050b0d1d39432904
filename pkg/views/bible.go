package views

import (
	"context"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

// Bible reading steps, selected by the query string.
const (
	stepVersions = "versions"
	stepBooks    = "books"
	stepChapters = "chapters"
	stepReading  = "reading"
)

type bibleEntry struct {
	ID    string
	Name  string
	Badge string
	Note  string
	Href  string
}

type bibleData struct {
	Step        string
	Versions    []bibleEntry
	VersionName string
	VersionHref string
	Old, New    []bibleEntry
	BookName    string
	BookHref    string
	Chapters    []bibleEntry
	Chapter     int
	Verses      []bibleEntry
	Text        template.HTML
	Prev, Next  string
}

type bibleQuery struct {
	Version string
	Book    string
	Chapter string
}

func (q bibleQuery) href() string {
	v := url.Values{}
	if q.Version != "" {
		v.Set("version", q.Version)
	}
	if q.Book != "" {
		v.Set("book", q.Book)
	}
	if q.Chapter != "" {
		v.Set("chapter", q.Chapter)
	}
	if len(v) == 0 {
		return "/biblia"
	}
	return "/biblia?" + v.Encode()
}

func (s *Set) biblia(_ context.Context, req view.Request) (view.Result, error) {
	values, _ := url.ParseQuery(req.Query)
	q := bibleQuery{
		Version: values.Get("version"),
		Book:    values.Get("book"),
		Chapter: values.Get("chapter"),
	}
	return view.Defer(func(ctx context.Context) (view.Immediate, error) {
		data := s.loadBible(ctx, q)
		markup, err := s.execute("biblia", req, data)
		if err != nil {
			return view.Immediate{}, err
		}
		p := page{Lang: req.Lang, dict: s.dict}
		return titled(markup, p.T("bible_title")), nil
	}), nil
}

func (s *Set) loadBible(ctx context.Context, q bibleQuery) bibleData {
	var data bibleData
	for _, v := range s.content.BibleVersions(ctx).Items {
		id := v.First("bible_id", "id")
		entry := bibleEntry{
			ID:    id,
			Name:  v.First("label", "name", "title", "abbreviation", "id"),
			Badge: v.First("abbreviation", "label"),
			Note:  v.First("locale", "language"),
			Href:  bibleQuery{Version: id}.href(),
		}
		data.Versions = append(data.Versions, entry)
		if id == q.Version {
			data.VersionName = entry.Name
		}
	}
	if q.Version == "" {
		data.Step = stepVersions
		return data
	}
	if data.VersionName == "" {
		data.VersionName = q.Version
	}
	data.VersionHref = bibleQuery{Version: q.Version}.href()

	if q.Book == "" {
		data.Step = stepBooks
		for _, b := range s.content.BibleBooks(ctx, q.Version).Items {
			entry := bookEntry(q.Version, b)
			switch testament(b) {
			case "nt":
				data.New = append(data.New, entry)
			default:
				data.Old = append(data.Old, entry)
			}
		}
		return data
	}

	book := s.content.BibleBook(ctx, q.Version, q.Book)
	data.BookName = q.Book
	if name := bookName(book); name != "" {
		data.BookName = name
	}
	data.BookHref = bibleQuery{Version: q.Version, Book: q.Book}.href()
	for i, ch := range chapterList(book) {
		id := ch.ID()
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		data.Chapters = append(data.Chapters, bibleEntry{
			ID:   id,
			Name: strconv.Itoa(i + 1),
			Href: bibleQuery{Version: q.Version, Book: q.Book, Chapter: id}.href(),
		})
	}

	if q.Chapter == "" {
		data.Step = stepChapters
		return data
	}

	data.Step = stepReading
	for i, ch := range data.Chapters {
		if ch.ID != q.Chapter {
			continue
		}
		data.Chapter = i + 1
		if i > 0 {
			data.Prev = data.Chapters[i-1].Href
		}
		if i+1 < len(data.Chapters) {
			data.Next = data.Chapters[i+1].Href
		}
	}
	if data.Chapter == 0 {
		data.Chapter, _ = strconv.Atoi(q.Chapter[strings.LastIndexByte(q.Chapter, '.')+1:])
	}

	doc := s.content.BibleChapter(ctx, q.Version, q.Book, q.Chapter)
	src := doc
	if inner := doc.Object("data"); inner != nil {
		src = inner
	}
	verses := src.Objects("verses")
	if len(verses) == 0 {
		verses = doc.Objects("items")
	}
	if len(verses) == 0 {
		verses = doc.Objects("data")
	}
	for i, v := range verses {
		num := v.First("number", "verse")
		if num == "" {
			num = strconv.Itoa(i + 1)
		}
		data.Verses = append(data.Verses, bibleEntry{ID: num, Name: v.First("text", "content")})
	}
	if len(data.Verses) == 0 {
		data.Text = content.Sanitize(src.First("content", "text"))
	}
	return data
}

func bookEntry(version string, b content.Object) bibleEntry {
	id := b.First("id", "bookId", "book_id", "dblId", "abbreviation")
	name := bookName(b)
	if name == "" {
		name = id
	}
	return bibleEntry{ID: id, Name: name, Href: bibleQuery{Version: version, Book: id}.href()}
}

func bookName(b content.Object) string {
	if inner := b.Object("data"); inner != nil && !b.Has("name") && !b.Has("title") {
		b = inner
	}
	return b.First("title", "name", "longName", "shortName", "abbreviation")
}

// testament classifies a book as "ot", "nt" or "".
func testament(b content.Object) string {
	t := strings.ToLower(b.First("canon", "testament", "testamentId"))
	switch {
	case t == "nt" || strings.Contains(t, "new"):
		return "nt"
	case t == "ot" || strings.Contains(t, "old"):
		return "ot"
	}
	return ""
}

func chapterList(book content.Object) []content.Object {
	if cs := book.Objects("chapters"); len(cs) > 0 {
		return cs
	}
	if cs := book.Objects("items"); len(cs) > 0 {
		return cs
	}
	if cs := book.Object("data").Objects("chapters"); len(cs) > 0 {
		return cs
	}
	return book.Objects("data")
}
