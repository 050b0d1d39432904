package content

import (
	"context"
	"net/url"
	"strconv"

	"github.com/renatoruis/oh-institutional/pkg/i18n"
)

// Page sizes used by the list views.
const (
	DefaultPageSize = 12
	NoticesPageSize = 10
	PrayersPageSize = 10
)

// Text returns the localized value of a field that the API publishes as
// "<key>_i18n" with a plain "<key>" fallback.
func (o Object) Text(key, lang string) string {
	if s := i18n.Pick(o.Raw(key+"_i18n"), lang); s != "" {
		return s
	}
	return o.String(key)
}

// ListOptions are the paging and filter options of list endpoints.
type ListOptions struct {
	Limit    int
	Offset   int
	Search   string
	Tag      string
	Category string
}

func (opts ListOptions) query(defaultLimit int) url.Values {
	q := url.Values{}
	limit := opts.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Tag != "" {
		q.Set("tag", opts.Tag)
	}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func escaped(path, id string) string {
	return path + "/" + url.PathEscape(id)
}

// Church returns the church profile.
func (c *Client) Church(ctx context.Context) Object {
	return ParseSingle(c.FetchJSON(ctx, "/api/church"))
}

// Banners returns the home page banners.
func (c *Client) Banners(ctx context.Context) []Object {
	return extractItems(c.FetchJSON(ctx, "/api/banners"))
}

// Verse is the verse of the day.
type Verse struct {
	Text      string
	Reference string
	Source    string
	Record    Object
}

// DefaultVerse is shown when the API has no verse of the day.
var DefaultVerse = Verse{
	Text:      "Porque Deus amou o mundo de tal maneira que deu o seu Filho unigénito, para que todo aquele que nele crê não pereça, mas tenha a vida eterna.",
	Reference: "João 3:16",
	Source:    "fallback",
}

// VerseOfTheDay returns the verse of the day in lang, or DefaultVerse.
func (c *Client) VerseOfTheDay(ctx context.Context, lang string) Verse {
	q := url.Values{}
	if lang != "" {
		q.Set("lang", lang)
	}
	raw := ParseSingle(c.FetchJSON(ctx, withQuery("/api/home/verse-of-the-day", q)))
	if raw == nil {
		return DefaultVerse
	}

	text := i18n.Pick(firstPresent(raw, "content_i18n", "text_i18n"), lang)
	if text == "" {
		text = raw.First("content", "text")
	}
	if text == "" {
		return DefaultVerse
	}
	ref := i18n.Pick(firstPresent(raw, "reference_i18n", "verse_ref_i18n"), lang)
	if ref == "" {
		ref = raw.First("reference", "verse_ref")
	}
	return Verse{Text: text, Reference: ref, Source: raw.String("source"), Record: raw}
}

func firstPresent(o Object, keys ...string) any {
	for _, k := range keys {
		if v := o.Raw(k); v != nil {
			return v
		}
	}
	return nil
}

// NextEvent returns the next upcoming event, or nil.
func (c *Client) NextEvent(ctx context.Context) Object {
	return ParseSingle(c.FetchJSON(ctx, "/api/home/next-event"))
}

// LatestSermon returns the most recent sermon, or nil.
func (c *Client) LatestSermon(ctx context.Context) Object {
	return ParseSingle(c.FetchJSON(ctx, "/api/home/latest-sermon"))
}

// Home returns the aggregated home document, or nil.
func (c *Client) Home(ctx context.Context) Object {
	return ParseSingle(c.FetchJSON(ctx, "/api/home"))
}

// Sermons lists sermons. Search and Tag filter the list.
func (c *Client) Sermons(ctx context.Context, opts ListOptions) List {
	opts.Category = ""
	return ParseList(c.FetchJSON(ctx, withQuery("/api/sermons", opts.query(DefaultPageSize))))
}

// Sermon returns one sermon, or nil.
func (c *Client) Sermon(ctx context.Context, id string) Object {
	return ParseSingle(c.FetchJSON(ctx, escaped("/api/sermons", id)))
}

// RelatedSermons lists sermons related to id.
func (c *Client) RelatedSermons(ctx context.Context, id string) List {
	return ParseList(c.FetchJSON(ctx, escaped("/api/sermons", id)+"/related"))
}

// RecordSermonView counts a view of sermon id.
func (c *Client) RecordSermonView(ctx context.Context, id string) any {
	return c.Post(ctx, escaped("/api/sermons", id)+"/view", nil)
}

// BlogPosts lists blog posts. Search and Category filter the list.
func (c *Client) BlogPosts(ctx context.Context, opts ListOptions) List {
	opts.Tag = ""
	return ParseList(c.FetchJSON(ctx, withQuery("/api/blog", opts.query(DefaultPageSize))))
}

// BlogPost returns one post by slug, or nil.
func (c *Client) BlogPost(ctx context.Context, slug string) Object {
	return ParseSingle(c.FetchJSON(ctx, escaped("/api/blog", slug)))
}

// RelatedBlogPosts lists posts related to slug.
func (c *Client) RelatedBlogPosts(ctx context.Context, slug string) List {
	return ParseList(c.FetchJSON(ctx, escaped("/api/blog", slug)+"/related"))
}

// Events lists events. Category filters the list.
func (c *Client) Events(ctx context.Context, opts ListOptions) List {
	opts.Search, opts.Tag = "", ""
	return ParseList(c.FetchJSON(ctx, withQuery("/api/events", opts.query(DefaultPageSize))))
}

// Event returns one event, or nil.
func (c *Client) Event(ctx context.Context, id string) Object {
	return ParseSingle(c.FetchJSON(ctx, escaped("/api/events", id)))
}

// EventICalURL is the calendar download link for event id.
func (c *Client) EventICalURL(id string) string {
	return c.URL(escaped("/api/events", id) + "/ical")
}

// Notices lists notices.
func (c *Client) Notices(ctx context.Context, opts ListOptions) List {
	opts = ListOptions{Limit: opts.Limit, Offset: opts.Offset}
	return ParseList(c.FetchJSON(ctx, withQuery("/api/notices", opts.query(NoticesPageSize))))
}

// Prayers lists public prayer requests.
func (c *Client) Prayers(ctx context.Context, opts ListOptions) List {
	opts = ListOptions{Limit: opts.Limit, Offset: opts.Offset}
	return ParseList(c.FetchJSON(ctx, withQuery("/api/prayers", opts.query(PrayersPageSize))))
}

// PrayerRequest is the body of a new prayer request.
type PrayerRequest struct {
	Name     string `json:"name"`
	Message  string `json:"message"`
	Phone    string `json:"phone,omitempty"`
	Public   bool   `json:"is_public"`
	Honeypot string `json:"honeypot,omitempty"`
}

// SubmitPrayer posts a prayer request.
func (c *Client) SubmitPrayer(ctx context.Context, req PrayerRequest) any {
	return c.Post(ctx, "/api/prayers", req)
}

// Pray records that someone prayed for request id.
func (c *Client) Pray(ctx context.Context, id string) any {
	return c.Post(ctx, escaped("/api/prayers", id)+"/pray", nil)
}

// Resources lists downloadable resources. Every entry of filter becomes a
// query parameter.
func (c *Client) Resources(ctx context.Context, filter map[string]string) List {
	q := url.Values{}
	for k, v := range filter {
		q.Set(k, v)
	}
	return ParseList(c.FetchJSON(ctx, withQuery("/api/resources", q)))
}

// ResourceDownloadURL is the download endpoint of resource id.
func (c *Client) ResourceDownloadURL(id string) string {
	return c.URL(escaped("/api/resources", id) + "/download")
}

// Page returns an institutional page by slug, or nil.
func (c *Client) Page(ctx context.Context, slug string) Object {
	return ParseSingle(c.FetchJSON(ctx, escaped("/api/pages", slug)))
}

// ContactMessage is the body of the contact form.
type ContactMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Message  string `json:"message"`
	Honeypot string `json:"honeypot,omitempty"`
}

// SendContact posts the contact form.
func (c *Client) SendContact(ctx context.Context, msg ContactMessage) any {
	return c.Post(ctx, "/api/contact", msg)
}

// PushVAPIDKey returns the web push public key document.
func (c *Client) PushVAPIDKey(ctx context.Context) any {
	return c.FetchJSON(ctx, "/api/push/vapid-key")
}

// BibleVersions lists the available bible translations.
func (c *Client) BibleVersions(ctx context.Context) List {
	return ParseList(c.FetchJSON(ctx, "/api/bible/versions"))
}

// BibleBooks lists the books of a translation.
func (c *Client) BibleBooks(ctx context.Context, bibleID string) List {
	return ParseList(c.FetchJSON(ctx, escaped("/api/bible", bibleID)+"/books"))
}

// BibleBook returns the book document holding its chapter list. The
// document is returned unnormalized: its shape varies by translation.
func (c *Client) BibleBook(ctx context.Context, bibleID, bookID string) Object {
	return asObject(c.FetchJSON(ctx, escaped(escaped("/api/bible", bibleID)+"/books", bookID)))
}

// BibleChapter returns the unnormalized chapter document.
func (c *Client) BibleChapter(ctx context.Context, bibleID, bookID, chapterID string) Object {
	path := escaped(escaped(escaped("/api/bible", bibleID)+"/chapter", bookID), chapterID)
	return asObject(c.FetchJSON(ctx, path))
}

func asObject(data any) Object {
	if m, ok := data.(map[string]any); ok {
		return m
	}
	return nil
}
