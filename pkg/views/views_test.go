package views

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

const api = "https://api.test"

type harness struct {
	mt  *httpmock.MockTransport
	buf *view.Buffer
	d   *view.Dispatcher
}

func newHarness(t *testing.T, lang string) *harness {
	t.Helper()
	mt := httpmock.NewMockTransport()
	mt.RegisterNoResponder(httpmock.NewStringResponder(http.StatusServiceUnavailable, ``))

	client, err := content.New(api,
		content.WithHTTPClient(&http.Client{Transport: mt}),
		content.WithCacheTTL(0),
	)
	require.NoError(t, err)

	buf := &view.Buffer{}
	d := view.NewDispatcher(buf, view.WithLanguage(func() string { return lang }))
	require.NoError(t, Register(d, Deps{Content: client}))
	t.Cleanup(d.Close)
	return &harness{mt: mt, buf: buf, d: d}
}

func (h *harness) render(t *testing.T, target view.Target) string {
	t.Helper()
	p := h.d.Render(target)
	require.Equal(t, view.OutcomeCommitted, p.Wait(), "render error: %v", p.Err())
	return string(h.buf.Markup())
}

func (h *harness) get(path, body string) {
	h.mt.RegisterResponder(http.MethodGet, api+path, httpmock.NewStringResponder(http.StatusOK, body))
}

func TestRegisterCoversSiteTable(t *testing.T) {
	h := newHarness(t, "pt")

	assert.NoError(t, h.d.Validate(router.NewSiteTable().Views()))
	assert.True(t, h.d.Registered(view.ErrorView))
	assert.True(t, h.d.Registered(router.NotFound))

	err := Register(h.d, Deps{Content: mustClient(t)})
	assert.Error(t, err, "registering twice is rejected")
}

func mustClient(t *testing.T) *content.Client {
	t.Helper()
	c, err := content.New(api)
	require.NoError(t, err)
	return c
}

func TestNewRequiresContent(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestHomeDegradesWhenAPIFails(t *testing.T) {
	h := newHarness(t, "pt")

	html := h.render(t, view.Target{View: router.ViewHome})

	assert.Contains(t, html, "João 3:16", "fallback verse")
	assert.Contains(t, html, `href="/sermoes"`, "quick links")
	assert.Contains(t, html, "Sermões")
	assert.NotContains(t, html, "next-event")
}

func TestHomeWithContent(t *testing.T) {
	h := newHarness(t, "en")
	h.get("/api/banners", `[{"image_url":"https://cdn.test/b.jpg"}]`)
	h.mt.RegisterResponderWithQuery(http.MethodGet, api+"/api/home/verse-of-the-day", "lang=en",
		httpmock.NewStringResponder(200, `{"id":1,"text_i18n":{"en":"The Lord is my shepherd"},"reference":"Psalm 23:1"}`))
	h.get("/api/home/next-event", `{"id":9,"title_i18n":{"pt":"Culto","en":"Service"},"event_date":"2026-11-01T10:00:00Z"}`)
	h.mt.RegisterResponderWithQuery(http.MethodGet, api+"/api/blog", "limit=3",
		httpmock.NewStringResponder(200, `{"items":[{"slug":"fe","title_i18n":{"en":"Faith"}}]}`))

	html := h.render(t, view.Target{View: router.ViewHome})

	assert.Contains(t, html, "The Lord is my shepherd")
	assert.Contains(t, html, `href="/evento/9"`)
	assert.Contains(t, html, "1 November 2026")
	assert.Contains(t, html, `href="/blog/fe"`)
	assert.Contains(t, html, "Faith")
	assert.Contains(t, html, "https://cdn.test/b.jpg")
}

func TestSermonDetail(t *testing.T) {
	h := newHarness(t, "pt")
	h.get("/api/sermons/42", `{"id":42,"title_i18n":{"pt":"Graça"},"description_i18n":{"pt":"<p>Texto</p><script>x()</script>"},"youtube_url":"https://youtu.be/abc123","tags":["fé"],"views":10}`)
	h.get("/api/sermons/42/related", `[{"id":7,"title_i18n":{"pt":"Outro"}}]`)
	h.mt.RegisterResponder(http.MethodPost, api+"/api/sermons/42/view",
		httpmock.NewStringResponder(200, `{}`))

	html := h.render(t, view.Target{View: router.ViewSermao, Params: router.Params{{Name: "id", Value: "42"}}})

	assert.Contains(t, html, "Graça")
	assert.Contains(t, html, "<p>Texto</p>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `data-youtube-id="abc123"`)
	assert.Contains(t, html, `href="/sermoes/7"`)
	assert.Contains(t, html, "10 visualizações")
	assert.Equal(t, "Graça | Open Heavens Church", h.buf.Title())

	info := h.mt.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+api+"/api/sermons/42/view"], "a committed sermon counts one view")
}

func TestResumedSermonDoesNotCountAgain(t *testing.T) {
	h := newHarness(t, "pt")
	h.get("/api/sermons/42", `{"id":42,"title_i18n":{"pt":"Graça"}}`)
	h.get("/api/sermons/42/related", `[]`)
	h.mt.RegisterResponder(http.MethodPost, api+"/api/sermons/42/view",
		httpmock.NewStringResponder(200, `{}`))

	h.d.ResumeNext()
	h.render(t, view.Target{View: router.ViewSermao, Params: router.Params{{Name: "id", Value: "42"}}})

	assert.Equal(t, "Graça | Open Heavens Church", h.buf.Title(), "a resumed render still sets the title")
	assert.Equal(t, 0, h.mt.GetCallCountInfo()["POST "+api+"/api/sermons/42/view"])
}

func TestMissingRecordsRenderEmptyState(t *testing.T) {
	tests := []struct {
		name   string
		target view.Target
		want   []string
	}{
		{
			name:   "sermon",
			target: view.Target{View: router.ViewSermao, Params: router.Params{{Name: "id", Value: "999"}}},
			want:   []string{"Sermão não encontrado", `href="/sermoes"`},
		},
		{
			name:   "event",
			target: view.Target{View: router.ViewEvento, Params: router.Params{{Name: "id", Value: "1"}}},
			want:   []string{`href="/eventos"`},
		},
		{
			name:   "post",
			target: view.Target{View: router.ViewPost, Params: router.Params{{Name: "slug", Value: "x"}}},
			want:   []string{`href="/blog"`},
		},
		{
			name:   "page",
			target: view.Target{View: router.ViewPagina, Params: router.Params{{Name: "slug", Value: "x"}}},
			want:   []string{`href="/"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "pt")
			html := h.render(t, tt.target)
			for _, w := range tt.want {
				assert.Contains(t, html, w)
			}
			assert.Equal(t, 0, h.mt.GetCallCountInfo()["POST "+api+"/api/sermons/999/view"])
		})
	}
}

func TestNotFound(t *testing.T) {
	h := newHarness(t, "en")

	html := h.render(t, view.Target{View: router.NotFound})

	assert.Contains(t, html, "404")
	assert.Contains(t, html, `href="/"`)
	assert.Equal(t, 0, h.mt.GetTotalCallCount(), "NotFound renders without fetching")
	assert.True(t, strings.HasSuffix(h.buf.Title(), "| Open Heavens Church"))
}

func TestSermonListQuery(t *testing.T) {
	h := newHarness(t, "pt")
	h.mt.RegisterResponderWithQuery(http.MethodGet, api+"/api/sermons",
		map[string]string{"limit": "12", "offset": "12", "search": "fé"},
		httpmock.NewStringResponder(200, `{"items":[{"id":1,"tags":["graça"]}],"total":40}`))

	html := h.render(t, view.Target{View: router.ViewSermoes, Query: "search=f%C3%A9&offset=12"})

	assert.Contains(t, html, `href="/sermoes/1"`)
	assert.Contains(t, html, `value="fé"`)
	assert.Contains(t, html, "2 / 4")
	assert.Contains(t, html, `href="/sermoes?offset=24&amp;search=f%C3%A9"`)
	assert.Contains(t, html, `href="/sermoes?search=f%C3%A9&amp;tag=gra%C3%A7a"`, "tag filter resets the offset")
}

func TestEmptyListsShowEmptyState(t *testing.T) {
	tests := []struct {
		view string
		want string
	}{
		{router.ViewSermoes, "Sem sermões encontrados."},
		{router.ViewAvisos, "Sem avisos de momento."},
		{router.ViewRecursos, "Sem recursos disponíveis."},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			h := newHarness(t, "pt")
			html := h.render(t, view.Target{View: tt.view})
			assert.Contains(t, html, tt.want)
		})
	}
}

func TestNoticesPinnedFirst(t *testing.T) {
	h := newHarness(t, "pt")
	h.mt.RegisterResponderWithQuery(http.MethodGet, api+"/api/notices", "limit=10",
		httpmock.NewStringResponder(200, `[{"id":1,"title":"Normal"},{"id":2,"title":"Fixo","pinned":true}]`))

	html := h.render(t, view.Target{View: router.ViewAvisos})

	assert.Less(t, strings.Index(html, "Fixo"), strings.Index(html, "Normal"))
}

func TestBibleSteps(t *testing.T) {
	h := newHarness(t, "pt")
	h.get("/api/bible/versions", `[{"bible_id":"nvi","label":"NVI"}]`)
	h.get("/api/bible/nvi/books", `[{"id":"GEN","name":"Génesis","testament":"OT"},{"id":"JHN","name":"João","testament":"NT"}]`)
	h.get("/api/bible/nvi/books/JHN", `{"id":"JHN","name":"João","chapters":[{"id":"JHN.1"},{"id":"JHN.2"},{"id":"JHN.3"}]}`)
	h.get("/api/bible/nvi/chapter/JHN/JHN.2", `{"data":{"verses":[{"number":1,"text":"Ao terceiro dia"}]}}`)

	versions := h.render(t, view.Target{View: router.ViewBiblia})
	assert.Contains(t, versions, `data-step="versions"`)
	assert.Contains(t, versions, `href="/biblia?version=nvi"`)
	assert.Contains(t, versions, `target="_top"`)

	books := h.render(t, view.Target{View: router.ViewBiblia, Query: "version=nvi"})
	assert.Contains(t, books, `data-step="books"`)
	assert.Contains(t, books, "Novo Testamento")
	assert.Contains(t, books, `href="/biblia?book=JHN&amp;version=nvi"`)

	reading := h.render(t, view.Target{View: router.ViewBiblia, Query: "version=nvi&book=JHN&chapter=JHN.2"})
	assert.Contains(t, reading, `data-step="reading"`)
	assert.Contains(t, reading, "Ao terceiro dia")
	assert.Contains(t, reading, "João 2")
	assert.Contains(t, reading, `chapter=JHN.1`)
	assert.Contains(t, reading, `chapter=JHN.3`)
}

func TestErrorViewUsedForRendererFailure(t *testing.T) {
	h := newHarness(t, "en")
	h.d.Use(view.MiddlewareFunc(func(ctx context.Context, req view.Request, next view.Next) (view.Immediate, error) {
		if req.View == router.ViewSobre {
			return view.Immediate{}, errors.New("boom")
		}
		return next(ctx, req)
	}))

	p := h.d.Render(view.Target{View: router.ViewSobre})
	assert.Equal(t, view.OutcomeFailed, p.Wait())
	assert.Contains(t, string(h.buf.Markup()), `id="error-view"`)
}
