package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jarcoal/httpmock"

	"github.com/renatoruis/oh-institutional/pkg/link"
	"github.com/renatoruis/oh-institutional/pkg/nav"
	"github.com/renatoruis/oh-institutional/pkg/router"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	base string
}

func startWSServer(t *testing.T, config *ServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	s, _ := newTestServer(t, config)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn, base: ts.URL}
}

func (c *wsClient) send(msg Inbound) {
	c.t.Helper()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// until reads messages until match returns true and returns everything
// read, the matching message last.
func (c *wsClient) until(match func(Outbound) bool) []Outbound {
	c.t.Helper()
	var seen []Outbound
	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = c.conn.SetReadDeadline(deadline)
		var msg Outbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.t.Fatalf("read after %v: %v", types(seen), err)
		}
		seen = append(seen, msg)
		if match(msg) {
			return seen
		}
	}
}

func (c *wsClient) untilType(typ string) []Outbound {
	c.t.Helper()
	return c.until(func(m Outbound) bool { return m.Type == typ })
}

func (c *wsClient) untilTitle(prefix string) []Outbound {
	c.t.Helper()
	return c.until(func(m Outbound) bool {
		return m.Type == MsgTitle && strings.HasPrefix(m.Value, prefix)
	})
}

func types(msgs []Outbound) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func find(msgs []Outbound, typ string) (Outbound, bool) {
	for _, m := range msgs {
		if m.Type == typ {
			return m, true
		}
	}
	return Outbound{}, false
}

func (c *wsClient) ready(path string) []Outbound {
	c.t.Helper()
	c.send(Inbound{Type: MsgReady, Path: path, Lang: "pt"})
	return c.untilType(MsgReplace)
}

func TestSessionReadyRendersCurrentLocation(t *testing.T) {
	_, ts := startWSServer(t, nil)
	c := dial(t, ts)

	msgs := c.ready("/sobre")

	active, ok := find(msgs, MsgActive)
	if !ok || active.Value != "sobre" {
		t.Fatalf("active = %+v, messages %v", active, types(msgs))
	}
	route, ok := find(msgs, MsgRoute)
	if !ok || route.View != router.ViewSobre || route.Path != "/sobre" {
		t.Fatalf("route = %+v", route)
	}
	if route.Active != "sobre" {
		t.Fatalf("route active = %q, want sobre", route.Active)
	}
	if _, ok := find(msgs, MsgScroll); ok {
		t.Fatal("the first render should not reset the scroll position")
	}
	if _, ok := find(msgs, MsgPush); ok {
		t.Fatal("ready should not push a history entry")
	}

	c.untilTitle("Sobre Nós")
}

func TestSermonVisitCountsOneView(t *testing.T) {
	s, mt := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	mt.RegisterResponder(http.MethodGet, testAPI+"/api/sermons/42",
		httpmock.NewStringResponder(http.StatusOK, `{"id":42,"title_i18n":{"pt":"Graça"}}`))
	mt.RegisterResponder(http.MethodGet, testAPI+"/api/sermons/42/related",
		httpmock.NewStringResponder(http.StatusOK, `[]`))
	mt.RegisterResponder(http.MethodPost, testAPI+"/api/sermons/42/view",
		httpmock.NewStringResponder(http.StatusOK, `{}`))

	resp, err := http.Get(ts.URL + "/sermoes/42")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}

	c := dial(t, ts)
	c.ready("/sermoes/42")
	c.untilTitle("Graça")

	// The next commit waits for the sermon's mount to finish.
	c.send(Inbound{Type: MsgNavigate, Path: "/sobre"})
	c.untilTitle("Sobre Nós")

	key := http.MethodPost + " " + testAPI + "/api/sermons/42/view"
	if got := mt.GetCallCountInfo()[key]; got != 1 {
		t.Fatalf("view count POSTs for one visit = %d, want 1", got)
	}
}

func TestSessionReadyWithInvalidPathStartsAtRoot(t *testing.T) {
	_, ts := startWSServer(t, nil)
	c := dial(t, ts)

	msgs := c.ready(`/a\b`)
	route, ok := find(msgs, MsgRoute)
	if !ok || route.View != router.ViewHome {
		t.Fatalf("route = %+v", route)
	}
}

func TestSessionClickNavigates(t *testing.T) {
	_, ts := startWSServer(t, nil)
	c := dial(t, ts)
	c.ready("/")

	c.send(Inbound{Type: MsgClick, Click: &link.Click{Href: c.base + "/blog"}})
	msgs := c.untilType(MsgReplace)

	push, ok := find(msgs, MsgPush)
	if !ok || push.Path != "/blog" {
		t.Fatalf("push = %+v, messages %v", push, types(msgs))
	}
	if push.State == nil || push.State.Path != "/blog" {
		t.Fatalf("push state = %+v", push.State)
	}
	if active, _ := find(msgs, MsgActive); active.Value != "blog" {
		t.Fatalf("active = %q, want blog", active.Value)
	}
	if _, ok := find(msgs, MsgScroll); !ok {
		t.Fatal("navigation should reset the scroll position")
	}
	if route, _ := find(msgs, MsgRoute); route.View != router.ViewBlog {
		t.Fatalf("route view = %q", route.View)
	}
}

func TestSessionExternalClickLoads(t *testing.T) {
	_, ts := startWSServer(t, nil)
	c := dial(t, ts)
	c.ready("/")

	tests := []struct {
		name  string
		click link.Click
	}{
		{"other origin", link.Click{Href: "https://example.org/x"}},
		{"new tab", link.Click{Href: c.base + "/blog", Target: "_blank"}},
		{"query only", link.Click{Href: c.base + "/sermoes?search=fe", Target: "_top"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.send(Inbound{Type: MsgClick, Click: &tt.click})
			msgs := c.untilType(MsgLoad)
			if got := msgs[len(msgs)-1].Path; got != tt.click.Href {
				t.Fatalf("load path = %q, want %q", got, tt.click.Href)
			}
			if _, ok := find(msgs, MsgPush); ok {
				t.Fatal("declined click should not push")
			}
		})
	}
}

func TestSessionPopState(t *testing.T) {
	_, ts := startWSServer(t, nil)
	c := dial(t, ts)
	c.ready("/sobre")

	c.send(Inbound{Type: MsgNavigate, Path: "/eventos"})
	msgs := c.untilType(MsgReplace)
	if push, ok := find(msgs, MsgPush); !ok || push.Path != "/eventos" {
		t.Fatalf("navigate should push /eventos, got %v", types(msgs))
	}

	c.send(Inbound{Type: MsgPopState, Path: "/sobre"})
	msgs = c.untilType(MsgReplace)
	if _, ok := find(msgs, MsgPush); ok {
		t.Fatal("popstate must not push")
	}
	if route, _ := find(msgs, MsgRoute); route.View != router.ViewSobre {
		t.Fatalf("route view = %q, want %q", route.View, router.ViewSobre)
	}
}

func TestSessionLanguageChangeRerenders(t *testing.T) {
	_, ts := startWSServer(t, nil)
	c := dial(t, ts)
	c.ready("/sobre")
	c.untilTitle("Sobre Nós")

	c.send(Inbound{Type: MsgLang, Lang: "en"})
	msgs := c.untilTitle("About Us")

	lang, ok := find(msgs, MsgLang)
	if !ok || lang.Value != "en" {
		t.Fatalf("lang = %+v", lang)
	}
	if _, ok := find(msgs, MsgReplace); !ok {
		t.Fatalf("language change should replace the content, got %v", types(msgs))
	}
	if _, ok := find(msgs, MsgPush); ok {
		t.Fatal("language change should not push")
	}
}

func TestSessionSurvivesMalformedMessages(t *testing.T) {
	_, ts := startWSServer(t, nil)
	c := dial(t, ts)

	if err := c.conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	c.send(Inbound{Type: MsgClick, Click: &link.Click{Href: c.base + "/blog"}})
	msgs := c.ready("/")

	if _, ok := find(msgs, MsgLoad); ok {
		t.Fatal("messages before ready should be ignored")
	}
	if route, _ := find(msgs, MsgRoute); route.View != router.ViewHome {
		t.Fatalf("route view = %q", route.View)
	}
}

func TestHandleRefusesMessagesBeforeReady(t *testing.T) {
	site, _ := newTestSite(t)
	s := newSession(nil, site, DefaultSessionConfig(), "http://example.test", "192.0.2.1", slog.Default())

	for _, msg := range []Inbound{
		{Type: MsgClick, Click: &link.Click{Href: "http://example.test/blog"}},
		{Type: MsgNavigate, Path: "/blog"},
		{Type: MsgPopState, Path: "/"},
		{Type: MsgLang, Lang: "en"},
	} {
		if err := s.handle(msg); !errors.Is(err, ErrNotReady) {
			t.Errorf("handle(%s) = %v, want ErrNotReady", msg.Type, err)
		}
	}
}

func TestSessionLimit(t *testing.T) {
	config := DefaultServerConfig()
	config.MaxSessions = 1
	s, ts := startWSServer(t, config)

	first := dial(t, ts)
	waitFor(t, func() bool { return s.Sessions().Count() == 1 })

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second session should be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("response = %v, want 503", resp)
	}

	_ = first.conn.Close()
	waitFor(t, func() bool { return s.Sessions().Count() == 0 })

	stats := s.Sessions().Stats()
	if stats.TotalCreated != 1 || stats.TotalClosed != 1 || stats.Peak != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	s, ts := startWSServer(t, nil)
	c := dial(t, ts)
	c.ready("/")
	waitFor(t, func() bool { return s.Sessions().Count() == 1 })

	s.Sessions().CloseAll()

	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	waitFor(t, func() bool { return s.Sessions().Count() == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// recordingSender captures messages instead of writing to a socket.
type recordingSender struct {
	msgs []Outbound
}

func (r *recordingSender) send(msg Outbound) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestRemoteHistory(t *testing.T) {
	out := &recordingSender{}
	h := newRemoteHistory(out, "/")

	var popped []string
	remove := h.OnPopState(func(loc string) { popped = append(popped, loc) })

	h.Push(nav.State{Path: "/blog"}, "/blog")
	h.Replace(nav.State{Path: "/blog?x=1"}, "/blog?x=1")
	if got := h.Location(); got != "/blog?x=1" {
		t.Fatalf("Location = %q", got)
	}
	if got := types(out.msgs); strings.Join(got, ",") != MsgPush+","+MsgReplaceState {
		t.Fatalf("messages = %v", got)
	}

	h.popState("/sobre")
	if h.Location() != "/sobre" || len(popped) != 1 || popped[0] != "/sobre" {
		t.Fatalf("popState: location %q, popped %v", h.Location(), popped)
	}
	if len(out.msgs) != 2 {
		t.Fatal("popState should not message the client")
	}

	remove()
	h.popState("/")
	if len(popped) != 1 {
		t.Fatal("removed listener was called")
	}
}

func TestRemoteChromeQuiet(t *testing.T) {
	out := &recordingSender{}
	c := &remoteChrome{out: out}

	c.quiet.Store(true)
	c.ScrollTop()
	if len(out.msgs) != 0 {
		t.Fatal("quiet chrome should not scroll")
	}
	c.quiet.Store(false)
	c.ScrollTop()
	c.SetTitle("T")
	c.SetActive("blog")
	c.CloseDrawer()
	c.SetLang("en")

	want := []string{MsgScroll, MsgTitle, MsgActive, MsgDrawer, MsgLang}
	if got := types(out.msgs); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("messages = %v, want %v", got, want)
	}
}

func TestOutboundJSON(t *testing.T) {
	data, err := json.Marshal(routeMessage(nav.Change{
		View:      router.ViewPost,
		Path:      "/blog/fe",
		Params:    router.Params{{Name: "slug", Value: "fe"}},
		ActiveTag: "blog",
	}))
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{`"type":"route"`, `"view":"Post"`, `"params":{"slug":"fe"}`, `"path":"/blog/fe"`, `"active":"blog"`} {
		if !strings.Contains(got, want) {
			t.Errorf("%s missing %s", got, want)
		}
	}
	if strings.Contains(got, `"html"`) {
		t.Errorf("empty fields should be omitted: %s", got)
	}

	data, err = json.Marshal(routeMessage(nav.Change{View: router.NotFound, Path: "/x"}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"active"`) {
		t.Errorf("a view without a tag should omit active: %s", data)
	}
}

func TestPickLang(t *testing.T) {
	if got := pickLang("en", "pt"); got != "en" {
		t.Fatalf("pickLang(en) = %q", got)
	}
	if got := pickLang("de", "pt"); got != "pt" {
		t.Fatalf("pickLang(de) = %q", got)
	}
}
