package server

import (
	"html/template"
	"sync"
	"sync/atomic"

	"github.com/renatoruis/oh-institutional/pkg/i18n"
	"github.com/renatoruis/oh-institutional/pkg/nav"
	"github.com/renatoruis/oh-institutional/pkg/shell"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

// sender delivers a message to the client.
type sender interface {
	send(msg Outbound) error
}

// remoteHistory mirrors the browser's history. Pushes are forwarded to the
// client; popstate notifications arrive from it.
type remoteHistory struct {
	out sender

	mu        sync.Mutex
	location  string
	next      int
	listeners map[int]func(string)
}

func newRemoteHistory(out sender, location string) *remoteHistory {
	return &remoteHistory{
		out:       out,
		location:  location,
		listeners: make(map[int]func(string)),
	}
}

func (h *remoteHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location
}

func (h *remoteHistory) Push(state nav.State, path string) {
	h.set(path)
	_ = h.out.send(Outbound{Type: MsgPush, Path: path, State: &state})
}

func (h *remoteHistory) Replace(state nav.State, path string) {
	h.set(path)
	_ = h.out.send(Outbound{Type: MsgReplaceState, Path: path, State: &state})
}

func (h *remoteHistory) OnPopState(fn func(location string)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// popState records a back/forward traversal reported by the client.
func (h *remoteHistory) popState(location string) {
	h.mu.Lock()
	h.location = location
	fns := make([]func(string), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(location)
	}
}

func (h *remoteHistory) set(location string) {
	h.mu.Lock()
	h.location = location
	h.mu.Unlock()
}

var _ nav.History = (*remoteHistory)(nil)

// remoteChrome forwards chrome actions to the client. While quiet, scroll
// resets are suppressed so reconnecting does not move the reader.
type remoteChrome struct {
	out   sender
	quiet atomic.Bool
}

func (c *remoteChrome) SetActive(tag string) {
	_ = c.out.send(Outbound{Type: MsgActive, Value: tag})
}

func (c *remoteChrome) CloseDrawer() {
	_ = c.out.send(Outbound{Type: MsgDrawer, Value: "close"})
}

func (c *remoteChrome) ScrollTop() {
	if c.quiet.Load() {
		return
	}
	_ = c.out.send(Outbound{Type: MsgScroll, Value: "top"})
}

func (c *remoteChrome) SetTitle(title string) {
	_ = c.out.send(Outbound{Type: MsgTitle, Value: title})
}

func (c *remoteChrome) SetLang(lang string) {
	_ = c.out.send(Outbound{Type: MsgLang, Value: lang})
}

var _ shell.Chrome = (*remoteChrome)(nil)

// remoteSurface commits view content to the client's #app-content.
type remoteSurface struct {
	out sender
}

func (s *remoteSurface) Replace(markup template.HTML) error {
	return s.out.send(Outbound{Type: MsgReplace, HTML: string(markup)})
}

var _ view.Surface = (*remoteSurface)(nil)

func routeMessage(ch nav.Change) Outbound {
	return Outbound{
		Type:   MsgRoute,
		Path:   ch.Path,
		View:   ch.View,
		Params: ch.Params.Map(),
		Active: ch.ActiveTag,
	}
}

func pickLang(requested, fallback string) string {
	if i18n.IsSupported(requested) {
		return requested
	}
	return fallback
}
