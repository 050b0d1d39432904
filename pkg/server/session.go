package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/renatoruis/oh-institutional/pkg/i18n"
	"github.com/renatoruis/oh-institutional/pkg/link"
	"github.com/renatoruis/oh-institutional/pkg/middleware"
	"github.com/renatoruis/oh-institutional/pkg/nav"
	"github.com/renatoruis/oh-institutional/pkg/routepath"
)

// Session is one connected browser tab.
type Session struct {
	ID        string
	IP        string
	CreatedAt time.Time

	conn   *websocket.Conn
	config *SessionConfig
	site   *Site
	origin string
	logger *slog.Logger

	writeMu sync.Mutex
	events  chan Inbound
	done    chan struct{}
	closed  atomic.Bool
	loops   sync.WaitGroup
	onClose func(*Session)

	lastActive atomic.Int64
	sent       atomic.Uint64
	received   atomic.Uint64

	// Owned by the event loop.
	history     *remoteHistory
	chrome      *remoteChrome
	locale      *i18n.Localizer
	engine      *engine
	interceptor *link.Interceptor
}

func newSession(conn *websocket.Conn, site *Site, config *SessionConfig, origin, ip string, logger *slog.Logger) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		IP:        ip,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    config,
		site:      site,
		origin:    origin,
		logger:    logger.With("session_id", id),
		events:    make(chan Inbound, config.MaxEventQueue),
		done:      make(chan struct{}),
	}
	s.touch()
	return s
}

// Serve runs the session until the connection ends.
func (s *Session) Serve() {
	s.loops.Add(2)
	go func() {
		defer s.loops.Done()
		s.WriteLoop()
	}()
	go func() {
		defer s.loops.Done()
		s.EventLoop()
	}()
	s.ReadLoop()
	s.loops.Wait()
}

// Queue hands a client message to the event loop.
func (s *Session) Queue(msg Inbound) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.events <- msg:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// handle applies one client message. It runs on the event loop.
// Messages other than ready are refused with ErrNotReady until the
// session has started.
func (s *Session) handle(msg Inbound) error {
	if s.engine == nil && msg.Type != MsgReady {
		return ErrNotReady
	}

	switch msg.Type {
	case MsgReady:
		if s.engine != nil {
			s.logger.Warn("duplicate ready")
			return nil
		}
		if err := s.start(msg.Path, msg.Lang); err != nil {
			s.logger.Error("session start failed", "error", err)
			s.Close()
		}

	case MsgClick:
		if msg.Click == nil {
			s.logger.Warn("click without anchor")
			return nil
		}
		if !s.interceptor.Handle(*msg.Click) {
			_ = s.send(Outbound{Type: MsgLoad, Path: msg.Click.Href})
		}

	case MsgNavigate:
		res, err := routepath.ValidateNavPath(msg.Path)
		if err != nil {
			s.logger.Warn("rejected navigate", "path", msg.Path, "error", err)
			return nil
		}
		s.engine.controller.NavigateTo(res.Full())

	case MsgPopState:
		res, err := routepath.ValidateNavPath(msg.Path)
		if err != nil {
			s.logger.Warn("rejected popstate", "path", msg.Path, "error", err)
			return nil
		}
		s.history.popState(res.Full())

	case MsgLang:
		if !i18n.IsSupported(msg.Lang) {
			s.logger.Warn("unsupported language", "lang", msg.Lang)
			return nil
		}
		s.locale.SetLang(msg.Lang)

	default:
		s.logger.Warn("unknown message type", "type", msg.Type)
	}
	return nil
}

// start builds the session's engine at the client's current location and
// dispatches it. The page is already server-rendered, so the first render
// is resumed and does not reset the scroll position.
func (s *Session) start(path, lang string) error {
	location := "/"
	if res, err := routepath.ValidateNavPath(path); err == nil {
		location = res.Full()
	} else {
		s.logger.Warn("invalid ready path, starting at root", "path", path, "error", err)
	}

	s.history = newRemoteHistory(s, location)
	s.chrome = &remoteChrome{out: s}
	s.locale = i18n.New(s.site.dict, pickLang(lang, s.site.lang))

	e, err := s.site.newEngine(s.history, &remoteSurface{out: s}, s.chrome, s.locale, s.logger)
	if err != nil {
		return err
	}
	interceptor, err := link.New(s.origin, e.controller)
	if err != nil {
		e.shell.Stop()
		return err
	}
	e.controller.Listen(func(ch nav.Change) {
		_ = s.send(routeMessage(ch))
	})

	s.engine = e
	s.interceptor = interceptor

	e.dispatcher.ResumeNext()
	s.chrome.quiet.Store(true)
	defer s.chrome.quiet.Store(false)
	return e.shell.Start()
}

// send writes msg to the client. Writes from the event loop and from
// render goroutines are serialized.
func (s *Session) send(msg Outbound) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("write failed", "type", msg.Type, "error", err)
		middleware.RecordWebSocketError("write")
		return NewSessionError(s.ID, "send "+msg.Type, err)
	}
	s.sent.Add(1)
	return nil
}

func (s *Session) sendPing() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}
	deadline := time.Now().Add(s.config.WriteTimeout)
	if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		s.logger.Debug("ping error", "error", err)
		return err
	}
	return nil
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)

	if s.conn != nil {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = s.conn.Close()
		s.writeMu.Unlock()
	}

	if s.onClose != nil {
		s.onClose(s)
	}

	s.logger.Info("session closed",
		"duration", time.Since(s.CreatedAt).Round(time.Millisecond),
		"messages_sent", s.sent.Load(),
		"messages_recv", s.received.Load())
}

// teardown stops the engine. It runs on the event loop as it exits.
func (s *Session) teardown() {
	if s.engine != nil {
		s.engine.shell.Stop()
	}
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// LastActive returns when the client last sent anything.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}
