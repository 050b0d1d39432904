package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/renatoruis/oh-institutional/pkg/i18n"
	"github.com/renatoruis/oh-institutional/pkg/routepath"
)

// LangCookie holds the visitor's language choice.
const LangCookie = "oh_lang"

// Server is the HTTP/WebSocket server for the site.
type Server struct {
	site           *Site
	config         *ServerConfig
	sessions       *SessionManager
	upgrader       websocket.Upgrader
	trustedProxies *proxyMatcher
	handler        http.Handler
	assets         fs.FS

	mu         sync.Mutex
	httpServer *http.Server

	logger *slog.Logger
}

// New creates a server for site. A nil config uses DefaultServerConfig.
func New(site *Site, config *ServerConfig) *Server {
	config = config.withDefaults()
	logger := slog.Default().With("component", "server")

	s := &Server{
		site:           site,
		config:         config,
		sessions:       NewSessionManager(site, config.SessionConfig, config.MaxSessions, slog.Default()),
		trustedProxies: newProxyMatcher(config.TrustedProxies, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		assets: config.Assets,
		logger: logger,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/ws", s.HandleWebSocket)
	r.Get("/client.js", s.serveThinClient)
	r.Head("/client.js", s.serveThinClient)
	r.Get("/sw.js", s.serveServiceWorker)
	r.Get("/manifest.webmanifest", s.serveManifest)
	r.Get("/healthz", s.serveHealth)
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.assets != nil {
		r.Get(AssetsPrefix+"*", s.serveStatic)
		r.Head(AssetsPrefix+"*", s.serveStatic)
	}
	if s.config.Metrics {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}
	r.Get("/*", s.ServePage)
	r.Head("/*", s.ServePage)
	return r
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the effective configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// ServePage server-renders any site path into the shell page.
//
// Non-canonical paths are redirected with 308 so every page has one URL;
// paths that cannot be canonicalized are rejected with 400.
func (s *Server) ServePage(w http.ResponseWriter, r *http.Request) {
	input := routepath.JoinPathQuery(r.URL.EscapedPath(), r.URL.RawQuery)
	result, err := routepath.Canonicalize(input)
	if err != nil {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	if result.Changed {
		http.Redirect(w, r, result.Full(), http.StatusPermanentRedirect)
		return
	}

	lang := s.requestLang(r)
	page, err := s.site.Render(r.Context(), result.Full(), lang)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		s.logger.Error("page render failed", "path", result.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Language", page.Lang)
	h.Set("Vary", "Cookie, Accept-Language")
	h.Set("Cache-Control", "no-cache")
	w.WriteHeader(page.Status)
	if r.Method == http.MethodHead {
		return
	}
	if err := WritePage(w, page); err != nil {
		s.logger.Error("writing page", "path", result.Path, "error", err)
	}
}

// requestLang picks the page language: an explicit ?lang=, the language
// cookie, then Accept-Language, then the site default.
func (s *Server) requestLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); i18n.IsSupported(lang) {
		return lang
	}
	if c, err := r.Cookie(LangCookie); err == nil && i18n.IsSupported(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.Negotiate(accept)
	}
	return s.site.DefaultLang()
}

// HandleWebSocket upgrades the connection and runs a session on it until
// the client goes away.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Full() {
		http.Error(w, "Too many sessions", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session, err := s.sessions.Create(conn, requestOrigin(r, s.trustedProxies), s.clientIP(r))
	if err != nil {
		s.logger.Warn("session rejected", "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}

	session.Serve()
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()))
	})
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down", "sessions", s.sessions.Count())
	s.sessions.CloseAll()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
