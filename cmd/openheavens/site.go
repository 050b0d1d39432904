package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/renatoruis/oh-institutional/internal/config"
	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/middleware"
	"github.com/renatoruis/oh-institutional/pkg/server"
	"github.com/renatoruis/oh-institutional/pkg/view"
	"github.com/renatoruis/oh-institutional/pkg/views"
)

// buildSite wires the content client, views and render middleware
// described by cfg into a site.
func buildSite(cfg *config.Config, transport http.RoundTripper) (*server.Site, error) {
	logger := slog.Default()

	var mw []view.Middleware
	if cfg.Metrics.Enabled {
		mw = append(mw, middleware.Prometheus(middleware.WithNamespace(cfg.Metrics.Namespace)))
	}
	if cfg.Tracing.Enabled {
		mw = append(mw, middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)))
	}

	client, err := content.New(cfg.API.Base,
		content.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout, Transport: transport}),
		content.WithCacheTTL(cfg.API.CacheTTL),
		content.WithLogger(logger),
		content.WithFetchHook(middleware.RecordContentFetch),
	)
	if err != nil {
		return nil, err
	}

	set, err := views.New(views.Deps{Content: client, Logger: logger})
	if err != nil {
		return nil, err
	}

	return server.NewSite(set,
		server.WithRenderMiddleware(mw...),
		server.WithRenderTimeout(cfg.Render.Timeout),
		server.WithDefaultLang(cfg.Lang),
		server.WithSiteLogger(logger),
	)
}

// serverConfig maps the file/env configuration onto the server's.
func serverConfig(cfg *config.Config) *server.ServerConfig {
	sc := server.DefaultServerConfig()
	sc.Address = cfg.Server.Addr
	sc.DevMode = cfg.Server.Dev
	sc.MaxSessions = cfg.Server.MaxSessions
	sc.TrustedProxies = cfg.Server.TrustedProxies
	sc.Metrics = cfg.Metrics.Enabled
	if cfg.Server.AssetsDir != "" {
		sc.Assets = os.DirFS(cfg.Server.AssetsDir)
	}

	sc.SessionConfig.HeartbeatInterval = cfg.Server.PingInterval
	sc.SessionConfig.ReadTimeout = cfg.Server.ReadTimeout
	sc.SessionConfig.WriteTimeout = cfg.Server.WriteTimeout
	sc.SessionConfig.MaxMessageSize = cfg.Server.MaxMessageSize
	return sc
}
