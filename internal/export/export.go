// Package export pre-renders the site's parameterless routes into static
// files. Each route runs through the same headless engine as server-side
// rendering and is wrapped in the shell page, so a static host serves the
// same first paint the live server would. The thin client, service worker
// and manifest are written alongside, and a 404.html is rendered from the
// NotFound view.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	clientdist "github.com/renatoruis/oh-institutional/client/dist"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/server"
)

// DefaultConcurrency bounds how many pages render at once.
const DefaultConcurrency = 4

// notFoundLocation is rendered to produce 404.html. It must not match any
// route.
const notFoundLocation = "/404"

// Renderer renders one location. *server.Site implements it.
type Renderer interface {
	Render(ctx context.Context, location, lang string) (server.Page, error)
	Table() *router.Table
}

// Destination receives exported files. key is a slash-separated relative
// path such as "sobre/index.html".
type Destination interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// File is one exported file.
type File struct {
	Key      string
	Location string
	Status   int
	Bytes    int
}

// Report summarizes an export run. Failed lists the keys that could not
// be written.
type Report struct {
	Files    []File
	Failed   []string
	Duration time.Duration
}

// Exporter writes the static site to a destination.
type Exporter struct {
	site        Renderer
	dest        Destination
	lang        string
	concurrency int
	assets      bool
	logger      *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLanguage sets the language pages are rendered in.
func WithLanguage(lang string) Option {
	return func(e *Exporter) {
		e.lang = lang
	}
}

// WithConcurrency bounds parallel renders. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithoutAssets skips client.js, sw.js and the manifest.
func WithoutAssets() Option {
	return func(e *Exporter) {
		e.assets = false
	}
}

// WithLogger sets the exporter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an exporter rendering site into dest.
func New(site Renderer, dest Destination, opts ...Option) *Exporter {
	e := &Exporter{
		site:        site,
		dest:        dest,
		concurrency: DefaultConcurrency,
		assets:      true,
		logger:      slog.Default().With("component", "export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locations returns the parameterless patterns of table in registration
// order. Parameterized routes have no finite URL set and are left to the
// live server.
func Locations(table *router.Table) []string {
	var out []string
	for _, entry := range table.Entries() {
		if strings.Contains(entry.Pattern, ":") {
			continue
		}
		out = append(out, entry.Pattern)
	}
	return out
}

// Key maps a location to the file serving it: "/" is index.html and
// "/sobre" is sobre/index.html.
func Key(location string) string {
	trimmed := strings.Trim(location, "/")
	if trimmed == "" {
		return "index.html"
	}
	return path.Join(trimmed, "index.html")
}

// Run renders every page and writes it. Pages that fail are reported and
// the run continues; the returned error joins every failure.
func (e *Exporter) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	var (
		mu     sync.Mutex
		report Report
		errs   []error
	)
	record := func(f File, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed = append(report.Failed, f.Key)
			errs = append(errs, err)
			return
		}
		report.Files = append(report.Files, f)
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for _, location := range Locations(e.site.Table()) {
		g.Go(func() error {
			f, err := e.page(ctx, location, Key(location), http.StatusOK)
			record(f, err)
			return nil
		})
	}
	g.Go(func() error {
		f, err := e.page(ctx, notFoundLocation, "404.html", http.StatusNotFound)
		record(f, err)
		return nil
	})
	if e.assets {
		for _, a := range assets() {
			g.Go(func() error {
				record(e.put(ctx, a.key, "", http.StatusOK, a.body, a.contentType))
				return nil
			})
		}
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Key < report.Files[j].Key })
	sort.Strings(report.Failed)
	report.Duration = time.Since(start)

	e.logger.Info("export finished",
		"files", len(report.Files),
		"failed", len(report.Failed),
		"duration", report.Duration.Round(time.Millisecond))
	return report, errors.Join(errs...)
}

func (e *Exporter) page(ctx context.Context, location, key string, want int) (File, error) {
	p, err := e.site.Render(ctx, location, e.lang)
	if err != nil {
		return File{Key: key, Location: location}, fmt.Errorf("render %s: %w", location, err)
	}
	if p.Status != want {
		e.logger.Warn("unexpected page status", "location", location, "status", p.Status)
		return File{Key: key, Location: location, Status: p.Status},
			fmt.Errorf("render %s: status %d, want %d", location, p.Status, want)
	}

	var buf bytes.Buffer
	if err := server.WritePage(&buf, p); err != nil {
		return File{Key: key, Location: location}, fmt.Errorf("write %s: %w", location, err)
	}
	return e.put(ctx, key, location, p.Status, buf.Bytes(), "text/html; charset=utf-8")
}

func (e *Exporter) put(ctx context.Context, key, location string, status int, body []byte, contentType string) (File, error) {
	f := File{Key: key, Location: location, Status: status, Bytes: len(body)}
	if err := e.dest.Put(ctx, key, body, contentType); err != nil {
		return f, fmt.Errorf("put %s: %w", key, err)
	}
	e.logger.Debug("exported", "key", key, "bytes", len(body))
	return f, nil
}

type staticAsset struct {
	key         string
	body        []byte
	contentType string
}

func assets() []staticAsset {
	return []staticAsset{
		{"client.js", clientdist.ClientJS, "application/javascript; charset=utf-8"},
		{"sw.js", clientdist.ServiceWorkerJS, "application/javascript; charset=utf-8"},
		{"manifest.webmanifest", clientdist.Manifest, "application/manifest+json"},
	}
}
