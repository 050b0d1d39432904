package server

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	clientdist "github.com/renatoruis/oh-institutional/client/dist"
)

// asset is an embedded file served with ETag revalidation.
type asset struct {
	body        []byte
	etag        string
	contentType string
	headers     map[string]string
}

func newAsset(body []byte, contentType string, headers map[string]string) asset {
	sum := sha256.Sum256(body)
	return asset{
		body:        body,
		etag:        fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:])),
		contentType: contentType,
		headers:     headers,
	}
}

var (
	thinClient = newAsset(clientdist.ClientJS, "application/javascript; charset=utf-8", nil)

	serviceWorker = newAsset(clientdist.ServiceWorkerJS, "application/javascript; charset=utf-8", map[string]string{
		"Service-Worker-Allowed": "/",
	})

	manifest = newAsset(clientdist.Manifest, "application/manifest+json", nil)
)

func (s *Server) serveThinClient(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, thinClient)
}

func (s *Server) serveServiceWorker(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, serviceWorker)
}

func (s *Server) serveManifest(w http.ResponseWriter, r *http.Request) {
	s.serveAsset(w, r, manifest)
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request, a asset) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(a.body) == 0 {
		http.Error(w, "Asset not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", a.etag)
	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for k, v := range a.headers {
		w.Header().Set(k, v)
	}

	// Unversioned URLs: revalidate every time, or skip caching in dev.
	if s.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), a.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.body)
}

func etagMatches(ifNoneMatchHeader, etag string) bool {
	if ifNoneMatchHeader == "" || etag == "" {
		return false
	}
	for _, part := range strings.Split(ifNoneMatchHeader, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == etag || candidate == "*" {
			return true
		}
		if strings.HasPrefix(candidate, "W/") && strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
