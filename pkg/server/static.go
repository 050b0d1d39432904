package server

import (
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// AssetsPrefix is the URL prefix of the static assets directory.
const AssetsPrefix = "/assets/"

// staticRelPath maps a request path under AssetsPrefix to a file inside the
// assets directory. Traversal, absolute paths and dot segments are
// rejected rather than cleaned away.
func staticRelPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, AssetsPrefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, AssetsPrefix)
	if rel == "" || strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") || strings.HasPrefix(rel, "/") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

// serveStatic serves stylesheets, images and icons from the configured
// assets directory.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	rel, ok := staticRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := s.assets.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", s.staticCacheControl(rel))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, rel, info.ModTime(), rs)
}

func (s *Server) staticCacheControl(rel string) string {
	switch {
	case s.config.DevMode:
		return "no-store"
	case isFingerprinted(rel):
		return "public, max-age=31536000, immutable"
	default:
		return "public, max-age=3600, must-revalidate"
	}
}

// isFingerprinted reports whether the file name carries a content hash,
// as in "app.a1b2c3d4.css".
func isFingerprinted(rel string) bool {
	parts := strings.Split(path.Base(rel), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
