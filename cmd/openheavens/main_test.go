package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/renatoruis/oh-institutional/internal/config"
	oherrors "github.com/renatoruis/oh-institutional/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// unavailableAPI points the content client at a server that always
// answers 503, so views render their degraded states without network.
func unavailableAPI(t *testing.T) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)
	t.Setenv("OH_API_BASE", ts.URL)
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })
}

func TestRoutesCommand(t *testing.T) {
	out, err := run(t, "routes")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"PATTERN", "/sermoes/:id", "Sermao", "/pagina/:slug"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 15 {
		t.Fatalf("got %d lines, want header plus 14 routes", len(lines))
	}
	if !strings.HasPrefix(lines[1], "/ ") {
		t.Fatalf("first route = %q, want /", lines[1])
	}
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Fatalf("version = %q, want %q", out, version)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format, level string
		wantErr       bool
	}{
		{"text", "info", false},
		{"json", "debug", false},
		{"", "warn", false},
		{"xml", "info", true},
		{"text", "loud", true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, tt.format, tt.level)
		if (err != nil) != tt.wantErr {
			t.Fatalf("newLogger(%q, %q) error = %v, wantErr %v", tt.format, tt.level, err, tt.wantErr)
		}
		if err != nil {
			continue
		}
		logger.Error("boom", "k", "v")
		if tt.format == "json" && !strings.HasPrefix(buf.String(), "{") {
			t.Fatalf("json logger wrote %q", buf.String())
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Fatalf("logger wrote %q", buf.String())
		}
	}
}

func TestServerConfigMapping(t *testing.T) {
	cfg := config.New()
	cfg.Server.Addr = ":9999"
	cfg.Server.Dev = true
	cfg.Server.MaxSessions = 7
	cfg.Server.PingInterval = 5 * time.Second
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8"}
	cfg.Metrics.Enabled = false

	sc := serverConfig(cfg)
	if sc.Address != ":9999" || !sc.DevMode || sc.MaxSessions != 7 || sc.Metrics {
		t.Fatalf("server config = %+v", sc)
	}
	if sc.SessionConfig.HeartbeatInterval != 5*time.Second {
		t.Fatalf("heartbeat = %v", sc.SessionConfig.HeartbeatInterval)
	}
	if len(sc.TrustedProxies) != 1 {
		t.Fatalf("trusted proxies = %v", sc.TrustedProxies)
	}
}

func TestExportCommand(t *testing.T) {
	unavailableAPI(t)
	dir := filepath.Join(t.TempDir(), "site")

	out, err := run(t, "export", "--dir", dir, "--lang", "en", "--log-level", "error")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	for _, name := range []string{"index.html", "sobre/index.html", "404.html", "client.js"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "sobre", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "About Us") {
		t.Fatal("export should honour --lang")
	}
}

func TestExportCommandRejectsBadLanguage(t *testing.T) {
	unavailableAPI(t)
	_, err := run(t, "export", "--dir", t.TempDir(), "--lang", "fr", "--log-level", "error")
	if err == nil {
		t.Fatal("unsupported language should fail validation")
	}
	if !oherrors.HasCode(err, "C002") {
		t.Fatalf("err = %v, want C002", err)
	}

	oherrors.SetColors(false)
	defer oherrors.SetColors(true)
	var stderr bytes.Buffer
	oherrors.Print(&stderr, err)
	for _, want := range []string{"ERROR C002: Invalid configuration value", "Hint: "} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("printed error missing %q:\n%s", want, stderr.String())
		}
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	unavailableAPI(t)
	_, err := run(t, "export", "--dir", t.TempDir(), "--log-format", "xml")
	if err == nil {
		t.Fatal("unknown log format should fail")
	}
}

func TestBuildSite(t *testing.T) {
	unavailableAPI(t)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Tracing.Enabled = true

	site, err := buildSite(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if site.DefaultLang() != cfg.Lang {
		t.Fatalf("DefaultLang = %q, want %q", site.DefaultLang(), cfg.Lang)
	}
}
