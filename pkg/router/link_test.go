package router

import (
	"strings"
	"testing"
)

func TestLink(t *testing.T) {
	got := string(Link("/sobre", "Sobre", Class("btn")))
	want := `<a href="/sobre" class="btn">Sobre</a>`
	if got != want {
		t.Errorf("Link() = %q, want %q", got, want)
	}
}

func TestLinkEscapes(t *testing.T) {
	got := string(Link(`/blog?q="x"&y=<z>`, "<b>"))
	if strings.Contains(got, "<b>") {
		t.Errorf("label not escaped: %q", got)
	}
	if !strings.Contains(got, `href="/blog?q=&#34;x&#34;&amp;y=&lt;z&gt;"`) {
		t.Errorf("href not escaped: %q", got)
	}
}

func TestExternalLink(t *testing.T) {
	got := string(ExternalLink("https://youtube.com/x", "YouTube"))
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("ExternalLink() missing target: %q", got)
	}
	if !strings.Contains(got, `rel="noopener noreferrer"`) {
		t.Errorf("ExternalLink() missing rel: %q", got)
	}
}

func TestDownloadLink(t *testing.T) {
	got := string(DownloadLink("/files/a.pdf", "PDF"))
	want := `<a href="/files/a.pdf" download>PDF</a>`
	if got != want {
		t.Errorf("DownloadLink() = %q, want %q", got, want)
	}
}

func TestNavLink(t *testing.T) {
	active := string(NavLink("/blog", "blog", "Blog", true))
	if !strings.Contains(active, `data-page-id="blog"`) {
		t.Errorf("NavLink() missing data-page-id: %q", active)
	}
	if !strings.Contains(active, "nav-link-active") {
		t.Errorf("active NavLink() missing active class: %q", active)
	}

	inactive := string(NavLink("/blog", "blog", "Blog", false))
	if strings.Contains(inactive, "nav-link-active") {
		t.Errorf("inactive NavLink() has active class: %q", inactive)
	}
}
