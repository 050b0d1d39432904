package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"plain text escaped", "a < b & c", "a &lt; b &amp; c"},
		{"allowed formatting", "<p><strong>Olá</strong> <em>mundo</em></p>", "<p><strong>Olá</strong> <em>mundo</em></p>"},
		{"script dropped with content", `<p>ok</p><script>alert(1)</script>`, "<p>ok</p>"},
		{"style dropped", `<style>p{}</style><p>x</p>`, "<p>x</p>"},
		{"unknown tag unwrapped", `<section><p>kept</p></section>`, "<p>kept</p>"},
		{"event handler removed", `<p onclick="x()" class="lead">t</p>`, `<p class="lead">t</p>`},
		{"javascript href removed", `<a href="javascript:alert(1)">x</a>`, "<a>x</a>"},
		{"obfuscated scheme removed", `<a href=" java	script:alert(1)">x</a>`, "<a>x</a>"},
		{"safe href kept", `<a href="/sobre" title="Sobre">x</a>`, `<a href="/sobre" title="Sobre">x</a>`},
		{"mailto kept", `<a href="mailto:info@example.com">m</a>`, `<a href="mailto:info@example.com">m</a>`},
		{"blank target gets rel", `<a href="https://x.test" target="_blank">x</a>`, `<a href="https://x.test" target="_blank" rel="noopener noreferrer">x</a>`},
		{"data image src kept", `<img src="data:image/png;base64,AA" alt="a"/>`, `<img src="data:image/png;base64,AA" alt="a"/>`},
		{"data href removed", `<a href="data:text/html,x">x</a>`, "<a>x</a>"},
		{"comment removed", `<p>a<!-- secret -->b</p>`, "<p>ab</p>"},
		{"iframe removed", `<iframe src="https://evil.test"></iframe><p>x</p>`, "<p>x</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Sanitize(tt.in)))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "", Excerpt("", 10))
	assert.Equal(t, "Olá mundo", Excerpt("<p>Olá</p>\n\n<p>mundo</p>", 50))
	assert.Equal(t, "Graça e...", Excerpt("<p>Graça e paz</p>", 7))
	assert.Equal(t, "sem limite", Excerpt("<b>sem</b> limite", 0))
}
