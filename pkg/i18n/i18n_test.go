package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesEmbedded(t *testing.T) {
	d := Messages()
	require.NotEmpty(t, d)

	for key, entry := range d {
		assert.NotEmpty(t, entry[Portuguese], "key %s has no pt text", key)
		assert.NotEmpty(t, entry[English], "key %s has no en text", key)
	}

	assert.Equal(t, "Página não encontrada.", d.Lookup("pt", "page_not_found"))
	assert.Equal(t, "Page not found.", d.Lookup("en", "page_not_found"))
}

func TestLookupFallbacks(t *testing.T) {
	d := Dictionary{
		"only_pt": {"pt": "só pt"},
		"only_en": {"en": "only en"},
		"empty":   {},
	}

	assert.Equal(t, "só pt", d.Lookup("en", "only_pt"))
	assert.Equal(t, "only en", d.Lookup("pt", "only_en"))
	assert.Equal(t, "empty", d.Lookup("pt", "empty"))
	assert.Equal(t, "missing_key", d.Lookup("pt", "missing_key"))
}

func TestPick(t *testing.T) {
	tests := []struct {
		name  string
		field any
		lang  string
		want  string
	}{
		{"nil", nil, "pt", ""},
		{"string", "Culto", "en", "Culto"},
		{"map string", map[string]string{"pt": "Culto", "en": "Service"}, "en", "Service"},
		{"map any", map[string]any{"pt": "Culto", "en": "Service"}, "pt", "Culto"},
		{"fallback pt", map[string]any{"pt": "Culto"}, "en", "Culto"},
		{"fallback en", map[string]any{"en": "Service", "pt": ""}, "pt", "Service"},
		{"non-string values", map[string]any{"pt": 3}, "pt", ""},
		{"unsupported type", 42, "pt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pick(tt.field, tt.lang))
		})
	}
}

func TestSetLangNotifiesListeners(t *testing.T) {
	l := NewDefault("pt")

	var got []string
	remove := l.OnChange(func(lang string) { got = append(got, lang) })

	assert.False(t, l.SetLang("pt"), "setting the current language is a no-op")
	assert.False(t, l.SetLang("fr"), "unsupported languages are ignored")
	assert.True(t, l.SetLang("en"))
	assert.Equal(t, "en", l.Lang())
	assert.Equal(t, "Page not found.", l.Key("page_not_found"))

	remove()
	l.SetLang("pt")
	assert.Equal(t, []string{"en"}, got)
}

func TestListenerPanicIsIsolated(t *testing.T) {
	l := NewDefault("pt")
	called := false
	l.OnChange(func(string) { panic("broken listener") })
	l.OnChange(func(string) { called = true })

	require.True(t, l.SetLang("en"))
	assert.True(t, called)
}

func TestNewUnsupportedLanguage(t *testing.T) {
	assert.Equal(t, Default, NewDefault("de").Lang())
}

func TestLocalizerT(t *testing.T) {
	l := NewDefault("en")
	assert.Equal(t, "Service", l.T(map[string]any{"pt": "Culto", "en": "Service"}))
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "pt"},
		{"en-GB,en;q=0.9", "en"},
		{"pt-PT,pt;q=0.9,en;q=0.8", "pt"},
		{"pt-BR", "pt"},
		{"fr-FR,en;q=0.5", "en"},
		{"de", "pt"},
		{"not a header;;;", "pt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Negotiate(tt.header), "Negotiate(%q)", tt.header)
	}
}

func TestParseDictionaryError(t *testing.T) {
	_, err := ParseDictionary([]byte("key: [unterminated"))
	assert.Error(t, err)
}
