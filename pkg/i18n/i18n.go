// Package i18n holds the interface dictionary and the active language of a
// browsing context.
//
// Every key has a Portuguese and an English text. Lookups fall back from the
// active language to Portuguese, then English, then the key itself, so a
// missing translation never renders as an empty string.
package i18n

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Supported languages.
const (
	Portuguese = "pt"
	English    = "en"

	// Default is the language used when nothing else is known.
	Default = Portuguese
)

// Supported lists the languages in preference order.
var Supported = []string{Portuguese, English}

var matcher = language.NewMatcher([]language.Tag{
	language.Portuguese,
	language.English,
})

//go:embed messages.yaml
var messagesYAML []byte

// Dictionary maps keys to their texts per language.
type Dictionary map[string]map[string]string

// ParseDictionary decodes a YAML dictionary.
func ParseDictionary(data []byte) (Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	return d, nil
}

var (
	messagesOnce sync.Once
	messages     Dictionary
)

// Messages returns the embedded interface dictionary.
func Messages() Dictionary {
	messagesOnce.Do(func() {
		d, err := ParseDictionary(messagesYAML)
		if err != nil {
			panic(err)
		}
		messages = d
	})
	return messages
}

// Lookup returns the text for key in lang with the usual fallbacks.
func (d Dictionary) Lookup(lang, key string) string {
	entry, ok := d[key]
	if !ok {
		return key
	}
	if s := Pick(entry, lang); s != "" {
		return s
	}
	return key
}

// IsSupported reports whether lang is a supported language.
func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Negotiate picks a supported language from an Accept-Language header.
func Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Pick returns the text of a translated field for lang. It accepts the
// shapes found in content API records: a plain string, or an object keyed
// by language. It falls back to Portuguese, then English, then "".
func Pick(field any, lang string) string {
	switch v := field.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]string:
		for _, l := range []string{lang, Portuguese, English} {
			if s := v[l]; s != "" {
				return s
			}
		}
	case map[string]any:
		for _, l := range []string{lang, Portuguese, English} {
			if s, ok := v[l].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

type listener struct {
	fn func(string)
}

// Localizer is the language state of one browsing context.
type Localizer struct {
	dict   Dictionary
	logger *slog.Logger

	mu        sync.RWMutex
	lang      string
	listeners []*listener
}

// New creates a localizer over dict. Unsupported languages start as Default.
func New(dict Dictionary, lang string) *Localizer {
	if !IsSupported(lang) {
		lang = Default
	}
	return &Localizer{
		dict:   dict,
		lang:   lang,
		logger: slog.Default().With("component", "i18n"),
	}
}

// NewDefault creates a localizer over the embedded dictionary.
func NewDefault(lang string) *Localizer {
	return New(Messages(), lang)
}

// Lang returns the active language.
func (l *Localizer) Lang() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

// SetLang switches the active language and notifies listeners. Setting the
// current or an unsupported language does nothing. It reports whether the
// language changed.
func (l *Localizer) SetLang(lang string) bool {
	l.mu.Lock()
	if lang == l.lang || !IsSupported(lang) {
		l.mu.Unlock()
		return false
	}
	l.lang = lang
	listeners := make([]*listener, len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.Unlock()

	for _, ls := range listeners {
		l.notify(ls, lang)
	}
	return true
}

func (l *Localizer) notify(ls *listener, lang string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("language listener panicked", "lang", lang, "panic", r)
		}
	}()
	ls.fn(lang)
}

// OnChange registers fn to run after the language changes. The returned
// func removes it.
func (l *Localizer) OnChange(fn func(lang string)) func() {
	ls := &listener{fn: fn}

	l.mu.Lock()
	l.listeners = append(l.listeners, ls)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, other := range l.listeners {
			if other == ls {
				l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
				return
			}
		}
	}
}

// Key returns the dictionary text for key in the active language.
func (l *Localizer) Key(key string) string {
	return l.dict.Lookup(l.Lang(), key)
}

// T returns a translated field in the active language.
func (l *Localizer) T(field any) string {
	return Pick(field, l.Lang())
}
