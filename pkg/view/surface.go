package view

import (
	"html/template"
	"sync"
)

// Surface is the display area views are committed to.
type Surface interface {
	// Replace swaps the surface's content for markup.
	Replace(markup template.HTML) error
}

// Titler is implemented by surfaces that can set the document title.
type Titler interface {
	SetTitle(title string)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(markup template.HTML) error

// Replace implements Surface.
func (f SurfaceFunc) Replace(markup template.HTML) error {
	return f(markup)
}

// Buffer is an in-memory Surface. It keeps the latest markup and title and
// counts commits. Server-side renders and tests use it.
type Buffer struct {
	mu      sync.Mutex
	markup  template.HTML
	title   string
	commits int
}

// Replace implements Surface.
func (b *Buffer) Replace(markup template.HTML) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markup = markup
	b.commits++
	return nil
}

// SetTitle implements Titler.
func (b *Buffer) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

// Markup returns the current content.
func (b *Buffer) Markup() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.markup
}

// Title returns the last title set.
func (b *Buffer) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

// Commits returns how many times content was replaced.
func (b *Buffer) Commits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commits
}
