// internal/render/region.go
package render

import (
	"strings"
	"sync"
)

// Region is a replaceable display area. Render replaces the whole region's
// content; partial updates do not exist, which keeps re-rendering idempotent.
type Region interface {
	Render(markup string)
	Reveal()
	Clear()
}

// Buffer is an in-memory Region used by the console binary and tests.
type Buffer struct {
	mu      sync.Mutex
	content string
	visible bool
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Render(markup string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = markup
}

func (b *Buffer) Reveal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = true
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = ""
}

// Content returns the region's current markup.
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Visible reports whether Reveal has been called.
func (b *Buffer) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// Contains reports whether the current content includes the given substring.
func (b *Buffer) Contains(s string) bool {
	return strings.Contains(b.Content(), s)
}
