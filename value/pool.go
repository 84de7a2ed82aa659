// Package value implements Lox's runtime value representation: the tagged
// Value/Object variants and the string pool that backs interned strings.
package value

import (
	"sync"

	"github.com/josharian/intern"
)

// StringHandle is a pool-interned character sequence. Two handles compare
// equal by identity iff they were interned from content-identical strings.
type StringHandle struct {
	s string
}

// String returns the underlying character sequence.
func (h *StringHandle) String() string {
	if h == nil {
		return ""
	}
	return h.s
}

// Pool interns script strings and identifier names, returning shared handles
// with stable identity. Single-owner: one Pool per interpret call.
type Pool struct {
	mu      sync.Mutex
	handles map[string]*StringHandle
}

// NewPool creates an empty string pool.
func NewPool() *Pool {
	return &Pool{handles: make(map[string]*StringHandle)}
}

// Intern canonicalizes s, returning an existing handle for identical content
// or inserting a new one. intern.String deduplicates the backing storage of
// the content itself so repeated identical lexemes from the scanner don't
// each keep their own backing array alive.
func (p *Pool) Intern(s string) *StringHandle {
	canon := intern.String(s)

	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.handles[canon]; ok {
		return h
	}
	h := &StringHandle{s: canon}
	p.handles[canon] = h
	return h
}

// Len reports how many distinct strings are currently interned.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}
