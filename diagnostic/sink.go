// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"sort"
	"sync"
)

// Sink accepts diagnostics. Implementations must be append-only.
type Sink interface {
	Add(d Diagnostic)
}

// Discard is a Sink that drops every diagnostic. Speculative binding uses
// it so that dry-run attempts leave no trace.
var Discard Sink = discard{}

type discard struct{}

func (discard) Add(Diagnostic) {}

// Bag is an append-only, mutex-guarded diagnostic collection. A single Bag
// may be shared by concurrent binds.
type Bag struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends d.
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	b.diags = append(b.diags, d)
	b.mu.Unlock()
}

// Diagnostics returns a copy of the collected diagnostics in insertion
// order.
func (b *Bag) Diagnostics() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Diagnostic(nil), b.diags...)
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.diags)
}

// HasErrors reports whether any collected diagnostic is an error.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given code.
func (b *Bag) Count(code Code) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, d := range b.diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Sorted returns the diagnostics ordered by file, line and column.
func (b *Bag) Sorted() []Diagnostic {
	diags := b.Diagnostics()
	SortByPosition(diags)
	return diags
}

// SortByPosition sorts diags in place by primary span position, keeping the
// insertion order of diagnostics at the same position.
func SortByPosition(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Span(), diags[j].Span()
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}
