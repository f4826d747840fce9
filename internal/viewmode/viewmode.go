package viewmode

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrReadOnly is returned when a mutation is attempted in external view.
var ErrReadOnly = errors.New("plan is read-only in external view")

// Gate holds the process-wide view flag. The zero value is internal view.
type Gate struct {
	external atomic.Bool
}

func (g *Gate) External() bool {
	return g.external.Load()
}

func (g *Gate) Set(external bool) {
	g.external.Store(external)
}

// Toggle flips the flag and returns the new value.
func (g *Gate) Toggle() bool {
	for {
		cur := g.external.Load()
		if g.external.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

// Enter forces external view. The returned func restores the previous value.
func (g *Gate) Enter() (restore func()) {
	prev := g.external.Swap(true)
	return func() { g.external.Store(prev) }
}

type readOnlyKey struct{}

// WithReadOnly marks ctx so the state layer refuses mutations made under it.
func WithReadOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, readOnlyKey{}, true)
}

func IsReadOnly(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(readOnlyKey{}).(bool)
	return v
}
