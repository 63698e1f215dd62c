package domain

import "sync/atomic"

// Generation hands out monotonically increasing request tokens. A response
// tagged with a token is applied only while that token is still the latest.
type Generation struct {
	n atomic.Uint64
}

// Next issues a new token, superseding every earlier one
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current returns the latest issued token
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether token is the latest issued
func (g *Generation) IsCurrent(token uint64) bool {
	return token != 0 && g.n.Load() == token
}
