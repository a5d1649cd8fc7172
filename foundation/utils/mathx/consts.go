// File: consts.go
// Title: Constant Cache
// Description: Lazily computed high-precision constants shared by every
//              formula evaluation.
// Author: Nicolas5241
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02
//
// Change History:
// - 2025-10-02 v0.1.0: Initial implementation

package mathx

import (
	"sync"

	"github.com/db47h/decimal"
	dmath "github.com/db47h/decimal/math"
)

// libMu serializes calls into github.com/db47h/decimal/math, which keeps
// unguarded package-level tables for pi and ln(10).
var libMu sync.Mutex

// ConstCache computes transcendental constants at WorkingPrecision once
// and hands out the cached values. It is safe for concurrent use.
type ConstCache struct {
	mu    sync.Mutex
	pi    *decimal.Decimal
	twoPi *decimal.Decimal

	computations int
}

// NewConstCache returns an empty cache. Nothing is computed until first use.
func NewConstCache() *ConstCache {
	return &ConstCache{}
}

var (
	defaultOnce   sync.Once
	defaultConsts *ConstCache
)

// DefaultConsts returns a process-wide cache for entry points that have
// no other place to own one.
func DefaultConsts() *ConstCache {
	defaultOnce.Do(func() {
		defaultConsts = NewConstCache()
	})
	return defaultConsts
}

func (c *ConstCache) load() {
	if c.pi != nil {
		return
	}

	libMu.Lock()
	pi := dmath.Pi(newValue(WorkingPrecision))
	libMu.Unlock()

	c.pi = pi
	c.twoPi = newValue(WorkingPrecision).Add(pi, pi)
	c.computations++
}

// Pi returns π rounded to WorkingPrecision
func (c *ConstCache) Pi() Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	return Decimal{v: c.pi}
}

// TwoPi returns 2π rounded to WorkingPrecision
func (c *ConstCache) TwoPi() Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	return Decimal{v: c.twoPi}
}

// Computations reports how many times π was computed by this cache.
func (c *ConstCache) Computations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computations
}

// Exp returns e^x rounded to WorkingPrecision.
func (c *ConstCache) Exp(x Decimal) Decimal {
	if x.nan {
		return NaN()
	}
	libMu.Lock()
	defer libMu.Unlock()
	return compute(func() *decimal.Decimal {
		return dmath.Exp(newValue(WorkingPrecision), x.val())
	})
}

// Log returns the natural logarithm of x rounded to WorkingPrecision.
// Log(0) is -Inf and the logarithm of a negative number is NaN.
func (c *ConstCache) Log(x Decimal) Decimal {
	if x.nan || x.val().Sign() < 0 {
		return NaN()
	}
	libMu.Lock()
	defer libMu.Unlock()
	return compute(func() *decimal.Decimal {
		return dmath.Log(newValue(WorkingPrecision), x.val())
	})
}
