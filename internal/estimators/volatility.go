// Package estimators implements spec component D: bounded rolling
// windows over mid prices and signed trade volume, used by strategies
// to gauge short-horizon volatility and order-flow imbalance. Both
// estimators use a push-back/pop-front deque bounded to a fixed
// window, per spec §9 ("bounded double-ended containers... never
// unbounded growth").
package estimators

import (
	"container/list"
	"math"
)

// RollingVolatility tracks the last N mid prices and the N-1 returns
// derived from them, reporting the sample standard deviation of those
// returns. Spec §3 "Rolling volatility".
type RollingVolatility struct {
	window  int
	prices  *list.List // of float64, most recent at back
	returns *list.List // of float64, most recent at back
}

// NewRollingVolatility creates an estimator over a window of the last
// n mid prices. n must be at least 3 (so that two returns are kept)
// for a nonzero sigma to ever be reported.
func NewRollingVolatility(n int) *RollingVolatility {
	if n < 1 {
		n = 1
	}
	return &RollingVolatility{
		window:  n,
		prices:  list.New(),
		returns: list.New(),
	}
}

// Update pushes a new mid price, deriving and storing the return
// against the previous mid price, and evicts the oldest entries once
// the window is exceeded.
func (r *RollingVolatility) Update(mid float64) {
	if r.prices.Len() > 0 {
		prev := r.prices.Back().Value.(float64)
		if prev != 0 {
			ret := (mid - prev) / prev
			r.returns.PushBack(ret)
			limit := r.window - 1
			for r.returns.Len() > limit {
				r.returns.Remove(r.returns.Front())
			}
		}
	}

	r.prices.PushBack(mid)
	if r.prices.Len() > r.window {
		r.prices.Remove(r.prices.Front())
	}
}

// Sigma returns the sample standard deviation of the stored returns,
// or 0 if fewer than two returns have been observed.
func (r *RollingVolatility) Sigma() float64 {
	n := r.returns.Len()
	if n < 2 {
		return 0
	}

	var sum float64
	for el := r.returns.Front(); el != nil; el = el.Next() {
		sum += el.Value.(float64)
	}
	mean := sum / float64(n)

	var sumSq float64
	for el := r.returns.Front(); el != nil; el = el.Next() {
		d := el.Value.(float64) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Len returns the number of mid prices currently held.
func (r *RollingVolatility) Len() int {
	return r.prices.Len()
}
