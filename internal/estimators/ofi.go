package estimators

import "container/list"

// RollingOFI tracks the last N signed trade volumes (positive for an
// aggressor Buy, negative for Sell) and reports the normalized
// order-flow imbalance: net signed volume over total absolute volume,
// in [-1, 1]. Spec §3 "Rolling order-flow imbalance".
type RollingOFI struct {
	window  int
	volumes *list.List // of float64, most recent at back
}

// NewRollingOFI creates an estimator over a window of the last n
// signed volumes.
func NewRollingOFI(n int) *RollingOFI {
	if n < 1 {
		n = 1
	}
	return &RollingOFI{window: n, volumes: list.New()}
}

// Record appends one signed volume (positive for a Buy aggressor,
// negative for a Sell aggressor), evicting the oldest entry once the
// window is exceeded.
func (o *RollingOFI) Record(signedVolume float64) {
	o.volumes.PushBack(signedVolume)
	if o.volumes.Len() > o.window {
		o.volumes.Remove(o.volumes.Front())
	}
}

// OFI returns sum(volumes) / sum(|volumes|), or 0 if the window is
// empty.
func (o *RollingOFI) OFI() float64 {
	if o.volumes.Len() == 0 {
		return 0
	}

	var sum, sumAbs float64
	for el := o.volumes.Front(); el != nil; el = el.Next() {
		v := el.Value.(float64)
		sum += v
		if v < 0 {
			sumAbs -= v
		} else {
			sumAbs += v
		}
	}
	if sumAbs == 0 {
		return 0
	}
	return sum / sumAbs
}

// Len returns the number of signed volumes currently held.
func (o *RollingOFI) Len() int {
	return o.volumes.Len()
}
