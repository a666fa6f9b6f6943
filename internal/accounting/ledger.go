// Package accounting implements spec component C: position, cost
// basis, realized/unrealized PnL, fees and rebates, and the
// flip-aware rule for crossing through a flat position.
package accounting

import (
	"math"

	"mmsim/internal/matching"
)

// Side and the Buy/Sell constants are the matching package's. The
// ledger never forms its own notion of order side.
type Side = matching.Side

const (
	Buy  = matching.Buy
	Sell = matching.Sell
)

// FeeSchedule is the immutable per-run fee/rebate configuration.
type FeeSchedule struct {
	MakerRebatePerShare float64
	TakerFeePerShare    float64
	FeeBasisPoints      float64
}

// Ledger holds the mutable accounting state for one strategy account
// across one simulation run.
type Ledger struct {
	initialCapital float64
	fees           FeeSchedule

	cash          float64
	position      int64
	costBasis     float64
	realizedPnL   float64
	unrealizedPnL float64
	totalFees     float64
	totalRebates  float64
	lastMark      float64
}

// New creates a Ledger seeded with the given starting capital and an
// immutable fee schedule.
func New(initialCapital float64, fees FeeSchedule) *Ledger {
	return &Ledger{
		initialCapital: initialCapital,
		fees:           fees,
		cash:           initialCapital,
	}
}

// OnFill applies one fill to the ledger per spec §4.C. side is the
// direction of the fill itself (BUY adds to position, SELL reduces
// it); isMaker selects the rebate vs. taker-fee path.
func (l *Ledger) OnFill(side Side, price float64, qty int64, isMaker bool) error {
	if qty <= 0 {
		return &InvalidFillError{Side: side.String(), Price: price, Quantity: qty, Reason: "quantity must be positive"}
	}
	if price <= 0 {
		return &InvalidFillError{Side: side.String(), Price: price, Quantity: qty, Reason: "price must be positive"}
	}

	notional := price * float64(qty)
	grossFee := notional * (l.fees.FeeBasisPoints / 10000)

	var netFee float64
	if isMaker {
		rebate := l.fees.MakerRebatePerShare * float64(qty)
		l.totalRebates += rebate
		netFee = grossFee - rebate
	} else {
		netFee = grossFee + l.fees.TakerFeePerShare*float64(qty)
	}
	l.totalFees += netFee

	if side == Buy {
		l.cash -= notional
	} else {
		l.cash += notional
	}

	l.applyPositionUpdate(side, price, qty)

	if l.position == 0 {
		l.costBasis = 0
	}

	l.MarkToMarket(price)
	return nil
}

// applyPositionUpdate implements the flip-aware cost-basis rule.
func (l *Ledger) applyPositionUpdate(side Side, price float64, qty int64) {
	fillSign := int64(1)
	if side == Sell {
		fillSign = -1
	}

	sameDirection := l.position == 0 || sign64(l.position) == fillSign
	if sameDirection {
		l.costBasis += price * float64(qty)
		l.position += fillSign * qty
		return
	}

	closeQty := qty
	if absInt64(l.position) < closeQty {
		closeQty = absInt64(l.position)
	}
	openQty := qty - closeQty

	avgEntry := l.costBasis / float64(absInt64(l.position))

	if l.position > 0 {
		// Closing a long.
		l.realizedPnL += (price - avgEntry) * float64(closeQty)
	} else {
		// Closing a short.
		l.realizedPnL += (avgEntry - price) * float64(closeQty)
	}

	if openQty > 0 {
		l.costBasis = price * float64(openQty)
		l.position = fillSign * openQty
	} else {
		l.costBasis -= avgEntry * float64(closeQty)
		l.position += fillSign * closeQty
	}
}

// MarkToMarket refreshes unrealized PnL against a reference price.
func (l *Ledger) MarkToMarket(mark float64) {
	l.lastMark = mark
	avg := l.AverageEntryPrice()
	switch {
	case l.position > 0:
		l.unrealizedPnL = (mark - avg) * float64(l.position)
	case l.position < 0:
		l.unrealizedPnL = (avg - mark) * float64(-l.position)
	default:
		l.unrealizedPnL = 0
	}
}

// AverageEntryPrice returns cost_basis / |position|, or 0 when flat.
func (l *Ledger) AverageEntryPrice() float64 {
	if l.position == 0 {
		return 0
	}
	return l.costBasis / float64(absInt64(l.position))
}

// Realized returns cumulative realized PnL.
func (l *Ledger) Realized() float64 { return l.realizedPnL }

// Unrealized returns the most recent mark's unrealized PnL.
func (l *Ledger) Unrealized() float64 { return l.unrealizedPnL }

// Total returns realized + unrealized PnL.
func (l *Ledger) Total() float64 { return l.realizedPnL + l.unrealizedPnL }

// Net returns total PnL net of fees, plus rebates.
func (l *Ledger) Net() float64 { return l.Total() - l.totalFees + l.totalRebates }

// Position returns the current signed position.
func (l *Ledger) Position() int64 { return l.position }

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// CostBasis returns the current cost basis.
func (l *Ledger) CostBasis() float64 { return l.costBasis }

// GrossExposure returns |position| * mark.
func (l *Ledger) GrossExposure(mark float64) float64 {
	return math.Abs(float64(l.position)) * mark
}

// NetExposure returns position * mark (signed).
func (l *Ledger) NetExposure(mark float64) float64 {
	return float64(l.position) * mark
}

// TotalFees returns cumulative net fees charged.
func (l *Ledger) TotalFees() float64 { return l.totalFees }

// TotalRebates returns cumulative rebates earned.
func (l *Ledger) TotalRebates() float64 { return l.totalRebates }

// InitialCapital returns the starting capital the ledger was seeded with.
func (l *Ledger) InitialCapital() float64 { return l.initialCapital }

// LastMark returns the most recent mark price passed to MarkToMarket.
func (l *Ledger) LastMark() float64 { return l.lastMark }

// Snapshot is a read-only copy of the ledger's queryable state,
// convenient for the simulation loop's per-tick snapshot builder and
// for the risk manager's notional-exposure rule.
type Snapshot struct {
	InitialCapital float64
	Cash           float64
	Position       int64
	CostBasis      float64
	AverageEntry   float64
	Realized       float64
	Unrealized     float64
	Total          float64
	Net            float64
	TotalFees      float64
	TotalRebates   float64
	LastMark       float64
}

// Snapshot returns a copy of the ledger's current state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		InitialCapital: l.initialCapital,
		Cash:           l.cash,
		Position:       l.position,
		CostBasis:      l.costBasis,
		AverageEntry:   l.AverageEntryPrice(),
		Realized:       l.realizedPnL,
		Unrealized:     l.unrealizedPnL,
		Total:          l.Total(),
		Net:            l.Net(),
		TotalFees:      l.totalFees,
		TotalRebates:   l.totalRebates,
		LastMark:       l.lastMark,
	}
}

func sign64(v int64) int64 {
	if v < 0 {
		return -1
	}
	return 1
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
