// Package strategy defines the interface the simulation loop drives
// on each tick and the snapshot/decision types that cross that
// boundary. No concrete quoting formula lives here: heuristic and
// Avellaneda-Stoikov strategies are named in spec §1 as external
// collaborators out of scope for this module.
package strategy

import "time"

// OrderLevel mirrors matching.OrderLevel without importing the
// matching package, keeping the strategy boundary free of the
// engine's internal order representation (spec §9 "unique order
// ownership": the strategy never sees a resting *Order).
type OrderLevel struct {
	Price     float64
	Size      int64
	OrderID   uint64
	Timestamp time.Time
}

// Trade mirrors matching.Trade for the same reason.
type Trade struct {
	AggressorSide string
	Price         float64
	Size          int64
	TradeID       uint64
	Timestamp     time.Time
}

// Fill mirrors matching.FillEvent, restricted to the fields a
// strategy needs to recognize its own fills.
type Fill struct {
	RestingOrderID uint64
	Price          float64
	Quantity       int64
	RemainingQty   int64
	Timestamp      time.Time
}

// Snapshot bundles the market and position information handed to a
// strategy on each tick it is consulted, per spec §4.H step 6.
type Snapshot struct {
	Instrument  string
	BestBid     float64
	BestAsk     float64
	Mid         float64
	BidLevels   []OrderLevel
	AskLevels   []OrderLevel
	Trades      []Trade
	Position    int64
	MaxPosition int64
	Timestamp   time.Time
	Sequence    uint64
}

// QuoteDecision is the result of consulting a strategy: the prices
// and sizes it wants quoted this tick, or a signal to sit out.
// Spec §6.
type QuoteDecision struct {
	BidPrice    float64
	AskPrice    float64
	BidSize     int64
	AskSize     int64
	ShouldQuote bool
}

// ActiveOrder is the lightweight record a strategy keeps for an order
// it has resting in the book: enough to recognize its own fills and
// to reconstruct a cancel, never the engine's own *Order (spec §9).
type ActiveOrder struct {
	ID     uint64
	Side   string
	Price  float64
	Size   int64
	Status string
}

// Strategy is the interface the simulation loop drives. Implementors
// MAY keep internal state (e.g. rolling estimators) across calls but
// MUST be deterministic given the snapshot sequence. Spec §6.
type Strategy interface {
	Name() string
	ComputeQuotes(snapshot Snapshot) QuoteDecision
}
