package strategy

// FixedQuoteStrategy is a deterministic strategy that always quotes a
// fixed offset and size around the snapshot mid price. It carries no
// heuristic or inventory-skewing logic; it exists only so this
// module's own tests have a Strategy to drive without depending on
// the out-of-scope quoting formulas.
type FixedQuoteStrategy struct {
	Offset float64
	Size   int64
}

// NewFixedQuoteStrategy creates a strategy quoting offset away from
// the mid on both sides, at the given size.
func NewFixedQuoteStrategy(offset float64, size int64) *FixedQuoteStrategy {
	return &FixedQuoteStrategy{Offset: offset, Size: size}
}

func (s *FixedQuoteStrategy) Name() string { return "fixed-quote" }

// ComputeQuotes always quotes: bid at mid-offset, ask at mid+offset,
// both at the configured size.
func (s *FixedQuoteStrategy) ComputeQuotes(snapshot Snapshot) QuoteDecision {
	return QuoteDecision{
		BidPrice:    snapshot.Mid - s.Offset,
		AskPrice:    snapshot.Mid + s.Offset,
		BidSize:     s.Size,
		AskSize:     s.Size,
		ShouldQuote: true,
	}
}
