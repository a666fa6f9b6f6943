// Package eventlog implements spec component I: the line-oriented
// event codec and the FNV-1a fingerprint accumulator used to verify
// determinism across a Simulate/Replay round trip. The pipe/semicolon/
// comma line grammar spec §4.I specifies gives full control over field
// ordering and separators, which a generic json.Marshal encoding
// cannot guarantee on a byte-exact replay.
package eventlog

import (
	"time"

	"mmsim/internal/matching"
)

// MarketDataEvent is one tick's worth of synthetic market data, per
// spec §3. Levels, trades and fills reuse the matching package's
// value types directly rather than mirroring them, since the
// generator already depends on matching to produce them.
type MarketDataEvent struct {
	Sequence     uint64
	Instrument   string
	BestBidPrice float64
	BestBidSize  int64
	BestAskPrice float64
	BestAskSize  int64
	BidLevels    []matching.OrderLevel // descending price
	AskLevels    []matching.OrderLevel // ascending price
	Trades       []matching.Trade
	Fills        []matching.FillEvent
	Timestamp    time.Time
}
