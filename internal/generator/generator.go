package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"mmsim/internal/clock"
	"mmsim/internal/eventlog"
	"mmsim/internal/matching"
)

// ErrReplayExhausted is returned once a Replay-mode generator has
// returned every event in its loaded log. Spec §7 "Replay exhaustion".
var ErrReplayExhausted = errors.New("generator: replay exhausted")

// EventSink receives each generated event, e.g. an *eventlog.Writer.
// Kept as a narrow interface so tests can substitute an in-memory
// sink without touching the filesystem.
type EventSink interface {
	Append(eventlog.MarketDataEvent) error
}

// Generator implements spec component G. Exactly one of the RNG-driven
// Simulate-mode state or the loaded Replay-mode vector is populated,
// selected once at construction by cfg.Mode.
type Generator struct {
	cfg    Config
	logger *zap.Logger
	sink   EventSink

	rng        *rand.Rand
	clk        *clock.Clock
	book       *matching.Book
	bidLevels  []levelState
	askLevels  []levelState
	mid        float64
	sequence   uint64
	tradeSeq   uint64

	replay     []eventlog.MarketDataEvent
	replayNext int
}

// NewSimulateGenerator constructs a Simulate-mode generator seeded
// from cfg.Seed, synthesizing trades against book (the shared
// strategy order book owned by the simulation loop). A nil logger or
// sink is fine; logging is a no-op and events are simply not persisted.
func NewSimulateGenerator(cfg Config, book *matching.Book, sink EventSink, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Levels <= 0 {
		cfg.Levels = 5
	}
	g := &Generator{
		cfg:       cfg,
		logger:    logger,
		sink:      sink,
		rng:       rand.New(rand.NewSource(int64(cfg.Seed))),
		clk:       clock.New(time.UnixMilli(0).UTC(), time.Millisecond),
		book:      book,
		bidLevels: defaultLevels(cfg.Levels),
		askLevels: defaultLevels(cfg.Levels),
		mid:       cfg.InitialMid,
	}
	g.anchorLevels()
	return g
}

// NewReplayGenerator constructs a Replay-mode generator over a
// pre-loaded, non-empty event vector (load it with eventlog.Load).
func NewReplayGenerator(events []eventlog.MarketDataEvent, logger *zap.Logger) (*Generator, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("generator: replay log has no events")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:    Config{Mode: Replay},
		logger: logger,
		replay: events,
	}, nil
}

// Mode returns Simulate or Replay.
func (g *Generator) Mode() Mode { return g.cfg.Mode }

// GenerateEvent produces the next market-data event. In Simulate mode
// this advances the RNG and the synthetic book; in Replay mode it
// returns the next recorded event verbatim, or ErrReplayExhausted
// once the log is consumed. Spec §4.G.
func (g *Generator) GenerateEvent() (eventlog.MarketDataEvent, error) {
	if g.cfg.Mode == Replay {
		return g.nextReplay()
	}
	return g.nextSimulated()
}

func (g *Generator) nextReplay() (eventlog.MarketDataEvent, error) {
	if g.replayNext >= len(g.replay) {
		return eventlog.MarketDataEvent{}, ErrReplayExhausted
	}
	e := g.replay[g.replayNext]
	g.replayNext++
	return e, nil
}

func (g *Generator) nextSimulated() (eventlog.MarketDataEvent, error) {
	// Step 1: Gaussian mid move, clamped to a positive floor.
	g.mid += g.rng.NormFloat64() * g.cfg.Volatility
	if g.mid < 0.01 {
		g.mid = 0.01
	}

	// Step 2: re-anchor synthetic levels around the new mid.
	g.anchorLevels()

	// Step 4 (timestamp/sequence advanced early so the trade
	// synthesized in step 3 and the event constructed below share
	// one consistent stamp).
	g.sequence++
	ts := g.clk.Tick()

	// Step 3: optionally synthesize a trade against the real book.
	var trades []matching.Trade
	var fills []matching.FillEvent
	if g.rng.Float64() < 0.2 {
		trade, tradeFills := g.synthesizeTrade(ts)
		trades = append(trades, trade)
		fills = append(fills, tradeFills...)
	}

	bestBidPrice, bestBidSize := topOf(g.bidLevels)
	bestAskPrice, bestAskSize := topOf(g.askLevels)

	event := eventlog.MarketDataEvent{
		Sequence:     g.sequence,
		Instrument:   g.cfg.Instrument,
		BestBidPrice: bestBidPrice,
		BestBidSize:  bestBidSize,
		BestAskPrice: bestAskPrice,
		BestAskSize:  bestAskSize,
		BidLevels:    toOrderLevels(g.bidLevels, ts),
		AskLevels:    toOrderLevels(g.askLevels, ts),
		Trades:       trades,
		Fills:        fills,
		Timestamp:    ts,
	}

	// Step 5: optional simulated latency, strictly after the
	// timestamp and RNG draws above, so it can never perturb either.
	if g.cfg.LatencyMs > 0 {
		time.Sleep(time.Duration(g.cfg.LatencyMs) * time.Millisecond)
	}

	// Step 6: optional persistence.
	if g.sink != nil {
		if err := g.sink.Append(event); err != nil {
			g.logger.Error("event log append failed", zap.Error(err))
		}
	}

	return event, nil
}

// anchorLevels re-centers the synthetic book levels around g.mid,
// per spec §4.G step 2: level i (1-based) sits at mid ∓ i*spread/2
// plus small uniform noise; sizes jitter by a small integer delta
// with a floor of 1.
func (g *Generator) anchorLevels() {
	half := g.cfg.BaseSpread / 2
	for i := range g.bidLevels {
		noise := (g.rng.Float64() - 0.5) * half * 0.1
		g.bidLevels[i].price = g.mid - float64(i+1)*half + noise
		g.bidLevels[i].size = jitterSize(g.bidLevels[i].size, g.rng)
	}
	for i := range g.askLevels {
		noise := (g.rng.Float64() - 0.5) * half * 0.1
		g.askLevels[i].price = g.mid + float64(i+1)*half + noise
		g.askLevels[i].size = jitterSize(g.askLevels[i].size, g.rng)
	}
	sort.Slice(g.bidLevels, func(i, j int) bool { return g.bidLevels[i].price > g.bidLevels[j].price })
	sort.Slice(g.askLevels, func(i, j int) bool { return g.askLevels[i].price < g.askLevels[j].price })
}

func jitterSize(size int64, rng *rand.Rand) int64 {
	delta := int64(rng.Intn(5)) - 2 // [-2, 2]
	size += delta
	if size < 1 {
		size = 1
	}
	return size
}

// synthesizeTrade implements spec §4.G step 3: fair-coin aggressor
// side, uniform size on [1,20], price at the best opposite price,
// routed through the shared book's match_incoming.
func (g *Generator) synthesizeTrade(ts time.Time) (matching.Trade, []matching.FillEvent) {
	side := matching.Buy
	if g.rng.Intn(2) == 1 {
		side = matching.Sell
	}
	size := int64(g.rng.Intn(20) + 1)

	var price float64
	if side == matching.Buy {
		price, _ = topOf(g.askLevels)
	} else {
		price, _ = topOf(g.bidLevels)
	}

	g.tradeSeq++
	tradeID := matching.MakeID(matching.TagTrade, g.tradeSeq)

	fills := g.book.MatchIncoming(side, price, size, tradeID, ts)

	return matching.Trade{
		AggressorSide: side,
		Price:         price,
		Size:          size,
		TradeID:       tradeID,
		Timestamp:     ts,
	}, fills
}

func topOf(levels []levelState) (float64, int64) {
	if len(levels) == 0 {
		return 0, 0
	}
	return levels[0].price, levels[0].size
}

func toOrderLevels(levels []levelState, ts time.Time) []matching.OrderLevel {
	out := make([]matching.OrderLevel, len(levels))
	for i, l := range levels {
		out[i] = matching.OrderLevel{Price: l.price, Size: l.size, Timestamp: ts}
	}
	return out
}
