// Package simulation implements spec component H: the Loop
// orchestrator that drives one tick of generator -> matching ->
// accounting -> risk -> strategy -> submission in strict order, per
// the single-threaded, single-owner core spec §5 mandates.
package simulation

import (
	"time"

	"go.uber.org/zap"

	"mmsim/internal/accounting"
	"mmsim/internal/eventlog"
	"mmsim/internal/generator"
	"mmsim/internal/matching"
	"mmsim/internal/perf"
	"mmsim/internal/risk"
	"mmsim/internal/strategy"
)

// Result summarizes a completed Run.
type Result struct {
	Ticks       int
	FinalState  risk.State
	Accounting  accounting.Snapshot
	Percentiles perf.Percentiles
	Throughput  float64
}

// Loop owns every component for one simulation run and drives them
// through exactly one tick at a time. Spec §5: all of this state is
// owned by exactly one run and never shared.
type Loop struct {
	gen      *generator.Generator
	book     *matching.Book
	ledger   *accounting.Ledger
	risk     *risk.Manager
	strategy strategy.Strategy
	recorder *perf.Recorder
	riskCfg  risk.Config
	logger   *zap.Logger

	active       map[uint64]strategy.ActiveOrder
	lastSequence uint64
	sawFirst     bool
	quoteCounter uint64
}

// New wires one simulation run's components together.
func New(gen *generator.Generator, book *matching.Book, ledger *accounting.Ledger, riskMgr *risk.Manager, strat strategy.Strategy, recorder *perf.Recorder, riskCfg risk.Config, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		gen:      gen,
		book:     book,
		ledger:   ledger,
		risk:     riskMgr,
		strategy: strat,
		recorder: recorder,
		riskCfg:  riskCfg,
		logger:   logger,
		active:   make(map[uint64]strategy.ActiveOrder),
	}
}

// Run drives up to iterations ticks, stopping early if the generator
// is in Replay mode and exhausts its log. Spec §7 "Replay exhaustion
// ... the loop exits cleanly".
func (l *Loop) Run(iterations int) Result {
	l.recorder.Start(time.Now())

	ticks := 0
	for i := 0; i < iterations; i++ {
		start := time.Now()
		stop := l.Tick()
		l.recorder.Record(time.Since(start))
		ticks++
		if stop {
			break
		}
	}

	return Result{
		Ticks:       ticks,
		FinalState:  l.risk.State(),
		Accounting:  l.ledger.Snapshot(),
		Percentiles: l.recorder.Percentiles(),
		Throughput:  l.recorder.Throughput(time.Now()),
	}
}

// Tick runs one iteration of spec §4.H's eight steps. It returns true
// when the caller should stop driving further ticks (replay
// exhaustion).
func (l *Loop) Tick() bool {
	// Step 1.
	event, err := l.gen.GenerateEvent()
	if err == generator.ErrReplayExhausted {
		return true
	}

	// Step 2.
	if l.sawFirst && event.Sequence != l.lastSequence+1 {
		l.logger.Warn("sequence gap", zap.Uint64("expected", l.lastSequence+1), zap.Uint64("got", event.Sequence))
	}
	l.lastSequence = event.Sequence
	l.sawFirst = true

	if len(event.BidLevels) == 0 || len(event.AskLevels) == 0 {
		l.logger.Warn("empty book side, skipping tick", zap.Uint64("sequence", event.Sequence))
		return false
	}

	// Step 3.
	for _, fill := range event.Fills {
		active, tracked := l.active[fill.RestingOrderID]
		if !tracked {
			continue
		}
		if err := l.ledger.OnFill(fill.RestingSide, fill.Price, fill.Quantity, true); err != nil {
			l.logger.Error("fill rejected by ledger", zap.Error(err))
			continue
		}
		if fill.RemainingQty == 0 {
			delete(l.active, fill.RestingOrderID)
		} else {
			active.Size = fill.RemainingQty
			l.active[fill.RestingOrderID] = active
		}
	}

	// Step 4.
	mid := (event.BestBidPrice + event.BestAskPrice) / 2
	l.ledger.MarkToMarket(mid)

	// Step 5.
	l.risk.Evaluate(l.ledger, risk.MarketView{
		BestBid:   event.BestBidPrice,
		BestAsk:   event.BestAskPrice,
		Timestamp: event.Timestamp,
	}, mid)

	if !l.risk.IsQuotingAllowed() {
		l.cancelAll(event.Timestamp)
		return false
	}

	// Step 6.
	snapshot := l.buildSnapshot(event, mid)
	decision := l.strategy.ComputeQuotes(snapshot)
	if !decision.ShouldQuote {
		return false
	}

	// Step 7.
	decision.BidSize = clamp(decision.BidSize, l.riskCfg.MinQuoteSize, l.riskCfg.MaxQuoteSize)
	decision.AskSize = clamp(decision.AskSize, l.riskCfg.MinQuoteSize, l.riskCfg.MaxQuoteSize)
	l.cancelAll(event.Timestamp)

	// Step 8.
	l.submit(matching.Buy, decision.BidPrice, decision.BidSize, event.Timestamp)
	l.submit(matching.Sell, decision.AskPrice, decision.AskSize, event.Timestamp)

	return false
}

func (l *Loop) buildSnapshot(event eventlog.MarketDataEvent, mid float64) strategy.Snapshot {
	return strategy.Snapshot{
		Instrument:  event.Instrument,
		BestBid:     event.BestBidPrice,
		BestAsk:     event.BestAskPrice,
		Mid:         mid,
		BidLevels:   toStrategyLevels(event.BidLevels),
		AskLevels:   toStrategyLevels(event.AskLevels),
		Trades:      toStrategyTrades(event.Trades),
		Position:    l.ledger.Position(),
		MaxPosition: l.riskCfg.MaxNetPosition,
		Timestamp:   event.Timestamp,
		Sequence:    event.Sequence,
	}
}

func (l *Loop) cancelAll(ts time.Time) {
	for id := range l.active {
		l.book.CancelOrder(id)
		l.risk.RecordCancel(ts)
		delete(l.active, id)
	}
}

func (l *Loop) submit(side matching.Side, price float64, size int64, ts time.Time) {
	l.quoteCounter++
	id := matching.MakeID(matching.TagStrategy, l.quoteCounter)
	order := &matching.Order{
		ID:           id,
		Side:         side,
		Price:        price,
		OriginalQty:  size,
		RemainingQty: size,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	status := l.book.AddOrder(order)
	if status != matching.StatusAcknowledged {
		return
	}

	l.risk.RecordQuote(ts)
	l.active[id] = strategy.ActiveOrder{
		ID:     id,
		Side:   side.String(),
		Price:  price,
		Size:   size,
		Status: status.String(),
	}
}

func clamp(v, min, max int64) int64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func toStrategyLevels(levels []matching.OrderLevel) []strategy.OrderLevel {
	out := make([]strategy.OrderLevel, len(levels))
	for i, l := range levels {
		out[i] = strategy.OrderLevel{Price: l.Price, Size: l.Size, OrderID: l.OrderID, Timestamp: l.Timestamp}
	}
	return out
}

func toStrategyTrades(trades []matching.Trade) []strategy.Trade {
	out := make([]strategy.Trade, len(trades))
	for i, t := range trades {
		out[i] = strategy.Trade{AggressorSide: t.AggressorSide.String(), Price: t.Price, Size: t.Size, TradeID: t.TradeID, Timestamp: t.Timestamp}
	}
	return out
}
