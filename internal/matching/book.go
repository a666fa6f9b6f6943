package matching

import (
	"container/list"
	"sort"
	"time"
)

// priceLevel is a FIFO queue of orders resting at one price.
type priceLevel struct {
	price float64
	queue *list.List // of *Order
}

func newPriceLevel(price float64) *priceLevel {
	return &priceLevel{price: price, queue: list.New()}
}

func (pl *priceLevel) push(o *Order) {
	o.element = pl.queue.PushBack(o)
}

func (pl *priceLevel) remove(o *Order) {
	if el, ok := o.element.(*list.Element); ok && el != nil {
		pl.queue.Remove(el)
		o.element = nil
	}
}

func (pl *priceLevel) front() *Order {
	el := pl.queue.Front()
	if el == nil {
		return nil
	}
	return el.Value.(*Order)
}

func (pl *priceLevel) isEmpty() bool {
	return pl.queue.Len() == 0
}

// Book maintains the two ordered containers described in spec §4.B: a
// bid book sorted by price descending then insertion time ascending,
// an ask book sorted by price ascending then insertion time ascending.
// It is pure bookkeeping; it knows nothing of accounting or risk.
type Book struct {
	bidLevels map[float64]*priceLevel
	askLevels map[float64]*priceLevel
	bidPrices []float64 // descending
	askPrices []float64 // ascending
	orders    map[uint64]*Order
}

// NewBook creates an empty order book.
func NewBook() *Book {
	return &Book{
		bidLevels: make(map[float64]*priceLevel),
		askLevels: make(map[float64]*priceLevel),
		orders:    make(map[uint64]*Order),
	}
}

func (b *Book) levelsAndPrices(side Side) (map[float64]*priceLevel, []float64) {
	if side == Buy {
		return b.bidLevels, b.bidPrices
	}
	return b.askLevels, b.askPrices
}

func (b *Book) setPrices(side Side, prices []float64) {
	if side == Buy {
		b.bidPrices = prices
	} else {
		b.askPrices = prices
	}
}

// insertPrice inserts price into the side's price list, keeping bids
// descending and asks ascending, and returns the updated slice.
func insertPrice(prices []float64, price float64, descending bool) []float64 {
	i := sort.Search(len(prices), func(i int) bool {
		if descending {
			return prices[i] <= price
		}
		return prices[i] >= price
	})
	if i < len(prices) && prices[i] == price {
		return prices
	}
	prices = append(prices, 0)
	copy(prices[i+1:], prices[i:])
	prices[i] = price
	return prices
}

func removePrice(prices []float64, price float64) []float64 {
	for i, p := range prices {
		if p == price {
			return append(prices[:i], prices[i+1:]...)
		}
	}
	return prices
}

// AddOrder rejects non-positive price/quantity orders and otherwise
// admits the order to the book at the position implied by its
// price-time key. Spec §4.B add_order.
func (b *Book) AddOrder(o *Order) OrderStatus {
	if o.RemainingQty <= 0 || o.Price <= 0 {
		o.Status = StatusRejected
		return StatusRejected
	}

	o.Status = StatusAcknowledged
	levels, prices := b.levelsAndPrices(o.Side)
	level, ok := levels[o.Price]
	if !ok {
		level = newPriceLevel(o.Price)
		levels[o.Price] = level
		b.setPrices(o.Side, insertPrice(prices, o.Price, o.Side == Buy))
	}
	level.push(o)
	b.orders[o.ID] = o
	return StatusAcknowledged
}

// CancelOrder removes a resting order from its book, if present, and
// reports whether an order was erased. Spec §4.B cancel_order.
func (b *Book) CancelOrder(id uint64) bool {
	o, ok := b.orders[id]
	if !ok {
		return false
	}
	levels, _ := b.levelsAndPrices(o.Side)
	level := levels[o.Price]
	if level != nil {
		level.remove(o)
		if level.isEmpty() {
			delete(levels, o.Price)
			b.setPrices(o.Side, removePrice(b.pricesFor(o.Side), o.Price))
		}
	}
	o.Status = StatusCanceled
	delete(b.orders, id)
	return true
}

func (b *Book) pricesFor(side Side) []float64 {
	if side == Buy {
		return b.bidPrices
	}
	return b.askPrices
}

// MatchIncoming walks the opposite book from the best price, filling
// the aggressor against resting orders while both remaining quantity
// and price compatibility hold. Spec §4.B match_incoming.
func (b *Book) MatchIncoming(aggressorSide Side, limitPrice float64, qty int64, tradeID uint64, timestamp time.Time) []FillEvent {
	var fills []FillEvent
	opposite := aggressorSide.Opposite()
	remaining := qty

	for remaining > 0 {
		levels, prices := b.levelsAndPrices(opposite)
		if len(prices) == 0 {
			break
		}
		bestPrice := prices[0]
		if !priceCompatible(aggressorSide, limitPrice, bestPrice) {
			break
		}
		level := levels[bestPrice]
		resting := level.front()
		if resting == nil {
			// Defensive: an empty level should already have been pruned.
			delete(levels, bestPrice)
			b.setPrices(opposite, removePrice(prices, bestPrice))
			continue
		}

		fillQty := resting.RemainingQty
		if remaining < fillQty {
			fillQty = remaining
		}

		resting.RemainingQty -= fillQty
		resting.UpdatedAt = timestamp
		remaining -= fillQty

		fills = append(fills, FillEvent{
			RestingOrderID: resting.ID,
			TradeID:        tradeID,
			RestingSide:    resting.Side,
			Price:          resting.Price,
			Quantity:       fillQty,
			RemainingQty:   resting.RemainingQty,
			Timestamp:      timestamp,
		})

		if resting.RemainingQty == 0 {
			resting.Status = StatusFilled
			level.remove(resting)
			delete(b.orders, resting.ID)
			if level.isEmpty() {
				delete(levels, bestPrice)
				b.setPrices(opposite, removePrice(b.pricesFor(opposite), bestPrice))
			}
		} else {
			resting.Status = StatusPartiallyFilled
		}
	}

	return fills
}

func priceCompatible(aggressorSide Side, limitPrice, restingPrice float64) bool {
	if aggressorSide == Buy {
		return restingPrice <= limitPrice
	}
	return restingPrice >= limitPrice
}

// BestBid returns the best bid price and size, or (0, 0) if empty.
func (b *Book) BestBid() (price float64, size int64) {
	return b.best(Buy)
}

// BestAsk returns the best ask price and size, or (0, 0) if empty.
func (b *Book) BestAsk() (price float64, size int64) {
	return b.best(Sell)
}

func (b *Book) best(side Side) (float64, int64) {
	levels, prices := b.levelsAndPrices(side)
	if len(prices) == 0 {
		return 0, 0
	}
	level := levels[prices[0]]
	return prices[0], level.volume()
}

func (pl *priceLevel) volume() int64 {
	var v int64
	for el := pl.queue.Front(); el != nil; el = el.Next() {
		v += el.Value.(*Order).RemainingQty
	}
	return v
}

// Levels returns up to n OrderLevel snapshots for one side, best price
// first, one entry per resting order (not aggregated per price).
func (b *Book) Levels(side Side, n int) []OrderLevel {
	levels, prices := b.levelsAndPrices(side)
	out := make([]OrderLevel, 0, n)
	for _, p := range prices {
		level := levels[p]
		for el := level.queue.Front(); el != nil && len(out) < n; el = el.Next() {
			o := el.Value.(*Order)
			out = append(out, OrderLevel{Price: o.Price, Size: o.RemainingQty, OrderID: o.ID, Timestamp: o.CreatedAt})
		}
		if len(out) >= n {
			break
		}
	}
	return out
}

// Order looks up a resting order by id.
func (b *Book) Order(id uint64) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}
