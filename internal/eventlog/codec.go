package eventlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mmsim/internal/matching"
)

// ErrMalformedLine is returned by Decode when a line does not have
// the expected field count or a field fails to parse.
var ErrMalformedLine = errors.New("eventlog: malformed line")

const (
	fieldSep = "|"
	listSep  = ";"
	itemSep  = ","
)

// Codec encodes and decodes one MarketDataEvent per line, per spec
// §4.I's pipe/semicolon/comma grammar. It carries no state.
type Codec struct{}

// NewCodec returns a Codec.
func NewCodec() *Codec { return &Codec{} }

// Encode renders one event as a single line, without a trailing
// newline. Floating-point fields use strconv's shortest round-trip
// representation, which decoding reverses exactly.
func (c *Codec) Encode(e MarketDataEvent) string {
	fields := []string{
		strconv.FormatUint(e.Sequence, 10),
		e.Instrument,
		formatFloat(e.BestBidPrice),
		strconv.FormatInt(e.BestBidSize, 10),
		formatFloat(e.BestAskPrice),
		strconv.FormatInt(e.BestAskSize, 10),
		strconv.FormatInt(e.Timestamp.UnixMilli(), 10),
		encodeLevels(e.BidLevels),
		encodeLevels(e.AskLevels),
		encodeTrades(e.Trades),
		encodeFills(e.Fills),
	}
	return strings.Join(fields, fieldSep)
}

// Decode parses one line produced by Encode back into a
// MarketDataEvent.
func (c *Codec) Decode(line string) (MarketDataEvent, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 11 {
		return MarketDataEvent{}, fmt.Errorf("%w: expected 11 fields, got %d", ErrMalformedLine, len(fields))
	}

	seq, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: sequence: %v", ErrMalformedLine, err)
	}
	bestBidPrice, err := parseFloat(fields[2])
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: best bid price: %v", ErrMalformedLine, err)
	}
	bestBidSize, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: best bid size: %v", ErrMalformedLine, err)
	}
	bestAskPrice, err := parseFloat(fields[4])
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: best ask price: %v", ErrMalformedLine, err)
	}
	bestAskSize, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: best ask size: %v", ErrMalformedLine, err)
	}
	tsMs, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedLine, err)
	}

	bidLevels, err := decodeLevels(fields[7])
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: bid levels: %v", ErrMalformedLine, err)
	}
	askLevels, err := decodeLevels(fields[8])
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: ask levels: %v", ErrMalformedLine, err)
	}
	trades, err := decodeTrades(fields[9])
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: trades: %v", ErrMalformedLine, err)
	}
	fills, err := decodeFills(fields[10])
	if err != nil {
		return MarketDataEvent{}, fmt.Errorf("%w: fills: %v", ErrMalformedLine, err)
	}

	return MarketDataEvent{
		Sequence:     seq,
		Instrument:   fields[1],
		BestBidPrice: bestBidPrice,
		BestBidSize:  bestBidSize,
		BestAskPrice: bestAskPrice,
		BestAskSize:  bestAskSize,
		BidLevels:    bidLevels,
		AskLevels:    askLevels,
		Trades:       trades,
		Fills:        fills,
		Timestamp:    time.UnixMilli(tsMs).UTC(),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func encodeLevels(levels []matching.OrderLevel) string {
	items := make([]string, len(levels))
	for i, l := range levels {
		items[i] = strings.Join([]string{
			formatFloat(l.Price),
			strconv.FormatInt(l.Size, 10),
			strconv.FormatUint(l.OrderID, 10),
			strconv.FormatInt(l.Timestamp.UnixMilli(), 10),
		}, itemSep)
	}
	return strings.Join(items, listSep)
}

func decodeLevels(s string) ([]matching.OrderLevel, error) {
	if s == "" {
		return nil, nil
	}
	items := strings.Split(s, listSep)
	out := make([]matching.OrderLevel, len(items))
	for i, item := range items {
		parts := strings.Split(item, itemSep)
		if len(parts) != 4 {
			return nil, fmt.Errorf("level entry %q: expected 4 fields", item)
		}
		price, err := parseFloat(parts[0])
		if err != nil {
			return nil, err
		}
		size, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, err
		}
		id, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return nil, err
		}
		tsMs, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = matching.OrderLevel{Price: price, Size: size, OrderID: id, Timestamp: time.UnixMilli(tsMs).UTC()}
	}
	return out, nil
}

func encodeTrades(trades []matching.Trade) string {
	items := make([]string, len(trades))
	for i, tr := range trades {
		items[i] = strings.Join([]string{
			tr.AggressorSide.String(),
			formatFloat(tr.Price),
			strconv.FormatInt(tr.Size, 10),
			strconv.FormatUint(tr.TradeID, 10),
			strconv.FormatInt(tr.Timestamp.UnixMilli(), 10),
		}, itemSep)
	}
	return strings.Join(items, listSep)
}

func decodeTrades(s string) ([]matching.Trade, error) {
	if s == "" {
		return nil, nil
	}
	items := strings.Split(s, listSep)
	out := make([]matching.Trade, len(items))
	for i, item := range items {
		parts := strings.Split(item, itemSep)
		if len(parts) != 5 {
			return nil, fmt.Errorf("trade entry %q: expected 5 fields", item)
		}
		side, err := matching.ParseSide(parts[0])
		if err != nil {
			return nil, err
		}
		price, err := parseFloat(parts[1])
		if err != nil {
			return nil, err
		}
		size, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, err
		}
		tradeID, err := strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			return nil, err
		}
		tsMs, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = matching.Trade{AggressorSide: side, Price: price, Size: size, TradeID: tradeID, Timestamp: time.UnixMilli(tsMs).UTC()}
	}
	return out, nil
}

func encodeFills(fills []matching.FillEvent) string {
	items := make([]string, len(fills))
	for i, f := range fills {
		items[i] = strings.Join([]string{
			strconv.FormatUint(f.RestingOrderID, 10),
			strconv.FormatUint(f.TradeID, 10),
			f.RestingSide.String(),
			formatFloat(f.Price),
			strconv.FormatInt(f.Quantity, 10),
			strconv.FormatInt(f.RemainingQty, 10),
			strconv.FormatInt(f.Timestamp.UnixMilli(), 10),
		}, itemSep)
	}
	return strings.Join(items, listSep)
}

func decodeFills(s string) ([]matching.FillEvent, error) {
	if s == "" {
		return nil, nil
	}
	items := strings.Split(s, listSep)
	out := make([]matching.FillEvent, len(items))
	for i, item := range items {
		parts := strings.Split(item, itemSep)
		if len(parts) != 7 {
			return nil, fmt.Errorf("fill entry %q: expected 7 fields", item)
		}
		restingID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, err
		}
		tradeID, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, err
		}
		side, err := matching.ParseSide(parts[2])
		if err != nil {
			return nil, err
		}
		price, err := parseFloat(parts[3])
		if err != nil {
			return nil, err
		}
		qty, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return nil, err
		}
		remaining, err := strconv.ParseInt(parts[5], 10, 64)
		if err != nil {
			return nil, err
		}
		tsMs, err := strconv.ParseInt(parts[6], 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = matching.FillEvent{
			RestingOrderID: restingID,
			TradeID:        tradeID,
			RestingSide:    side,
			Price:          price,
			Quantity:       qty,
			RemainingQty:   remaining,
			Timestamp:      time.UnixMilli(tsMs).UTC(),
		}
	}
	return out, nil
}
