package risk

import (
	"container/list"
	"time"

	"go.uber.org/zap"
)

// Manager evaluates the seven risk rules on every tick and drives the
// risk state machine. Spec §4.F.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	state State

	lastResults     [7]RuleResult
	hwm             float64
	hwmSeeded       bool
	drawdown        float64
	breachedAt      time.Time
	hasBreachedAt   bool
	lastEventTime   time.Time
	hasLastEventTime bool

	quoteTimes  *list.List // of time.Time
	cancelTimes *list.List // of time.Time
}

// NewManager creates a risk manager in the Normal state. A nil logger
// defaults to a no-op logger.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:         cfg,
		logger:      logger,
		state:       Normal,
		quoteTimes:  list.New(),
		cancelTimes: list.New(),
	}
}

// State returns the current risk state.
func (m *Manager) State() State { return m.state }

// LastResults returns the seven rule results from the most recent
// evaluation.
func (m *Manager) LastResults() [7]RuleResult { return m.lastResults }

// IsQuotingAllowed reports whether the current state permits
// quoting: Normal or Warning. Spec §4.F.
func (m *Manager) IsQuotingAllowed() bool {
	return m.state == Normal || m.state == Warning
}

// RecordQuote appends ts to the quote-rate sliding window.
func (m *Manager) RecordQuote(ts time.Time) {
	m.quoteTimes.PushBack(ts)
}

// RecordCancel appends ts to the cancel-rate sliding window.
func (m *Manager) RecordCancel(ts time.Time) {
	m.cancelTimes.PushBack(ts)
}

// EngageKillSwitch forces the state to KillSwitch unconditionally.
func (m *Manager) EngageKillSwitch() {
	if m.state != KillSwitch {
		m.logger.Warn("kill switch engaged", zap.String("previous_state", m.state.String()))
	}
	m.state = KillSwitch
}

// ResetKillSwitch is a no-op unless the state is currently
// KillSwitch; then it transitions to Normal if the most recent rule
// results are all Normal, else to Breached. Spec §4.F.
func (m *Manager) ResetKillSwitch() {
	if m.state != KillSwitch {
		return
	}

	allNormal := true
	for _, r := range m.lastResults {
		if r.Level != Normal {
			allNormal = false
			break
		}
	}

	if allNormal {
		m.state = Normal
		m.hasBreachedAt = false
	} else {
		m.state = Breached
		m.hasBreachedAt = false // re-established on the next Evaluate
	}
	m.logger.Info("kill switch reset", zap.String("new_state", m.state.String()))
}

// Evaluate runs the seven rules in fixed order against the given
// account and market views, aggregates the result, and advances the
// state machine. Spec §4.F.
func (m *Manager) Evaluate(acct AccountView, market MarketView, mid float64) [7]RuleResult {
	now := market.Timestamp

	results := [7]RuleResult{
		m.evalMaxNetPosition(acct),
		m.evalMaxNotionalExposure(acct, mid),
		m.evalMaxDrawdown(acct),
		m.evalMaxQuoteRate(now),
		m.evalMaxCancelRate(now),
		m.evalStaleMarketData(now),
		m.evalMaxQuoteSpread(market),
	}
	m.lastResults = results

	aggregated := Normal
	for _, r := range results {
		if r.Level > aggregated {
			aggregated = r.Level
		}
	}

	m.transition(aggregated, now)
	return results
}

func (m *Manager) transition(aggregated State, now time.Time) {
	switch m.state {
	case KillSwitch:
		// Only an explicit reset can leave KillSwitch.
		return
	case Breached:
		if !m.hasBreachedAt {
			// Re-established after an explicit reset landed back on
			// Breached (spec: "breach timestamp re-established on
			// the next evaluate").
			m.breachedAt = now
			m.hasBreachedAt = true
		}
		if aggregated == Normal && now.Sub(m.breachedAt) >= cooldownDuration(m.cfg) {
			m.state = Normal
			m.hasBreachedAt = false
		}
		// Otherwise stays Breached regardless of the new aggregated level.
	default: // Normal, Warning
		if aggregated == Breached && m.state != Breached {
			m.breachedAt = now
			m.hasBreachedAt = true
			m.logger.Warn("risk state breached", zap.Time("at", now))
		}
		m.state = aggregated
	}
}

func cooldownDuration(cfg Config) time.Duration {
	return time.Duration(cfg.CooldownSeconds * float64(time.Second))
}

func levelFor(current, limit, warningPct float64) State {
	if limit <= 0 {
		if current > 0 {
			return Breached
		}
		return Normal
	}
	ratio := current / limit
	switch {
	case ratio >= 1:
		return Breached
	case ratio >= warningPct:
		return Warning
	default:
		return Normal
	}
}

func (m *Manager) evalMaxNetPosition(acct AccountView) RuleResult {
	current := absFloat(float64(acct.Position()))
	limit := float64(m.cfg.MaxNetPosition)
	return RuleResult{
		Rule:    RuleMaxNetPosition,
		Level:   levelFor(current, limit, m.cfg.WarningThresholdPct),
		Current: current,
		Limit:   limit,
		Tag:     "max_net_position",
	}
}

func (m *Manager) evalMaxNotionalExposure(acct AccountView, mid float64) RuleResult {
	current := acct.GrossExposure(mid)
	limit := m.cfg.MaxNotionalExposure
	return RuleResult{
		Rule:    RuleMaxNotionalExposure,
		Level:   levelFor(current, limit, m.cfg.WarningThresholdPct),
		Current: current,
		Limit:   limit,
		Tag:     "max_notional_exposure",
	}
}

func (m *Manager) evalMaxDrawdown(acct AccountView) RuleResult {
	net := acct.Net()
	if !m.hwmSeeded {
		m.hwm = net
		m.hwmSeeded = true
	} else if net > m.hwm {
		m.hwm = net
	}
	m.drawdown = m.hwm - net

	limit := m.cfg.MaxDrawdown
	return RuleResult{
		Rule:    RuleMaxDrawdown,
		Level:   levelFor(m.drawdown, limit, m.cfg.WarningThresholdPct),
		Current: m.drawdown,
		Limit:   limit,
		Tag:     "max_drawdown",
	}
}

func (m *Manager) evalMaxQuoteRate(now time.Time) RuleResult {
	expire(m.quoteTimes, now, m.cfg.RateWindow)
	rate := rateOf(m.quoteTimes, m.cfg.RateWindow)
	return RuleResult{
		Rule:    RuleMaxQuoteRate,
		Level:   levelFor(rate, m.cfg.MaxQuotesPerSecond, m.cfg.WarningThresholdPct),
		Current: rate,
		Limit:   m.cfg.MaxQuotesPerSecond,
		Tag:     "max_quote_rate",
	}
}

func (m *Manager) evalMaxCancelRate(now time.Time) RuleResult {
	expire(m.cancelTimes, now, m.cfg.RateWindow)
	rate := rateOf(m.cancelTimes, m.cfg.RateWindow)
	return RuleResult{
		Rule:    RuleMaxCancelRate,
		Level:   levelFor(rate, m.cfg.MaxCancelsPerSecond, m.cfg.WarningThresholdPct),
		Current: rate,
		Limit:   m.cfg.MaxCancelsPerSecond,
		Tag:     "max_cancel_rate",
	}
}

func (m *Manager) evalStaleMarketData(now time.Time) RuleResult {
	if !m.hasLastEventTime {
		m.lastEventTime = now
		m.hasLastEventTime = true
		return RuleResult{
			Rule:  RuleStaleMarketData,
			Level: Normal,
			Limit: float64(m.cfg.MaxStaleDataMs),
			Tag:   "stale_market_data",
		}
	}

	gapMs := float64(now.Sub(m.lastEventTime).Milliseconds())
	m.lastEventTime = now
	return RuleResult{
		Rule:    RuleStaleMarketData,
		Level:   levelFor(gapMs, float64(m.cfg.MaxStaleDataMs), m.cfg.WarningThresholdPct),
		Current: gapMs,
		Limit:   float64(m.cfg.MaxStaleDataMs),
		Tag:     "stale_market_data",
	}
}

func (m *Manager) evalMaxQuoteSpread(market MarketView) RuleResult {
	current := market.BestAsk - market.BestBid
	return RuleResult{
		Rule:    RuleMaxQuoteSpread,
		Level:   levelFor(current, m.cfg.MaxQuoteSpread, m.cfg.WarningThresholdPct),
		Current: current,
		Limit:   m.cfg.MaxQuoteSpread,
		Tag:     "max_quote_spread",
	}
}

// expire drops entries older than now-window from the front of the
// deque, the same push-back/pop-front technique spec §9 asks for.
func expire(deque *list.List, now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	for {
		front := deque.Front()
		if front == nil {
			return
		}
		if front.Value.(time.Time).Before(cutoff) {
			deque.Remove(front)
			continue
		}
		return
	}
}

func rateOf(deque *list.List, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(deque.Len()) / window.Seconds()
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
