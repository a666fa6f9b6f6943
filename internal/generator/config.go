// Package generator implements spec component G: deterministic,
// seeded Simulate-mode book evolution and trade synthesis, and
// Replay-mode streaming from a previously recorded event log. A
// Generator owns either a live RNG-driven book or a loaded replay
// vector, never both.
package generator

// Mode selects whether a Generator produces events from a seeded RNG
// or replays them from a previously recorded log. Spec §3
// "SimulationMode".
type Mode int

const (
	Simulate Mode = iota
	Replay
)

func (m Mode) String() string {
	if m == Simulate {
		return "Simulate"
	}
	return "Replay"
}

// Config pins everything a Simulate-mode generator needs to behave
// deterministically under a seed. Spec §4.G / §6.
type Config struct {
	Seed       uint32
	Instrument string
	InitialMid float64
	BaseSpread float64
	Volatility float64
	Levels     int
	LatencyMs  int64
	Mode       Mode
	ReplayPath string
}

// DefaultConfig returns a conservative Simulate-mode configuration.
func DefaultConfig() Config {
	return Config{
		Seed:       1,
		Instrument: "SIM",
		InitialMid: 100,
		BaseSpread: 0.10,
		Volatility: 0.05,
		Levels:     5,
		LatencyMs:  0,
		Mode:       Simulate,
	}
}

// levelState is one synthetic background book level the generator
// maintains independently of the strategy's resting orders in the
// shared matching.Book; it exists purely to populate market-data
// bid/ask depth, per spec §4.G step 2.
type levelState struct {
	price float64
	size  int64
}

func defaultLevels(n int) []levelState {
	out := make([]levelState, n)
	for i := range out {
		out[i] = levelState{size: 10}
	}
	return out
}
