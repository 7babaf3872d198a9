package strategy

import (
	"github.com/dnldd/strategist/shared"
)

// NotReady represents a strategy whose decision procedure is not yet
// implemented. It always decides hold so callers degrade safely, and
// reports itself as not ready so coordinators can flag it.
type NotReady struct {
	name string
}

// Ensure not ready strategies implement the Strategy interface.
var _ Strategy = (*NotReady)(nil)

// NewPairsTrading initializes the pairs trading strategy placeholder.
func NewPairsTrading() *NotReady {
	return &NotReady{name: "pairstrading"}
}

// NewArbitrage initializes the arbitrage strategy placeholder.
func NewArbitrage() *NotReady {
	return &NotReady{name: "arbitrage"}
}

// NewScalping initializes the scalping strategy placeholder.
func NewScalping() *NotReady {
	return &NotReady{name: "scalping"}
}

// NewForecast initializes the forecast strategy placeholder.
func NewForecast() *NotReady {
	return &NotReady{name: "forecast"}
}

// Name returns the strategy name.
func (s *NotReady) Name() string {
	return s.name
}

// Ready reports whether the strategy has an implemented decision procedure.
func (s *NotReady) Ready() bool {
	return false
}

// Evaluate decides hold unconditionally.
func (s *NotReady) Evaluate(history *shared.PriceHistory, portfolio *shared.Portfolio,
	state *TriggerState) (*Evaluation, error) {
	var close float64
	if latest := history.Last(); latest != nil {
		close = latest.Close
	}

	return holdEvaluation(close), nil
}

// EvaluatePair decides hold unconditionally for an instrument pair.
func (s *NotReady) EvaluatePair(first *shared.PriceHistory, second *shared.PriceHistory,
	portfolio *shared.Portfolio, state *TriggerState) (*Evaluation, error) {
	var close float64
	if latest := first.Last(); latest != nil {
		close = latest.Close
	}

	return holdEvaluation(close), nil
}
