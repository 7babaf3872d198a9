package strategy

import (
	"testing"

	"github.com/dnldd/strategist/shared"
	"github.com/peterldowns/testy/assert"
)

func TestNotReadyStrategies(t *testing.T) {
	strategies := []*NotReady{
		NewPairsTrading(),
		NewArbitrage(),
		NewScalping(),
		NewForecast(),
	}
	names := []string{"pairstrading", "arbitrage", "scalping", "forecast"}

	portfolio, err := shared.NewPortfolio(1000, 1000, nil, 50, 0.1, 0.1)
	assert.NoError(t, err)
	history := testHistory(t, "AAPL", flatCloses(5, 42), shared.Day, 1)

	for idx := range strategies {
		strategy := strategies[idx]

		// Ensure placeholder strategies report themselves as not ready.
		assert.Equal(t, strategy.Name(), names[idx])
		assert.False(t, strategy.Ready())

		// Ensure evaluations decide hold unconditionally.
		eval, err := strategy.Evaluate(history, portfolio, &TriggerState{})
		assert.NoError(t, err)
		assert.Equal(t, eval.Signal, shared.Hold)
		assert.Equal(t, eval.Close, float64(42))

		// Ensure pair evaluations decide hold unconditionally.
		eval, err = strategy.EvaluatePair(history, history, portfolio, &TriggerState{})
		assert.NoError(t, err)
		assert.Equal(t, eval.Signal, shared.Hold)
	}

	// Ensure an empty history still decides hold.
	empty := &shared.PriceHistory{Ticker: "AAPL", IntervalType: shared.Day, Interval: 1}
	eval, err := strategies[0].Evaluate(empty, portfolio, &TriggerState{})
	assert.NoError(t, err)
	assert.Equal(t, eval.Signal, shared.Hold)
	assert.Equal(t, eval.Close, float64(0))
}
