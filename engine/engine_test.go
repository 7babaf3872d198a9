package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dnldd/strategist/shared"
	"github.com/dnldd/strategist/strategy"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"
)

// stubStrategy is a scriptable strategy for exercising the engine. Each
// ticker can be given a decision, a delay, an error or a panic.
type stubStrategy struct {
	signals map[string]shared.TradeSignal
	zscores map[string]float64
	delays  map[string]time.Duration
	errs    map[string]error
	panics  map[string]bool
	ready   bool
}

var _ strategy.Strategy = (*stubStrategy)(nil)

func (s *stubStrategy) Name() string {
	return "stub"
}

func (s *stubStrategy) Ready() bool {
	return s.ready
}

func (s *stubStrategy) Evaluate(history *shared.PriceHistory, portfolio *shared.Portfolio,
	state *strategy.TriggerState) (*strategy.Evaluation, error) {
	if delay, ok := s.delays[history.Ticker]; ok {
		time.Sleep(delay)
	}
	if s.panics[history.Ticker] {
		panic("scripted panic")
	}
	if err, ok := s.errs[history.Ticker]; ok {
		return nil, err
	}

	return &strategy.Evaluation{
		Signal: s.signals[history.Ticker],
		Close:  history.Last().Close,
		ZScore: s.zscores[history.Ticker],
	}, nil
}

// stubHistory creates a single candle history for the provided ticker.
func stubHistory(ticker string, date time.Time) *shared.PriceHistory {
	return &shared.PriceHistory{
		Ticker: ticker,
		Candles: []shared.Candlestick{
			{Open: 100, Low: 99, High: 101, Close: 100, Volume: 1000, Date: date},
		},
		IntervalType: shared.Day,
		Interval:     1,
	}
}

func newEngine(t *testing.T, maxWorkers int, timeout time.Duration) *Engine {
	t.Helper()

	eng, err := NewEngine(&EngineConfig{
		MaxWorkers:  maxWorkers,
		TaskTimeout: timeout,
		Triggers:    strategy.NewTriggerStore(&strategy.TriggerStoreConfig{CountLimit: 5}),
		Logger:      zerolog.Nop(),
	})
	assert.NoError(t, err)

	return eng
}

func TestNewEngine(t *testing.T) {
	// Ensure a nil trigger store errors on creation.
	eng, err := NewEngine(&EngineConfig{})
	assert.Error(t, err)
	assert.Nil(t, eng)

	// Ensure missing limits fall back to defaults.
	eng, err = NewEngine(&EngineConfig{
		Triggers: strategy.NewTriggerStore(&strategy.TriggerStoreConfig{CountLimit: 5}),
		Logger:   zerolog.Nop(),
	})
	assert.NoError(t, err)
	assert.Equal(t, cap(eng.workers), maxWorkers)
	assert.Equal(t, eng.cfg.TaskTimeout, taskTimeout)
}

func TestEvaluateAllPreservesOrder(t *testing.T) {
	eng := newEngine(t, 4, time.Second*2)
	date := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	histories := []*shared.PriceHistory{
		stubHistory("AAPL", date),
		stubHistory("GOOG", date),
		stubHistory("TSLA", date),
	}
	strat := &stubStrategy{
		ready: true,
		signals: map[string]shared.TradeSignal{
			"AAPL": shared.Long,
			"GOOG": shared.Short,
			"TSLA": shared.Buy,
		},
		// Finish in reverse dispatch order to exercise slot indexing.
		delays: map[string]time.Duration{
			"AAPL": time.Millisecond * 60,
			"GOOG": time.Millisecond * 30,
			"TSLA": 0,
		},
	}

	// Ensure results match the caller's input order regardless of task
	// completion order.
	results, diagnostics := eng.EvaluateAll(context.Background(), histories, nil, strat)
	assert.Equal(t, len(diagnostics), 0)
	assert.Equal(t, len(results), 3)
	assert.Equal(t, results[0].Ticker, "AAPL")
	assert.Equal(t, results[0].Signal, shared.Long)
	assert.Equal(t, results[1].Ticker, "GOOG")
	assert.Equal(t, results[1].Signal, shared.Short)
	assert.Equal(t, results[2].Ticker, "TSLA")
	assert.Equal(t, results[2].Signal, shared.Buy)
	assert.Equal(t, results[0].CreatedOn, date)
}

func TestEvaluateAllIsolatesFailures(t *testing.T) {
	eng := newEngine(t, 4, time.Second*2)
	date := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	histories := []*shared.PriceHistory{
		stubHistory("AAPL", date),
		stubHistory("GOOG", date),
		stubHistory("TSLA", date),
	}
	strat := &stubStrategy{
		ready: true,
		signals: map[string]shared.TradeSignal{
			"AAPL": shared.Long,
			"TSLA": shared.Buy,
		},
		errs: map[string]error{
			"GOOG": errors.New("bad history"),
		},
	}

	// Ensure a failing task degrades its own slot to hold without
	// corrupting the other slots.
	results, diagnostics := eng.EvaluateAll(context.Background(), histories, nil, strat)
	assert.Equal(t, results[0].Signal, shared.Long)
	assert.Equal(t, results[1].Signal, shared.Hold)
	assert.Equal(t, results[2].Signal, shared.Buy)
	assert.Equal(t, len(diagnostics), 1)
	assert.Equal(t, diagnostics[0].Ticker, "GOOG")
	assert.Error(t, diagnostics[0].Err)
}

func TestEvaluateAllRecoversPanics(t *testing.T) {
	eng := newEngine(t, 4, time.Second*2)
	date := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	histories := []*shared.PriceHistory{
		stubHistory("AAPL", date),
		stubHistory("GOOG", date),
	}
	strat := &stubStrategy{
		ready:   true,
		signals: map[string]shared.TradeSignal{"GOOG": shared.Sell},
		panics:  map[string]bool{"AAPL": true},
	}

	// Ensure a panicking task is contained to its own slot.
	results, diagnostics := eng.EvaluateAll(context.Background(), histories, nil, strat)
	assert.Equal(t, results[0].Signal, shared.Hold)
	assert.Equal(t, results[1].Signal, shared.Sell)
	assert.Equal(t, len(diagnostics), 1)
	assert.Equal(t, diagnostics[0].Ticker, "AAPL")
}

func TestEvaluateAllTimesOutSlowTasks(t *testing.T) {
	eng := newEngine(t, 4, time.Millisecond*40)
	date := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	histories := []*shared.PriceHistory{
		stubHistory("AAPL", date),
		stubHistory("GOOG", date),
	}
	strat := &stubStrategy{
		ready:   true,
		signals: map[string]shared.TradeSignal{"AAPL": shared.Long, "GOOG": shared.Short},
		delays:  map[string]time.Duration{"GOOG": time.Millisecond * 200},
	}

	// Ensure an expired task yields a hold slot and a diagnostic.
	results, diagnostics := eng.EvaluateAll(context.Background(), histories, nil, strat)
	assert.Equal(t, results[0].Signal, shared.Long)
	assert.Equal(t, results[1].Signal, shared.Hold)
	assert.Equal(t, len(diagnostics), 1)
	assert.Equal(t, diagnostics[0].Ticker, "GOOG")
}

func TestEvaluateAllSuppressesDuplicateTickers(t *testing.T) {
	eng := newEngine(t, 4, time.Second*2)
	date := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	histories := []*shared.PriceHistory{
		stubHistory("AAPL", date),
		stubHistory("AAPL", date),
	}
	strat := &stubStrategy{
		ready:   true,
		signals: map[string]shared.TradeSignal{"AAPL": shared.Long},
	}

	// Ensure a duplicated ticker evaluates once and holds the extra slot.
	results, diagnostics := eng.EvaluateAll(context.Background(), histories, nil, strat)
	assert.Equal(t, results[0].Signal, shared.Long)
	assert.Equal(t, results[1].Signal, shared.Hold)
	assert.Equal(t, len(diagnostics), 1)
	assert.Equal(t, diagnostics[0].Ticker, "AAPL")
}

func TestEvaluateAllHoldsNotReadyStrategy(t *testing.T) {
	eng := newEngine(t, 4, time.Second*2)
	date := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	histories := []*shared.PriceHistory{
		stubHistory("AAPL", date),
		stubHistory("GOOG", date),
	}
	strat := &stubStrategy{
		signals: map[string]shared.TradeSignal{"AAPL": shared.Long},
	}

	// Ensure a strategy without a decision procedure holds the whole batch
	// with a single diagnostic.
	results, diagnostics := eng.EvaluateAll(context.Background(), histories, nil, strat)
	assert.Equal(t, len(results), 2)
	assert.Equal(t, results[0].Signal, shared.Hold)
	assert.Equal(t, results[1].Signal, shared.Hold)
	assert.Equal(t, len(diagnostics), 1)
	assert.Equal(t, diagnostics[0].Ticker, "")
}

func TestRecentZScores(t *testing.T) {
	eng := newEngine(t, 4, time.Second*2)
	date := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	strat := &stubStrategy{
		ready:   true,
		signals: map[string]shared.TradeSignal{"AAPL": shared.Long},
		zscores: map[string]float64{"AAPL": 1.5},
	}

	// Ensure unevaluated tickers have no retained readings.
	assert.Nil(t, eng.RecentZScores("AAPL", 4))

	// Ensure successful evaluations retain their z-score readings.
	histories := []*shared.PriceHistory{stubHistory("AAPL", date)}
	_, diagnostics := eng.EvaluateAll(context.Background(), histories, nil, strat)
	assert.Equal(t, len(diagnostics), 0)

	points := eng.RecentZScores("AAPL", 4)
	assert.Equal(t, len(points), 1)
	assert.Equal(t, points[0].Value, 1.5)
	assert.Equal(t, points[0].Date, date)
}
