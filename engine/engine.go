// Package engine implements the concurrent execution coordinator that fans
// per-instrument evaluations out onto a bounded worker pool and assembles
// ordered results.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/strategist/indicator"
	"github.com/dnldd/strategist/shared"
	"github.com/dnldd/strategist/strategy"
	"github.com/rs/zerolog"
)

const (
	// maxWorkers is the default maximum number of concurrent workers.
	maxWorkers = 16
	// taskTimeout is the default per-instrument evaluation timeout.
	taskTimeout = time.Second * 4
	// snapshotSize is the number of retained indicator readings per instrument.
	snapshotSize = 64
)

// EngineConfig represents the evaluation engine configuration.
type EngineConfig struct {
	// MaxWorkers caps the number of concurrent evaluation tasks.
	MaxWorkers int
	// TaskTimeout bounds a single instrument evaluation, expired tasks
	// yield a neutral hold result.
	TaskTimeout time.Duration
	// Triggers owns the per-instrument trigger states injected into tasks.
	Triggers *strategy.TriggerStore
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Result represents the decision for one instrument slot of a batch.
type Result struct {
	// Ticker is the instrument symbol evaluated.
	Ticker string
	// Signal is the trade decision for the instrument.
	Signal shared.TradeSignal
	// CreatedOn is the evaluation timestamp, the date of the latest candle.
	CreatedOn time.Time
}

// Diagnostic represents a side channel failure report for a batch. A
// diagnosed instrument still occupies its result slot with a hold sentinel.
type Diagnostic struct {
	// Ticker is the instrument symbol the failure applies to.
	Ticker string
	// Err describes the failure.
	Err error
}

// Engine coordinates concurrent instrument evaluations.
type Engine struct {
	cfg       *EngineConfig
	workers   chan struct{}
	snapshots map[string]*indicator.Snapshot
	snapMtx   sync.RWMutex
}

// NewEngine initializes a new evaluation engine.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	if cfg.Triggers == nil {
		return nil, errors.New("trigger store cannot be nil")
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = maxWorkers
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = taskTimeout
	}

	return &Engine{
		cfg:       cfg,
		workers:   make(chan struct{}, cfg.MaxWorkers),
		snapshots: make(map[string]*indicator.Snapshot),
	}, nil
}

// fetchSnapshot returns the indicator snapshot for the provided ticker,
// creating it on first lookup.
func (e *Engine) fetchSnapshot(ticker string) *indicator.Snapshot {
	e.snapMtx.RLock()
	snapshot, ok := e.snapshots[ticker]
	e.snapMtx.RUnlock()
	if ok {
		return snapshot
	}

	e.snapMtx.Lock()
	defer e.snapMtx.Unlock()

	snapshot, ok = e.snapshots[ticker]
	if ok {
		return snapshot
	}

	// Size errors are not possible with a positive constant.
	snapshot, _ = indicator.NewSnapshot(snapshotSize)
	e.snapshots[ticker] = snapshot

	return snapshot
}

// RecentZScores returns the last n retained z-score readings for the
// provided ticker.
func (e *Engine) RecentZScores(ticker string, n int32) []*indicator.Point {
	e.snapMtx.RLock()
	snapshot, ok := e.snapshots[ticker]
	e.snapMtx.RUnlock()
	if !ok {
		return nil
	}

	return snapshot.LastN(n)
}

// evaluationStamp returns the evaluation timestamp for the provided history.
func evaluationStamp(history *shared.PriceHistory) time.Time {
	latest := history.Last()
	if latest == nil {
		return time.Time{}
	}

	return latest.Date
}

// EvaluateAll dispatches one evaluation task per instrument onto the worker
// pool, waits for every task to complete and returns results matching the
// caller's input order. Task failures, panics and timeouts degrade that
// instrument's slot to hold and are reported as diagnostics, they never
// corrupt other slots or abort the batch.
func (e *Engine) EvaluateAll(ctx context.Context, histories []*shared.PriceHistory,
	portfolio *shared.Portfolio, strat strategy.Strategy) ([]Result, []Diagnostic) {
	results := make([]Result, len(histories))

	var diagnostics []Diagnostic
	var diagnosticsMtx sync.Mutex
	diagnose := func(ticker string, err error) {
		diagnosticsMtx.Lock()
		diagnostics = append(diagnostics, Diagnostic{Ticker: ticker, Err: err})
		diagnosticsMtx.Unlock()
	}

	if !strat.Ready() {
		// Strategies without an implemented decision procedure hold the
		// whole batch.
		for idx := range histories {
			results[idx] = Result{
				Ticker:    histories[idx].Ticker,
				Signal:    shared.Hold,
				CreatedOn: evaluationStamp(histories[idx]),
			}
		}
		diagnose("", fmt.Errorf("strategy %s is not ready, holding batch", strat.Name()))

		return results, diagnostics
	}

	var wg sync.WaitGroup
	dispatched := make(map[string]bool, len(histories))

	for idx := range histories {
		history := histories[idx]
		results[idx] = Result{
			Ticker:    history.Ticker,
			Signal:    shared.Hold,
			CreatedOn: evaluationStamp(history),
		}

		if dispatched[history.Ticker] {
			// A ticker's task must be the sole writer of its trigger state
			// within a batch, suppress duplicate dispatches.
			diagnose(history.Ticker, fmt.Errorf("duplicate ticker %s in batch, holding slot %d",
				history.Ticker, idx))
			continue
		}
		dispatched[history.Ticker] = true

		wg.Add(1)
		e.workers <- struct{}{}
		go func(idx int, history *shared.PriceHistory) {
			defer func() {
				<-e.workers
				wg.Done()
			}()

			e.evaluateInstrument(ctx, idx, history, portfolio, strat, results, diagnose)
		}(idx, history)
	}

	wg.Wait()

	return results, diagnostics
}

// evaluateInstrument runs one instrument's evaluation with panic isolation
// and a timeout, writing only its own result slot.
func (e *Engine) evaluateInstrument(ctx context.Context, idx int, history *shared.PriceHistory,
	portfolio *shared.Portfolio, strat strategy.Strategy, results []Result,
	diagnose func(ticker string, err error)) {
	state := e.cfg.Triggers.Fetch(history.Ticker)

	tctx, cancel := context.WithTimeout(ctx, e.cfg.TaskTimeout)
	defer cancel()

	type outcome struct {
		eval *strategy.Evaluation
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("evaluation panic: %v", r)}
			}
		}()

		eval, err := strat.Evaluate(history, portfolio, state)
		done <- outcome{eval: eval, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			e.cfg.Logger.Error().Msgf("evaluating %s: %v", history.Ticker, out.err)
			diagnose(history.Ticker, out.err)
			return
		}

		results[idx].Signal = out.eval.Signal
		e.fetchSnapshot(history.Ticker).Update(&indicator.Point{
			Value: out.eval.ZScore,
			Date:  results[idx].CreatedOn,
		})
	case <-tctx.Done():
		e.cfg.Logger.Error().Msgf("evaluating %s timed out after %s, holding",
			history.Ticker, e.cfg.TaskTimeout)
		diagnose(history.Ticker, fmt.Errorf("evaluation timed out after %s", e.cfg.TaskTimeout))
	}
}
