// Package strategy implements the decision engines that turn indicator
// values, portfolio state and trigger state into trade signals.
package strategy

import (
	"time"

	"github.com/dnldd/strategist/ledger"
	"github.com/dnldd/strategist/shared"
)

// Evaluation represents the outcome of evaluating one instrument.
type Evaluation struct {
	// Signal is the trade decision for the instrument.
	Signal shared.TradeSignal
	// Close is the latest close price evaluated.
	Close float64
	// Average is the moving average reference at the latest point.
	Average float64
	// Std is the rolling standard deviation at the latest point.
	Std float64
	// ZScore is the z-score at the latest point, NaN when undefined.
	ZScore float64
	// ZScoreROC is the z-score rate of change at the latest point, NaN
	// when undefined.
	ZScoreROC float64
	// RSI is the relative strength index at the latest point, NaN when
	// the strategy does not compute it or not enough history accumulated.
	RSI float64
}

// Strategy defines the requirements of a signal decision engine.
type Strategy interface {
	// Name returns the strategy name.
	Name() string
	// Ready reports whether the strategy has an implemented decision
	// procedure. Strategies that are not ready always decide hold.
	Ready() bool
	// Evaluate produces a trade decision for the provided instrument.
	Evaluate(history *shared.PriceHistory, portfolio *shared.Portfolio, state *TriggerState) (*Evaluation, error)
}

// sideOf returns the trade side implied by the provided signal.
func sideOf(signal shared.TradeSignal) shared.Side {
	switch signal {
	case shared.Buy, shared.StrongBuy, shared.Long:
		return shared.BuySide
	default:
		return shared.SellSide
	}
}

// recordTransition appends a ledger entry when the emitted signal differs
// from the previously emitted signal for the instrument, and tracks the
// emitted signal on the trigger state. Repeated identical signals produce
// no ledger entries.
func recordTransition(lgr *ledger.Ledger, ticker string, state *TriggerState,
	signal shared.TradeSignal, value float64, created time.Time) {
	prev := state.LastSignal
	state.LastSignal = signal
	if signal == prev {
		return
	}

	switch signal {
	case shared.Hold:
		lgr.Append(ledger.NewCloseRecord(ticker, signal, sideOf(prev), value, created))
	case shared.TakeProfit:
		lgr.Append(ledger.NewCloseRecord(ticker, signal, shared.SellSide, value, created))
	default:
		lgr.Append(ledger.NewOpenRecord(ticker, signal, sideOf(signal), value, created))
	}
}
