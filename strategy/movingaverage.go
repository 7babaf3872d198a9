package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/dnldd/strategist/indicator"
	"github.com/dnldd/strategist/ledger"
	"github.com/dnldd/strategist/shared"
	"github.com/rs/zerolog"
)

// holdEvaluation returns a neutral evaluation with undefined indicator values.
func holdEvaluation(close float64) *Evaluation {
	return &Evaluation{
		Signal:    shared.Hold,
		Close:     close,
		Average:   math.NaN(),
		Std:       math.NaN(),
		ZScore:    math.NaN(),
		ZScoreROC: math.NaN(),
		RSI:       math.NaN(),
	}
}

// MovingAverageConfig represents the moving average strategy configuration.
type MovingAverageConfig struct {
	// AverageType is the moving average flavour used as the reference.
	AverageType shared.MovingAverageType
	// WindowInDays is the lookback window expressed in calendar days.
	WindowInDays int
	// Ledger records trade decision transitions.
	Ledger *ledger.Ledger
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *MovingAverageConfig) Validate() error {
	var errs error

	if cfg.WindowInDays <= 0 {
		errs = errors.Join(errs, fmt.Errorf("window must be positive, got %d days", cfg.WindowInDays))
	}
	if cfg.Ledger == nil {
		errs = errors.Join(errs, fmt.Errorf("ledger cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// MovingAverage decides trend signals by comparing the latest close to its
// moving average reference, confirmed by a standard deviation stability
// check.
type MovingAverage struct {
	cfg *MovingAverageConfig
}

// Ensure the moving average strategy implements the Strategy interface.
var _ Strategy = (*MovingAverage)(nil)

// NewMovingAverage initializes a new moving average strategy.
func NewMovingAverage(cfg *MovingAverageConfig) (*MovingAverage, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating moving average config: %v", err)
	}

	return &MovingAverage{cfg: cfg}, nil
}

// Name returns the strategy name.
func (s *MovingAverage) Name() string {
	return "movingaverage"
}

// Ready reports whether the strategy has an implemented decision procedure.
func (s *MovingAverage) Ready() bool {
	return true
}

// Evaluate produces a trade decision for the provided instrument.
//
// A close above a stable average confirms a long bias, a close below an
// unstable average confirms a short bias, anything else holds. Insufficient
// history and unsupported intervals are neutral, not errors.
func (s *MovingAverage) Evaluate(history *shared.PriceHistory, portfolio *shared.Portfolio,
	state *TriggerState) (*Evaluation, error) {
	err := history.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating price history: %v", err)
	}

	latest := history.Last()

	window, err := shared.NormalizeWindow(history.IntervalType, history.Interval, s.cfg.WindowInDays)
	if err != nil || window <= 0 {
		// The series cannot be windowed at its sampling granularity,
		// degrade to a neutral decision.
		s.cfg.Logger.Debug().Msgf("%s: window normalization yielded no observations, holding",
			history.Ticker)
		return holdEvaluation(latest.Close), nil
	}

	closes := history.Closes()
	average := movingAverage(s.cfg.AverageType, closes, window)
	std := indicator.RollingStd(closes, average, window)
	zscores := indicator.ZScore(closes, average, std)
	zscoreROC := indicator.ZScoreROC(zscores)

	last := len(closes) - 1
	eval := &Evaluation{
		Signal:    shared.Hold,
		Close:     closes[last],
		Average:   average[last],
		Std:       std[last],
		ZScore:    zscores[last],
		ZScoreROC: zscoreROC[last],
		RSI:       math.NaN(),
	}

	if !indicator.Defined(eval.Average) || eval.Average == 0 || !indicator.Defined(eval.Std) {
		// Not enough accumulated history at the latest point.
		return eval, nil
	}

	averageStd := indicator.TrailingMean(std, window)

	switch {
	case eval.Close > eval.Average:
		// An above average close with stable deviation confirms a long.
		if indicator.Defined(averageStd) && eval.Std <= averageStd {
			eval.Signal = shared.Long
		}
	case eval.Close < eval.Average:
		// A below average close with widening deviation confirms a short.
		if indicator.Defined(averageStd) && eval.Std >= averageStd {
			eval.Signal = shared.Short
		}
	}

	recordTransition(s.cfg.Ledger, history.Ticker, state, eval.Signal, eval.Close, latest.Date)

	return eval, nil
}

// movingAverage computes the configured moving average flavour.
func movingAverage(averageType shared.MovingAverageType, closes []float64, window int) []float64 {
	switch averageType {
	case shared.ExponentialAverage:
		return indicator.EMA(closes, window)
	default:
		return indicator.SMA(closes, window)
	}
}
