package strategy

import (
	"errors"
	"fmt"

	"github.com/dnldd/strategist/indicator"
	"github.com/dnldd/strategist/ledger"
	"github.com/dnldd/strategist/shared"
	"github.com/rs/zerolog"
)

// DualMovingAverageConfig represents the dual moving average strategy
// configuration.
type DualMovingAverageConfig struct {
	// AverageType is the moving average flavour used for both references.
	AverageType shared.MovingAverageType
	// FastWindowInDays is the fast lookback window expressed in calendar days.
	FastWindowInDays int
	// SlowWindowInDays is the slow lookback window expressed in calendar days.
	SlowWindowInDays int
	// RSIWindowInDays is the rsi lookback window expressed in calendar days.
	RSIWindowInDays int
	// RSIUpperBound is the overbought rsi threshold.
	RSIUpperBound float64
	// RSILowerBound is the oversold rsi threshold.
	RSILowerBound float64
	// Ledger records trade decision transitions.
	Ledger *ledger.Ledger
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *DualMovingAverageConfig) Validate() error {
	var errs error

	if cfg.FastWindowInDays <= 0 {
		errs = errors.Join(errs, fmt.Errorf("fast window must be positive, got %d days", cfg.FastWindowInDays))
	}
	if cfg.SlowWindowInDays <= cfg.FastWindowInDays {
		errs = errors.Join(errs, fmt.Errorf("slow window %d days must exceed fast window %d days",
			cfg.SlowWindowInDays, cfg.FastWindowInDays))
	}
	if cfg.RSIWindowInDays <= 0 {
		errs = errors.Join(errs, fmt.Errorf("rsi window must be positive, got %d days", cfg.RSIWindowInDays))
	}
	if cfg.RSIUpperBound <= cfg.RSILowerBound {
		errs = errors.Join(errs, fmt.Errorf("rsi upper bound %f must exceed lower bound %f",
			cfg.RSIUpperBound, cfg.RSILowerBound))
	}
	if cfg.Ledger == nil {
		errs = errors.Join(errs, fmt.Errorf("ledger cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// DualMovingAverage decides crossover signals by comparing the latest close
// to a fast and a slow moving average confirmed by rsi thresholds, sharing
// the bollinger strategy's profit take fallback for held positions.
type DualMovingAverage struct {
	cfg *DualMovingAverageConfig
}

// Ensure the dual moving average strategy implements the Strategy interface.
var _ Strategy = (*DualMovingAverage)(nil)

// NewDualMovingAverage initializes a new dual moving average strategy.
func NewDualMovingAverage(cfg *DualMovingAverageConfig) (*DualMovingAverage, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating dual moving average config: %v", err)
	}

	return &DualMovingAverage{cfg: cfg}, nil
}

// Name returns the strategy name.
func (s *DualMovingAverage) Name() string {
	return "dualmovingaverage"
}

// Ready reports whether the strategy has an implemented decision procedure.
func (s *DualMovingAverage) Ready() bool {
	return true
}

// Evaluate produces a trade decision for the provided instrument.
func (s *DualMovingAverage) Evaluate(history *shared.PriceHistory, portfolio *shared.Portfolio,
	state *TriggerState) (*Evaluation, error) {
	err := history.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating price history: %v", err)
	}

	latest := history.Last()

	fastWindow, err := shared.NormalizeWindow(history.IntervalType, history.Interval, s.cfg.FastWindowInDays)
	if err != nil || fastWindow <= 0 {
		s.cfg.Logger.Debug().Msgf("%s: fast window normalization yielded no observations, holding",
			history.Ticker)
		return holdEvaluation(latest.Close), nil
	}

	slowWindow, err := shared.NormalizeWindow(history.IntervalType, history.Interval, s.cfg.SlowWindowInDays)
	if err != nil || slowWindow <= 0 {
		s.cfg.Logger.Debug().Msgf("%s: slow window normalization yielded no observations, holding",
			history.Ticker)
		return holdEvaluation(latest.Close), nil
	}

	rsiWindow, err := shared.NormalizeWindow(history.IntervalType, history.Interval, s.cfg.RSIWindowInDays)
	if err != nil || rsiWindow <= 0 {
		s.cfg.Logger.Debug().Msgf("%s: rsi window normalization yielded no observations, holding",
			history.Ticker)
		return holdEvaluation(latest.Close), nil
	}

	closes := history.Closes()
	fast := movingAverage(s.cfg.AverageType, closes, fastWindow)
	slow := movingAverage(s.cfg.AverageType, closes, slowWindow)
	std := indicator.RollingStd(closes, slow, slowWindow)
	rsi := indicator.RSI(closes, rsiWindow)
	zscores := indicator.ZScore(closes, slow, std)
	zscoreROC := indicator.ZScoreROC(zscores)

	last := len(closes) - 1
	eval := &Evaluation{
		Signal:    shared.Hold,
		Close:     closes[last],
		Average:   slow[last],
		Std:       std[last],
		ZScore:    zscores[last],
		ZScoreROC: zscoreROC[last],
		RSI:       rsi[last],
	}

	if !indicator.Defined(fast[last]) || !indicator.Defined(slow[last]) ||
		!indicator.Defined(eval.RSI) {
		// Not enough accumulated history at the latest point.
		return eval, nil
	}

	s.cfg.Logger.Debug().Msg(indicator.TrendSummary(history.Ticker, closes, fastWindow, slowWindow))

	holding, _ := portfolio.Holding(history.Ticker)
	shares := holding.NumberOfShares

	switch {
	case eval.Close > fast[last] && eval.Close > slow[last] &&
		eval.RSI > s.cfg.RSIUpperBound && shares > 0:
		// Overbought above both averages while holding, take the exit.
		eval.Signal = shared.Sell
		state.CurrentCount = 0

	case eval.Close < fast[last] && eval.Close < slow[last] &&
		eval.RSI < s.cfg.RSILowerBound && shares > 0:
		// Oversold below both averages, add to the position if exposure
		// limits permit.
		if !portfolio.ExposureWithinLimit(history.Ticker) {
			s.cfg.Logger.Debug().Msgf("%s: exposure at %.2f%% of allowed %.2f%%, holding",
				history.Ticker, portfolio.Exposure(history.Ticker), portfolio.MaxExposureAllowed)
			break
		}
		eval.Signal = shared.Buy
		state.ProfitTriggerAmount = eval.Close

	default:
		eval.Signal = profitTake(eval.Close, holding, state)
	}

	value := eval.Close
	if eval.Signal == shared.TakeProfit {
		value = eval.Close - holding.PurchaseAmount
	}
	recordTransition(s.cfg.Ledger, history.Ticker, state, eval.Signal, value, latest.Date)

	return eval, nil
}
