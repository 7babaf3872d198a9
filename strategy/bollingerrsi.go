package strategy

import (
	"errors"
	"fmt"

	"github.com/dnldd/strategist/indicator"
	"github.com/dnldd/strategist/ledger"
	"github.com/dnldd/strategist/shared"
	"github.com/rs/zerolog"
)

// BollingerRSIConfig represents the bollinger band strategy configuration.
type BollingerRSIConfig struct {
	// AverageType is the moving average flavour used as the band reference.
	AverageType shared.MovingAverageType
	// WindowInDays is the band lookback window expressed in calendar days.
	WindowInDays int
	// StdMultiplier is the standard deviation multiplier for the bands.
	StdMultiplier float64
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
func (cfg *BollingerRSIConfig) Validate() error {
	var errs error

	if cfg.WindowInDays <= 0 {
		errs = errors.Join(errs, fmt.Errorf("window must be positive, got %d days", cfg.WindowInDays))
	}
	if cfg.StdMultiplier <= 0 {
		errs = errors.Join(errs, fmt.Errorf("std multiplier must be positive, got %f", cfg.StdMultiplier))
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

// BollingerRSI decides mean reversion signals from bollinger band crossings
// confirmed by rsi thresholds, with a trigger-state driven profit take
// fallback for held positions.
type BollingerRSI struct {
	cfg *BollingerRSIConfig
}

// Ensure the bollinger band strategy implements the Strategy interface.
var _ Strategy = (*BollingerRSI)(nil)

// NewBollingerRSI initializes a new bollinger band strategy.
func NewBollingerRSI(cfg *BollingerRSIConfig) (*BollingerRSI, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating bollinger rsi config: %v", err)
	}

	return &BollingerRSI{cfg: cfg}, nil
}

// Name returns the strategy name.
func (s *BollingerRSI) Name() string {
	return "bollingerrsi"
}

// Ready reports whether the strategy has an implemented decision procedure.
func (s *BollingerRSI) Ready() bool {
	return true
}

// Evaluate produces a trade decision for the provided instrument.
func (s *BollingerRSI) Evaluate(history *shared.PriceHistory, portfolio *shared.Portfolio,
	state *TriggerState) (*Evaluation, error) {
	err := history.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating price history: %v", err)
	}

	latest := history.Last()

	window, err := shared.NormalizeWindow(history.IntervalType, history.Interval, s.cfg.WindowInDays)
	if err != nil || window <= 0 {
		s.cfg.Logger.Debug().Msgf("%s: window normalization yielded no observations, holding",
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
	average := movingAverage(s.cfg.AverageType, closes, window)
	std := indicator.RollingStd(closes, average, window)
	upper, lower := indicator.Bollinger(average, std, s.cfg.StdMultiplier)
	rsi := indicator.RSI(closes, rsiWindow)
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
		RSI:       rsi[last],
	}

	if !indicator.Defined(upper[last]) || !indicator.Defined(lower[last]) ||
		!indicator.Defined(eval.RSI) || upper[last] <= 0 || lower[last] <= 0 {
		// Not enough accumulated history at the latest point.
		return eval, nil
	}

	holding, _ := portfolio.Holding(history.Ticker)
	shares := holding.NumberOfShares

	switch {
	case eval.Close > upper[last] && eval.RSI > s.cfg.RSIUpperBound && shares > 0:
		// Overbought above the upper band while holding, take the exit.
		eval.Signal = shared.Sell
		state.CurrentCount = 0

	case eval.Close < lower[last] && eval.RSI < s.cfg.RSILowerBound && shares > 0:
		// Oversold below the lower band, add to the position if exposure
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

// profitTake decides between taking profit and holding for a held position
// using the trigger state's reward policy.
func profitTake(close float64, holding shared.Holding, state *TriggerState) shared.TradeSignal {
	if holding.NumberOfShares <= 0 {
		return shared.Hold
	}

	threshold := holding.PurchaseAmount
	if state.CurrentCount >= state.CountLimit {
		// The position has held steady long enough, raise the bar using
		// the reward policy before taking profit.
		switch state.RewardType {
		case shared.DynamicReward:
			threshold = state.ProfitTriggerAmount * (1 + state.RewardAmount/100)
		default:
			threshold = holding.PurchaseAmount * (1 + state.RewardAmount/100)
		}
	}

	if close >= threshold {
		state.ProfitTriggerAmount = close
		return shared.TakeProfit
	}

	state.CurrentCount++
	return shared.Hold
}
