package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/strategist/database"
	"github.com/dnldd/strategist/engine"
	"github.com/dnldd/strategist/ledger"
	"github.com/dnldd/strategist/shared"
	"github.com/dnldd/strategist/strategy"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// recentZScoreCount is the number of recent z-score readings reported
	// per instrument after a batch.
	recentZScoreCount = 4
)

// StrategistConfig represents the configuration struct for the strategist
// service.
type StrategistConfig struct {
	// DataFilepath is the filepath to the instrument universe data.
	DataFilepath string
	// Strategy is the name of the strategy to evaluate.
	Strategy string
	// AverageType is the moving average flavour used by the strategy.
	AverageType string
	// WindowInDays is the indicator lookback window in calendar days.
	WindowInDays int
	// FastWindowInDays is the fast lookback window in calendar days.
	FastWindowInDays int
	// SlowWindowInDays is the slow lookback window in calendar days.
	SlowWindowInDays int
	// RSIWindowInDays is the rsi lookback window in calendar days.
	RSIWindowInDays int
	// RSIUpperBound is the overbought rsi threshold.
	RSIUpperBound float64
	// RSILowerBound is the oversold rsi threshold.
	RSILowerBound float64
	// StdMultiplier is the standard deviation multiplier for band strategies.
	StdMultiplier float64
	// RewardType is the profit taking reward policy.
	RewardType string
	// RewardAmount is the reward percent applied by the reward policy.
	RewardAmount float64
	// CountLimit is the consecutive hold count limit for profit taking.
	CountLimit int
	// CurrentFunds is the currently available funds of the account.
	CurrentFunds float64
	// TotalFunds is the total funds of the account.
	TotalFunds float64
	// MaxExposureAllowed is the maximum exposure percent per instrument.
	MaxExposureAllowed float64
	// StopLossPercent is the stop loss percent for the account.
	StopLossPercent float64
	// LimitOrderPercent is the limit order percent for the account.
	LimitOrderPercent float64
	// Backtest is the backtesting flag.
	Backtest bool
	// EvaluateEveryMinutes is the scheduled batch cadence in live mode.
	EvaluateEveryMinutes int
	// MaxWorkers caps the number of concurrent evaluation tasks.
	MaxWorkers int
	// DBEndpoint is the optional database connection endpoint.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config has sane inputs.
func (cfg *StrategistConfig) Validate() error {
	var errs error

	if cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("data filepath cannot be an empty string"))
	}
	if cfg.Strategy == "" {
		errs = errors.Join(errs, fmt.Errorf("no strategy provided for strategist service"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}
	if !cfg.Backtest && cfg.EvaluateEveryMinutes <= 0 {
		errs = errors.Join(errs, fmt.Errorf("evaluation cadence must be positive, got %d minutes",
			cfg.EvaluateEveryMinutes))
	}

	return errs
}

// Strategist represents an instrument evaluation service.
type Strategist struct {
	cfg          *StrategistConfig
	historicData *shared.HistoricData
	portfolio    *shared.Portfolio
	ledger       *ledger.Ledger
	engine       *engine.Engine
	strategy     strategy.Strategy
	db           database.RecordStorer
	jobScheduler *gocron.Scheduler
	logger       *zerolog.Logger

	// persisted tracks the count of ledger records already persisted per
	// ticker so scheduled batches only persist new entries.
	persisted map[string]int
}

// newStrategy initializes the configured strategy.
func newStrategy(cfg *StrategistConfig, lgr *ledger.Ledger, logger *zerolog.Logger) (strategy.Strategy, error) {
	switch cfg.Strategy {
	case "pairstrading":
		return strategy.NewPairsTrading(), nil
	case "arbitrage":
		return strategy.NewArbitrage(), nil
	case "scalping":
		return strategy.NewScalping(), nil
	case "forecast":
		return strategy.NewForecast(), nil
	}

	averageType, err := shared.ParseMovingAverageType(cfg.AverageType)
	if err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case "movingaverage":
		return strategy.NewMovingAverage(&strategy.MovingAverageConfig{
			AverageType:  averageType,
			WindowInDays: cfg.WindowInDays,
			Ledger:       lgr,
			Logger:       logger,
		})
	case "bollingerrsi":
		return strategy.NewBollingerRSI(&strategy.BollingerRSIConfig{
			AverageType:     averageType,
			WindowInDays:    cfg.WindowInDays,
			StdMultiplier:   cfg.StdMultiplier,
			RSIWindowInDays: cfg.RSIWindowInDays,
			RSIUpperBound:   cfg.RSIUpperBound,
			RSILowerBound:   cfg.RSILowerBound,
			Ledger:          lgr,
			Logger:          logger,
		})
	case "dualmovingaverage":
		return strategy.NewDualMovingAverage(&strategy.DualMovingAverageConfig{
			AverageType:      averageType,
			FastWindowInDays: cfg.FastWindowInDays,
			SlowWindowInDays: cfg.SlowWindowInDays,
			RSIWindowInDays:  cfg.RSIWindowInDays,
			RSIUpperBound:    cfg.RSIUpperBound,
			RSILowerBound:    cfg.RSILowerBound,
			Ledger:           lgr,
			Logger:           logger,
		})
	default:
		return nil, fmt.Errorf("unknown strategy: %s", cfg.Strategy)
	}
}

// NewStrategist initializes a new strategist service.
func NewStrategist(ctx context.Context, cfg *StrategistConfig) (*Strategist, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating strategist config: %v", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "strategist").Logger()

	historicDataLogger := logger.With().Str("component", "historicdata").Logger()
	historicData, err := shared.NewHistoricData(&shared.HistoricDataConfig{
		FilePath: cfg.DataFilepath,
		Logger:   &historicDataLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating historic data: %v", err)
	}

	portfolio, err := shared.NewPortfolio(cfg.CurrentFunds, cfg.TotalFunds, nil,
		cfg.MaxExposureAllowed, cfg.StopLossPercent, cfg.LimitOrderPercent)
	if err != nil {
		return nil, fmt.Errorf("creating portfolio: %v", err)
	}

	if cfg.RewardType == "" {
		cfg.RewardType = "normal"
	}
	rewardType, err := shared.ParseRewardType(cfg.RewardType)
	if err != nil {
		return nil, fmt.Errorf("parsing reward type: %v", err)
	}

	triggers := strategy.NewTriggerStore(&strategy.TriggerStoreConfig{
		CountLimit:   cfg.CountLimit,
		RewardType:   rewardType,
		RewardAmount: cfg.RewardAmount,
	})

	tradeLedger := ledger.NewLedger()

	strategyLogger := logger.With().Str("component", cfg.Strategy).Logger()
	strat, err := newStrategy(cfg, tradeLedger, &strategyLogger)
	if err != nil {
		return nil, fmt.Errorf("creating strategy: %v", err)
	}

	engineLogger := logger.With().Str("component", "engine").Logger()
	evalEngine, err := engine.NewEngine(&engine.EngineConfig{
		MaxWorkers: cfg.MaxWorkers,
		Triggers:   triggers,
		Logger:     engineLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating engine: %v", err)
	}

	var db database.RecordStorer
	if cfg.DBEndpoint != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		db, err = database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %v", err)
		}
	}

	service := &Strategist{
		cfg:          cfg,
		historicData: historicData,
		portfolio:    portfolio,
		ledger:       tradeLedger,
		engine:       evalEngine,
		strategy:     strat,
		db:           db,
		jobScheduler: gocron.NewScheduler(time.UTC),
		logger:       &logger,
		persisted:    make(map[string]int),
	}

	return service, nil
}

// Ledger returns the service's trade record ledger.
func (s *Strategist) Ledger() *ledger.Ledger {
	return s.ledger
}

// runBatch evaluates the instrument universe once and reports the outcome.
func (s *Strategist) runBatch(ctx context.Context) {
	histories := s.historicData.Histories()

	results, diagnostics := s.engine.EvaluateAll(ctx, histories, s.portfolio, s.strategy)

	for idx := range results {
		result := results[idx]
		s.logger.Info().Msgf("%s: %s @ %s", result.Ticker, result.Signal.String(),
			result.CreatedOn.Format(time.RFC1123))

		recent := s.engine.RecentZScores(result.Ticker, recentZScoreCount)
		for pos := range recent {
			s.logger.Debug().Msgf("%s: z-score %.4f @ %s", result.Ticker,
				recent[pos].Value, recent[pos].Date.Format(time.RFC1123))
		}
	}

	for idx := range diagnostics {
		s.logger.Warn().Msgf("batch diagnostic for %q: %v", diagnostics[idx].Ticker,
			diagnostics[idx].Err)
	}

	s.persistLedger(ctx)
}

// persistLedger persists new ledger records to the database when configured.
func (s *Strategist) persistLedger(ctx context.Context) {
	if s.db == nil {
		return
	}

	tickers := s.ledger.Tickers()
	for idx := range tickers {
		ticker := tickers[idx]
		records := s.ledger.Records(ticker)

		for pos := s.persisted[ticker]; pos < len(records); pos++ {
			err := s.db.PersistRecord(ctx, &records[pos])
			if err != nil {
				s.logger.Error().Msgf("persisting record for %s: %v", ticker, err)
				continue
			}
			s.persisted[ticker] = pos + 1
		}
	}
}

// Run handles the lifecycle processes of the strategist service.
func (s *Strategist) Run(ctx context.Context) {
	if s.cfg.Backtest {
		s.runBatch(ctx)

		tickers := s.ledger.Tickers()
		for idx := range tickers {
			records := s.ledger.Records(tickers[idx])
			for pos := range records {
				s.logger.Info().Msgf("%s: %s (%s) @ %s", records[pos].Ticker,
					records[pos].Action, records[pos].Side.String(),
					records[pos].CreatedOn.Format(time.RFC1123))
			}
		}

		s.logger.Info().Msgf("backtest for %s done, review the trade ledger for performance",
			s.cfg.Strategy)
		s.cfg.Cancel()
		return
	}

	_, err := s.jobScheduler.Every(s.cfg.EvaluateEveryMinutes).Minutes().Do(func() {
		s.runBatch(ctx)
	})
	if err != nil {
		s.logger.Error().Msgf("scheduling evaluation batches: %v", err)
		s.cfg.Cancel()
		return
	}

	s.jobScheduler.StartAsync()
	<-ctx.Done()
	s.jobScheduler.Stop()
}
