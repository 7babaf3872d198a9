package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
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
	// DBEndpoint is the optional database connection endpoint.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string

	registeredFlags map[string]bool
}

// knownStrategies is the set of strategies the service can evaluate.
var knownStrategies = map[string]bool{
	"movingaverage":     true,
	"bollingerrsi":      true,
	"dualmovingaverage": true,
	"pairstrading":      true,
	"arbitrage":         true,
	"scalping":          true,
	"forecast":          true,
}

// Validate asserts the config has sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("data filepath cannot be an empty string"))
	}
	if !knownStrategies[cfg.Strategy] {
		errs = errors.Join(errs, fmt.Errorf("unknown strategy: %s", cfg.Strategy))
	}
	if cfg.TotalFunds <= 0 {
		errs = errors.Join(errs, fmt.Errorf("total funds must be positive, got %f", cfg.TotalFunds))
	}
	if !cfg.Backtest && cfg.EvaluateEveryMinutes <= 0 {
		errs = errors.Join(errs, fmt.Errorf("evaluation cadence must be positive, got %d minutes",
			cfg.EvaluateEveryMinutes))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		var def float64
		if defValue != "" {
			def, _ = strconv.ParseFloat(defValue, 64)
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"datafilepath", &cfg.DataFilepath, "the filepath to the instrument universe data"},
		{"strategy", &cfg.Strategy, "the strategy to evaluate"},
		{"averagetype", &cfg.AverageType, "the moving average type (simple or exponential)"},
		{"windowindays", &cfg.WindowInDays, "the indicator lookback window in calendar days"},
		{"fastwindowindays", &cfg.FastWindowInDays, "the fast lookback window in calendar days"},
		{"slowwindowindays", &cfg.SlowWindowInDays, "the slow lookback window in calendar days"},
		{"rsiwindowindays", &cfg.RSIWindowInDays, "the rsi lookback window in calendar days"},
		{"rsiupperbound", &cfg.RSIUpperBound, "the overbought rsi threshold"},
		{"rsilowerbound", &cfg.RSILowerBound, "the oversold rsi threshold"},
		{"stdmultiplier", &cfg.StdMultiplier, "the standard deviation multiplier for bands"},
		{"rewardtype", &cfg.RewardType, "the profit taking reward policy (normal or dynamic)"},
		{"rewardamount", &cfg.RewardAmount, "the reward percent applied by the reward policy"},
		{"countlimit", &cfg.CountLimit, "the consecutive hold count limit for profit taking"},
		{"currentfunds", &cfg.CurrentFunds, "the currently available account funds"},
		{"totalfunds", &cfg.TotalFunds, "the total account funds"},
		{"maxexposureallowed", &cfg.MaxExposureAllowed, "the maximum exposure percent per instrument"},
		{"stoplosspercent", &cfg.StopLossPercent, "the stop loss percent for the account"},
		{"limitorderpercent", &cfg.LimitOrderPercent, "the limit order percent for the account"},
		{"backtest", &cfg.Backtest, "the backtest flag"},
		{"evaluateeveryminutes", &cfg.EvaluateEveryMinutes, "the scheduled batch cadence in live mode"},
		{"dbendpoint", &cfg.DBEndpoint, "the database connection endpoint"},
		{"dbuser", &cfg.DBUser, "the database user"},
		{"dbpass", &cfg.DBPass, "the database user pass"},
	}

	for idx := range flags {
		err = cfg.registerFlag(flags[idx].name, flags[idx].value, flags[idx].usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
