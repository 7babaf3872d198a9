package shared

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// HistoricDataConfig represents the historic data source configuration.
type HistoricDataConfig struct {
	// FilePath is the filepath to the historic instrument data.
	FilePath string
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// HistoricData represents a universe of historic instrument data loaded
// from file, used for backtests and scheduled evaluation batches.
type HistoricData struct {
	cfg       *HistoricDataConfig
	histories []*PriceHistory
	startTime time.Time
	endTime   time.Time
}

// loadHistoricData loads the historic data bytes from the provided file path.
func loadHistoricData(filepath string) (*gjson.Result, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading historic data from file with path '%s': %v", filepath, err)
	}

	b := gjson.ParseBytes(readb)

	return &b, nil
}

// NewHistoricData initializes a new historic data source.
func NewHistoricData(cfg *HistoricDataConfig) (*HistoricData, error) {
	b, err := loadHistoricData(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("loading historic data: %v", err)
	}

	historicData := HistoricData{
		cfg: cfg,
	}

	entries := b.Get("histories").Array()
	if len(entries) == 0 {
		return nil, fmt.Errorf("no instrument histories found in '%s'", cfg.FilePath)
	}

	for idx := range entries {
		entry := entries[idx]

		ticker := entry.Get("ticker").String()
		intervalType, err := ParseIntervalType(entry.Get("intervalType").String())
		if err != nil {
			return nil, fmt.Errorf("parsing interval type for %s: %v", ticker, err)
		}

		candles, err := ParseCandlesticks(entry.Get("candles").Array(), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parsing candlesticks for %s: %v", ticker, err)
		}

		// Sort the candle data by timestamp before validation.
		slices.SortFunc(candles, func(a, b Candlestick) int {
			switch {
			case a.Date.Before(b.Date):
				return -1
			case a.Date.After(b.Date):
				return 1
			default:
				return 0
			}
		})

		history := &PriceHistory{
			Ticker:       ticker,
			Candles:      candles,
			IntervalType: intervalType,
			Interval:     int(entry.Get("interval").Int()),
		}

		err = history.Validate()
		if err != nil {
			return nil, fmt.Errorf("validating price history: %v", err)
		}

		first := history.Candles[0].Date
		last := history.Candles[len(history.Candles)-1].Date
		if historicData.startTime.IsZero() || first.Before(historicData.startTime) {
			historicData.startTime = first
		}
		if last.After(historicData.endTime) {
			historicData.endTime = last
		}

		historicData.histories = append(historicData.histories, history)
	}

	cfg.Logger.Info().Msgf("loaded %d instrument histories covering %s to %s",
		len(historicData.histories), historicData.startTime.Format(time.RFC1123),
		historicData.endTime.Format(time.RFC1123))

	return &historicData, nil
}

// Histories returns the loaded instrument histories.
func (h *HistoricData) Histories() []*PriceHistory {
	return h.histories
}

// FetchStartTime returns the start time of the loaded historic data.
func (h *HistoricData) FetchStartTime() time.Time {
	return h.startTime
}

// FetchEndTime returns the end time of the loaded historic data.
func (h *HistoricData) FetchEndTime() time.Time {
	return h.endTime
}
