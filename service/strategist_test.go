package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dnldd/strategist/ledger"
	"github.com/dnldd/strategist/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"
)

// writeUniverse writes a single instrument universe file with the provided
// daily closes and returns its path.
func writeUniverse(t *testing.T, ticker string, closes []float64) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(fmt.Sprintf(`{"histories":[{"ticker":%q,"interval":1,"intervalType":"D","candles":[`, ticker))
	for idx := range closes {
		if idx > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf(`{"open":%.2f,"low":%.2f,"high":%.2f,"close":%.2f,"volume":1000,"date":"2024-01-%02d 00:00:00"}`,
			closes[idx], closes[idx], closes[idx], closes[idx], idx+1))
	}
	b.WriteString(`]}]}`)

	path := filepath.Join(t.TempDir(), "universe.json")
	err := os.WriteFile(path, []byte(b.String()), 0o644)
	assert.NoError(t, err)

	return path
}

func TestStrategistConfigValidate(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure a complete config validates.
	cfg := &StrategistConfig{
		DataFilepath: "/tmp/universe.json",
		Strategy:     "movingaverage",
		Backtest:     true,
		Cancel:       cancel,
	}
	assert.NoError(t, cfg.Validate())

	// Ensure missing required fields are all reported.
	cfg = &StrategistConfig{}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "data filepath cannot be an empty string"))
	assert.True(t, strings.Contains(err.Error(), "no strategy provided for strategist service"))
	assert.True(t, strings.Contains(err.Error(), "context cancellation function cannot be nil"))
	assert.True(t, strings.Contains(err.Error(), "evaluation cadence must be positive"))
}

func TestNewStrategy(t *testing.T) {
	lgr := zerolog.Nop()
	book := ledger.NewLedger()

	// Ensure placeholder strategies resolve without indicator settings.
	names := []string{"pairstrading", "arbitrage", "scalping", "forecast"}
	for idx := range names {
		strat, err := newStrategy(&StrategistConfig{Strategy: names[idx]}, book, &lgr)
		assert.NoError(t, err)
		assert.Equal(t, strat.Name(), names[idx])
		assert.False(t, strat.Ready())
	}

	// Ensure implemented strategies resolve from their settings.
	strat, err := newStrategy(&StrategistConfig{
		Strategy:     "movingaverage",
		AverageType:  "simple",
		WindowInDays: 10,
	}, book, &lgr)
	assert.NoError(t, err)
	assert.Equal(t, strat.Name(), "movingaverage")
	assert.True(t, strat.Ready())

	strat, err = newStrategy(&StrategistConfig{
		Strategy:        "bollingerrsi",
		AverageType:     "exponential",
		WindowInDays:    10,
		StdMultiplier:   2,
		RSIWindowInDays: 14,
		RSIUpperBound:   70,
		RSILowerBound:   30,
	}, book, &lgr)
	assert.NoError(t, err)
	assert.Equal(t, strat.Name(), "bollingerrsi")

	// Ensure an unknown average type errors.
	strat, err = newStrategy(&StrategistConfig{
		Strategy:    "movingaverage",
		AverageType: "weighted",
	}, book, &lgr)
	assert.Error(t, err)
	assert.Nil(t, strat)

	// Ensure an unknown strategy errors.
	strat, err = newStrategy(&StrategistConfig{
		Strategy:    "momentum",
		AverageType: "simple",
	}, book, &lgr)
	assert.Error(t, err)
	assert.Nil(t, strat)
}

func TestNewStrategistMissingDataFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ensure a missing universe file errors on creation.
	service, err := NewStrategist(ctx, &StrategistConfig{
		DataFilepath: "/nonexistent/universe.json",
		Strategy:     "movingaverage",
		AverageType:  "simple",
		WindowInDays: 10,
		TotalFunds:   10000,
		Backtest:     true,
		Cancel:       cancel,
	})
	assert.Error(t, err)
	assert.Nil(t, service)
}

func TestStrategistBacktest(t *testing.T) {
	closes := make([]float64, 30)
	for idx := range closes {
		closes[idx] = float64(idx + 1)
	}
	path := writeUniverse(t, "AAPL", closes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service, err := NewStrategist(ctx, &StrategistConfig{
		DataFilepath:       path,
		Strategy:           "movingaverage",
		AverageType:        "simple",
		WindowInDays:       10,
		CountLimit:         5,
		RewardAmount:       10,
		CurrentFunds:       10000,
		TotalFunds:         10000,
		MaxExposureAllowed: 50,
		Backtest:           true,
		Cancel:             cancel,
	})
	assert.NoError(t, err)

	// Ensure a backtest runs one evaluation batch and cancels the context
	// when done.
	service.Run(ctx)
	assert.Error(t, ctx.Err())

	// Ensure the rising series opened a long position in the trade ledger.
	records := service.Ledger().Records("AAPL")
	assert.Equal(t, len(records), 1)
	assert.Equal(t, records[0].Signal, shared.Long)
	assert.Equal(t, records[0].Side, shared.BuySide)
}
