package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/dnldd/strategist/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategistCfg := service.StrategistConfig{
		DataFilepath:         cfg.DataFilepath,
		Strategy:             cfg.Strategy,
		AverageType:          cfg.AverageType,
		WindowInDays:         cfg.WindowInDays,
		FastWindowInDays:     cfg.FastWindowInDays,
		SlowWindowInDays:     cfg.SlowWindowInDays,
		RSIWindowInDays:      cfg.RSIWindowInDays,
		RSIUpperBound:        cfg.RSIUpperBound,
		RSILowerBound:        cfg.RSILowerBound,
		StdMultiplier:        cfg.StdMultiplier,
		RewardType:           cfg.RewardType,
		RewardAmount:         cfg.RewardAmount,
		CountLimit:           cfg.CountLimit,
		CurrentFunds:         cfg.CurrentFunds,
		TotalFunds:           cfg.TotalFunds,
		MaxExposureAllowed:   cfg.MaxExposureAllowed,
		StopLossPercent:      cfg.StopLossPercent,
		LimitOrderPercent:    cfg.LimitOrderPercent,
		Backtest:             cfg.Backtest,
		EvaluateEveryMinutes: cfg.EvaluateEveryMinutes,
		DBEndpoint:           cfg.DBEndpoint,
		DBUser:               cfg.DBUser,
		DBPass:               cfg.DBPass,
		Cancel:               cancel,
	}
	strategist, err := service.NewStrategist(ctx, &strategistCfg)
	if err != nil {
		log.Printf("creating strategist service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	strategist.Run(ctx)
}
