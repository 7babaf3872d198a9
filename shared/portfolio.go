package shared

import (
	"errors"
	"fmt"
)

// Holding represents an instrument position held by a portfolio.
type Holding struct {
	// NumberOfShares is the number of shares held.
	NumberOfShares float64
	// PurchaseAmount is the average price paid per share.
	PurchaseAmount float64
	// Value is the current value of the holding.
	Value float64
}

// Portfolio represents a read-only view of a trader's account during an
// evaluation batch.
type Portfolio struct {
	// CurrentFunds is the currently available funds of the account.
	CurrentFunds float64
	// TotalFunds is the total funds of the account.
	TotalFunds float64
	// Holdings is the set of positions held, keyed by ticker.
	Holdings map[string]Holding
	// MaxExposureAllowed is the maximum percentage of total funds allowed
	// to be committed to one instrument.
	MaxExposureAllowed float64
	// StopLoss is the stop loss multiplier derived from the stop loss percent.
	StopLoss float64
	// LimitOrder is the limit order multiplier derived from the limit order percent.
	LimitOrder float64
}

// NewPortfolio initializes a new portfolio view.
func NewPortfolio(currentFunds float64, totalFunds float64, holdings map[string]Holding,
	maxExposureAllowed float64, stopLossPercent float64, limitOrderPercent float64) (*Portfolio, error) {
	var errs error

	if totalFunds <= 0 {
		errs = errors.Join(errs, fmt.Errorf("total funds must be positive, got %f", totalFunds))
	}
	if maxExposureAllowed < 0 || maxExposureAllowed > 100 {
		errs = errors.Join(errs, fmt.Errorf("max exposure allowed must be a percent in [0,100], got %f",
			maxExposureAllowed))
	}
	if errs != nil {
		return nil, errs
	}

	if holdings == nil {
		holdings = make(map[string]Holding)
	}

	portfolio := &Portfolio{
		CurrentFunds:       currentFunds,
		TotalFunds:         totalFunds,
		Holdings:           holdings,
		MaxExposureAllowed: maxExposureAllowed,
		StopLoss:           1 - stopLossPercent,
		LimitOrder:         1 + limitOrderPercent,
	}

	return portfolio, nil
}

// Holding returns the held position for the provided ticker.
func (p *Portfolio) Holding(ticker string) (Holding, bool) {
	holding, ok := p.Holdings[ticker]
	return holding, ok
}

// Exposure returns the percentage of total funds committed to the provided ticker.
func (p *Portfolio) Exposure(ticker string) float64 {
	holding, ok := p.Holdings[ticker]
	if !ok {
		return 0
	}

	return (holding.PurchaseAmount / p.TotalFunds) * 100
}

// ExposureWithinLimit asserts committing to the provided ticker does not
// breach the maximum allowed exposure.
func (p *Portfolio) ExposureWithinLimit(ticker string) bool {
	return p.Exposure(ticker) < p.MaxExposureAllowed
}
