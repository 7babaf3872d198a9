package shared

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DateLayout is the format layout for parsing candle dates.
	DateLayout = "2006-01-02 15:04:05"
)

// Candlestick represents a unit candlestick for an instrument.
type Candlestick struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	Date   time.Time
}

// PriceHistory represents the ordered price history for an instrument.
type PriceHistory struct {
	// Ticker is the instrument symbol assigned to the candle data.
	Ticker string
	// Candles is the chronological candle data for the instrument.
	Candles []Candlestick
	// IntervalType is the sampling granularity of the candle data.
	IntervalType IntervalType
	// Interval is the number of interval type units per candle.
	Interval int
}

// Validate asserts the price history is evaluable.
func (h *PriceHistory) Validate() error {
	if h.Ticker == "" {
		return fmt.Errorf("price history ticker cannot be an empty string")
	}
	if len(h.Candles) == 0 {
		return fmt.Errorf("price history for %s has no candles", h.Ticker)
	}
	if h.Interval <= 0 {
		return fmt.Errorf("price history for %s has a non-positive interval: %d",
			h.Ticker, h.Interval)
	}

	for idx := 1; idx < len(h.Candles); idx++ {
		if !h.Candles[idx-1].Date.Before(h.Candles[idx].Date) {
			return fmt.Errorf("price history for %s is not strictly increasing at index %d",
				h.Ticker, idx)
		}
	}

	return nil
}

// Closes returns the close prices of the history in chronological order.
func (h *PriceHistory) Closes() []float64 {
	closes := make([]float64, len(h.Candles))
	for idx := range h.Candles {
		closes[idx] = h.Candles[idx].Close
	}

	return closes
}

// Last returns the most recent candle of the history.
func (h *PriceHistory) Last() *Candlestick {
	if len(h.Candles) == 0 {
		return nil
	}

	return &h.Candles[len(h.Candles)-1]
}

// ParseCandlesticks processes the provided json data into candlesticks.
func ParseCandlesticks(data []gjson.Result, loc *time.Location) ([]Candlestick, error) {
	candles := make([]Candlestick, 0, len(data))
	for idx := range data {
		date, err := time.ParseInLocation(DateLayout, data[idx].Get("date").String(), loc)
		if err != nil {
			return nil, fmt.Errorf("parsing candle date: %v", err)
		}

		candle := Candlestick{
			Open:   data[idx].Get("open").Float(),
			Close:  data[idx].Get("close").Float(),
			High:   data[idx].Get("high").Float(),
			Low:    data[idx].Get("low").Float(),
			Volume: data[idx].Get("volume").Float(),
			Date:   date,
		}

		candles = append(candles, candle)
	}

	return candles, nil
}
