package indicator

import (
	"fmt"
	"math"
)

// Series values are aligned one-to-one with their input closes. Leading
// positions without enough trailing history are undefined and reported as
// NaN, callers must check Defined before consuming a value.

// Defined reports whether the provided indicator value is defined.
func Defined(value float64) bool {
	return !math.IsNaN(value)
}

// undefinedSeries returns a series of the provided length with every
// position undefined.
func undefinedSeries(length int) []float64 {
	series := make([]float64, length)
	for idx := range series {
		series[idx] = math.NaN()
	}

	return series
}

// SMA computes the simple moving average of the provided closes. Values are
// undefined until window closes have accumulated.
func SMA(closes []float64, window int) []float64 {
	series := undefinedSeries(len(closes))
	if window <= 0 || window > len(closes) {
		return series
	}

	var sum float64
	for idx := range closes {
		sum += closes[idx]
		if idx >= window {
			sum -= closes[idx-window]
		}
		if idx >= window-1 {
			series[idx] = sum / float64(window)
		}
	}

	return series
}

// EMA computes the exponential moving average of the provided closes with
// smoothing factor 2/(window+1), seeded with the first close.
func EMA(closes []float64, window int) []float64 {
	series := undefinedSeries(len(closes))
	if window <= 0 || len(closes) == 0 {
		return series
	}

	alpha := 2 / (float64(window) + 1)
	series[0] = closes[0]
	for idx := 1; idx < len(closes); idx++ {
		series[idx] = alpha*closes[idx] + (1-alpha)*series[idx-1]
	}

	return series
}

// RSI computes the relative strength index of the provided closes using
// exponential smoothing of per-step gains and losses with a center of mass
// of window-1. A zero average loss yields the upper bound of 100.
func RSI(closes []float64, window int) []float64 {
	series := undefinedSeries(len(closes))
	if window <= 0 || len(closes) < 2 {
		return series
	}

	alpha := 1 / float64(window)
	var avgGain, avgLoss float64
	for idx := 1; idx < len(closes); idx++ {
		delta := closes[idx] - closes[idx-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)

		if idx == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}

		if avgLoss == 0 {
			series[idx] = 100
			continue
		}

		rs := avgGain / avgLoss
		series[idx] = 100 - 100/(1+rs)
	}

	return series
}

// RollingStd computes the standard deviation of the spread between the
// closes and the provided reference series over a trailing window.
func RollingStd(closes []float64, reference []float64, window int) []float64 {
	series := undefinedSeries(len(closes))
	if window < 2 || len(closes) != len(reference) {
		return series
	}

	for idx := window - 1; idx < len(closes); idx++ {
		var sum float64
		defined := true
		for pos := idx - window + 1; pos <= idx; pos++ {
			if !Defined(reference[pos]) {
				defined = false
				break
			}
			sum += closes[pos] - reference[pos]
		}
		if !defined {
			continue
		}

		mean := sum / float64(window)
		var variance float64
		for pos := idx - window + 1; pos <= idx; pos++ {
			spread := closes[pos] - reference[pos]
			variance += (spread - mean) * (spread - mean)
		}

		series[idx] = math.Sqrt(variance / float64(window-1))
	}

	return series
}

// Bollinger computes the upper and lower price envelopes of the provided
// reference series at the given standard deviation multiplier.
func Bollinger(reference []float64, std []float64, numStd float64) ([]float64, []float64) {
	upper := undefinedSeries(len(reference))
	lower := undefinedSeries(len(reference))
	if len(reference) != len(std) {
		return upper, lower
	}

	for idx := range reference {
		if !Defined(reference[idx]) || !Defined(std[idx]) {
			continue
		}

		upper[idx] = reference[idx] + numStd*std[idx]
		lower[idx] = reference[idx] - numStd*std[idx]
	}

	return upper, lower
}

// ZScore computes the standardized distance of each close from the provided
// reference series. Positions with a zero standard deviation are undefined.
func ZScore(closes []float64, reference []float64, std []float64) []float64 {
	series := undefinedSeries(len(closes))
	if len(closes) != len(reference) || len(closes) != len(std) {
		return series
	}

	for idx := range closes {
		if !Defined(reference[idx]) || !Defined(std[idx]) || std[idx] == 0 {
			continue
		}

		series[idx] = (closes[idx] - reference[idx]) / std[idx]
	}

	return series
}

// ZScoreROC computes the percentage rate of change of the provided z-score
// series. Positions following a zero or undefined z-score are undefined.
func ZScoreROC(zscores []float64) []float64 {
	series := undefinedSeries(len(zscores))
	for idx := 1; idx < len(zscores); idx++ {
		if !Defined(zscores[idx]) || !Defined(zscores[idx-1]) || zscores[idx-1] == 0 {
			continue
		}

		series[idx] = ((zscores[idx] - zscores[idx-1]) / zscores[idx-1]) * 100
	}

	return series
}

// TrailingMean computes the mean of the defined values among the trailing
// window positions of the provided series.
func TrailingMean(series []float64, window int) float64 {
	if window <= 0 || len(series) == 0 {
		return math.NaN()
	}

	start := len(series) - window
	if start < 0 {
		start = 0
	}

	var sum float64
	var count int
	for idx := start; idx < len(series); idx++ {
		if !Defined(series[idx]) {
			continue
		}
		sum += series[idx]
		count++
	}

	if count == 0 {
		return math.NaN()
	}

	return sum / float64(count)
}

// TrendSummary describes the underlying short and long term trend of the
// provided closes using the percent change of their moving averages.
func TrendSummary(ticker string, closes []float64, shortWindow int, longWindow int) string {
	shortTerm := trendDirection(SMA(closes, shortWindow))
	longTerm := trendDirection(SMA(closes, longWindow))

	return fmt.Sprintf("the long term trend for %s is %s, the short term trend is %s",
		ticker, longTerm, shortTerm)
}

// trendDirection describes the direction of the provided average series
// using the percent change between its first and last defined values.
func trendDirection(average []float64) string {
	var first, last float64
	var seeded bool
	for idx := range average {
		if !Defined(average[idx]) {
			continue
		}
		if !seeded {
			first = average[idx]
			seeded = true
		}
		last = average[idx]
	}

	if !seeded || first == 0 {
		return "flat"
	}

	pctChange := ((last - first) / first) * 100
	switch {
	case pctChange < 0:
		return fmt.Sprintf("downward with a percent change of %.2f", pctChange)
	case pctChange > 0:
		return fmt.Sprintf("upward with a percent change of %.2f", pctChange)
	default:
		return "flat"
	}
}
