package shared

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func TestParseCandlesticks(t *testing.T) {
	data := `[{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"2025-02-04 15:05:00"}]`
	gjd := gjson.Parse(data).Array()

	// Ensure candlestick data can be parsed.
	candles, err := ParseCandlesticks(gjd, time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 1)

	want := Candlestick{
		Open:   10,
		Close:  12,
		High:   15,
		Low:    8,
		Volume: 5,
		Date:   time.Date(2025, 2, 4, 15, 5, 0, 0, time.UTC),
	}
	if !cmp.Equal(candles[0], want) {
		t.Errorf("mismatching candle, got %v", cmp.Diff(candles[0], want))
	}

	// Ensure malformed dates are rejected.
	malformed := gjson.Parse(`[{"open":10,"close":12,"date":"not-a-date"}]`).Array()
	_, err = ParseCandlesticks(malformed, time.UTC)
	assert.Error(t, err)
}

func TestPriceHistoryValidate(t *testing.T) {
	start := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)

	// Ensure a well formed history validates.
	history := &PriceHistory{
		Ticker: "AAPL",
		Candles: []Candlestick{
			{Close: 10, Date: start},
			{Close: 11, Date: start.AddDate(0, 0, 1)},
		},
		IntervalType: Day,
		Interval:     1,
	}
	assert.NoError(t, history.Validate())

	// Ensure an empty ticker is rejected.
	history.Ticker = ""
	assert.Error(t, history.Validate())
	history.Ticker = "AAPL"

	// Ensure an empty candle set is rejected.
	empty := &PriceHistory{Ticker: "AAPL", Candles: nil, IntervalType: Day, Interval: 1}
	assert.Error(t, empty.Validate())

	// Ensure a non-positive interval is rejected.
	history.Interval = 0
	assert.Error(t, history.Validate())
	history.Interval = 1

	// Ensure out of order candles are rejected.
	unordered := &PriceHistory{
		Ticker: "AAPL",
		Candles: []Candlestick{
			{Close: 10, Date: start},
			{Close: 11, Date: start},
		},
		IntervalType: Day,
		Interval:     1,
	}
	assert.Error(t, unordered.Validate())
}

func TestPriceHistoryAccessors(t *testing.T) {
	start := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)
	history := &PriceHistory{
		Ticker: "AAPL",
		Candles: []Candlestick{
			{Close: 10, Date: start},
			{Close: 11, Date: start.AddDate(0, 0, 1)},
			{Close: 12, Date: start.AddDate(0, 0, 2)},
		},
		IntervalType: Day,
		Interval:     1,
	}

	// Ensure closes are returned in chronological order.
	closes := history.Closes()
	assert.Equal(t, closes, []float64{10, 11, 12})

	// Ensure the latest candle is returned.
	latest := history.Last()
	assert.Equal(t, latest.Close, float64(12))

	// Ensure an empty history has no latest candle.
	empty := &PriceHistory{Ticker: "AAPL"}
	assert.Nil(t, empty.Last())
}
