package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestTradeSignalString(t *testing.T) {
	tests := []struct {
		name   string
		signal TradeSignal
		want   string
	}{
		{"hold", Hold, "HOLD"},
		{"buy", Buy, "BUY"},
		{"strong buy", StrongBuy, "STRONG_BUY"},
		{"sell", Sell, "SELL"},
		{"strong sell", StrongSell, "STRONG_SELL"},
		{"long", Long, "LONG"},
		{"short", Short, "SHORT"},
		{"take profit", TakeProfit, "TAKE_PROFIT"},
		{"unknown", TradeSignal(999), "unknown"},
	}

	for _, test := range tests {
		str := test.signal.String()
		if str != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, str)
		}
	}
}

func TestSideString(t *testing.T) {
	sell := SellSide
	buy := BuySide
	assert.Equal(t, sell.String(), "sell side")
	assert.Equal(t, buy.String(), "buy side")
}

func TestParseRewardType(t *testing.T) {
	// Ensure reward types parse from their names.
	reward, err := ParseRewardType("normal")
	assert.NoError(t, err)
	assert.Equal(t, reward, NormalReward)

	reward, err = ParseRewardType("DYNAMIC")
	assert.NoError(t, err)
	assert.Equal(t, reward, DynamicReward)

	// Ensure unknown reward types are rejected.
	_, err = ParseRewardType("jackpot")
	assert.Error(t, err)
}

func TestParseMovingAverageType(t *testing.T) {
	// Ensure moving average types parse from their long and short forms.
	average, err := ParseMovingAverageType("simple")
	assert.NoError(t, err)
	assert.Equal(t, average, SimpleAverage)

	average, err = ParseMovingAverageType("ema")
	assert.NoError(t, err)
	assert.Equal(t, average, ExponentialAverage)

	// Ensure unknown moving average types are rejected.
	_, err = ParseMovingAverageType("hull")
	assert.Error(t, err)
}
