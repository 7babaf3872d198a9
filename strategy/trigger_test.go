package strategy

import (
	"testing"

	"github.com/dnldd/strategist/shared"
	"github.com/peterldowns/testy/assert"
)

func TestTriggerStore(t *testing.T) {
	store := NewTriggerStore(&TriggerStoreConfig{
		CountLimit:   5,
		RewardType:   shared.DynamicReward,
		RewardAmount: 10,
	})

	// Ensure first lookup creates a state with the configured defaults.
	state := store.Fetch("AAPL")
	assert.Equal(t, state.CountLimit, 5)
	assert.Equal(t, state.RewardType, shared.DynamicReward)
	assert.Equal(t, state.RewardAmount, float64(10))
	assert.Equal(t, state.LastSignal, shared.Hold)
	assert.Equal(t, state.CurrentCount, 0)
	assert.Equal(t, state.ProfitTriggerAmount, float64(0))

	// Ensure refetching a ticker returns the same state.
	state.CurrentCount = 3
	refetched := store.Fetch("AAPL")
	assert.True(t, refetched == state)
	assert.Equal(t, refetched.CurrentCount, 3)

	// Ensure distinct tickers get distinct states.
	other := store.Fetch("GOOG")
	assert.Equal(t, other.CurrentCount, 0)
}
