package strategy

import (
	"sync"

	"github.com/dnldd/strategist/shared"
)

// TriggerState represents the mutable per-instrument memory consulted and
// updated by decision engines across repeated evaluations. Each instrument's
// evaluation task is the sole writer of its trigger state during a batch.
type TriggerState struct {
	// ProfitTriggerAmount is the price anchor for dynamic profit taking.
	ProfitTriggerAmount float64
	// CurrentCount is the consecutive hold count while a position is held.
	CurrentCount int
	// CountLimit is the hold count at which the profit take threshold is
	// overridden by the reward policy.
	CountLimit int
	// RewardType is the profit taking reward policy.
	RewardType shared.RewardType
	// RewardAmount is the reward percent applied by the reward policy.
	RewardAmount float64
	// LastSignal is the previously emitted signal for the instrument.
	LastSignal shared.TradeSignal
}

// TriggerStoreConfig represents the trigger store configuration.
type TriggerStoreConfig struct {
	// CountLimit is the default hold count limit for new trigger states.
	CountLimit int
	// RewardType is the default reward policy for new trigger states.
	RewardType shared.RewardType
	// RewardAmount is the default reward percent for new trigger states.
	RewardAmount float64
}

// TriggerStore owns the trigger states of tracked instruments and hands
// them out by ticker. States are created with configured defaults on first
// lookup and never deleted while the instrument is tracked.
type TriggerStore struct {
	cfg       *TriggerStoreConfig
	states    map[string]*TriggerState
	statesMtx sync.RWMutex
}

// NewTriggerStore initializes a new trigger store.
func NewTriggerStore(cfg *TriggerStoreConfig) *TriggerStore {
	return &TriggerStore{
		cfg:    cfg,
		states: make(map[string]*TriggerState),
	}
}

// Fetch returns the trigger state for the provided ticker, creating it with
// the configured defaults on first lookup.
func (s *TriggerStore) Fetch(ticker string) *TriggerState {
	s.statesMtx.RLock()
	state, ok := s.states[ticker]
	s.statesMtx.RUnlock()
	if ok {
		return state
	}

	s.statesMtx.Lock()
	defer s.statesMtx.Unlock()

	// Re-check under the write lock before creating.
	state, ok = s.states[ticker]
	if ok {
		return state
	}

	state = &TriggerState{
		CountLimit:   s.cfg.CountLimit,
		RewardType:   s.cfg.RewardType,
		RewardAmount: s.cfg.RewardAmount,
		LastSignal:   shared.Hold,
	}
	s.states[ticker] = state

	return state
}
