package shared

import (
	"fmt"
	"strings"
)

// TradeSignal represents a discrete trading decision for an instrument.
type TradeSignal int

const (
	Hold TradeSignal = iota
	Buy
	StrongBuy
	Sell
	StrongSell
	Long
	Short
	TakeProfit
)

// String stringifies the provided trade signal.
func (s *TradeSignal) String() string {
	switch *s {
	case Hold:
		return "HOLD"
	case Buy:
		return "BUY"
	case StrongBuy:
		return "STRONG_BUY"
	case Sell:
		return "SELL"
	case StrongSell:
		return "STRONG_SELL"
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	case TakeProfit:
		return "TAKE_PROFIT"
	default:
		return "unknown"
	}
}

// Side represents the side of a trade decision.
type Side int

const (
	SellSide Side = iota
	BuySide
)

// String stringifies the provided side.
func (s *Side) String() string {
	switch *s {
	case SellSide:
		return "sell side"
	case BuySide:
		return "buy side"
	default:
		return "unknown"
	}
}

// RewardType represents the profit taking reward policy for an instrument.
type RewardType int

const (
	NormalReward RewardType = iota
	DynamicReward
)

// String stringifies the provided reward type.
func (r *RewardType) String() string {
	switch *r {
	case NormalReward:
		return "normal"
	case DynamicReward:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ParseRewardType parses a reward type from the provided string.
func ParseRewardType(reward string) (RewardType, error) {
	switch strings.ToLower(reward) {
	case "normal":
		return NormalReward, nil
	case "dynamic":
		return DynamicReward, nil
	default:
		return 0, fmt.Errorf("unknown reward type: %s", reward)
	}
}

// MovingAverageType represents the moving average flavour used as the
// indicator reference.
type MovingAverageType int

const (
	SimpleAverage MovingAverageType = iota
	ExponentialAverage
)

// String stringifies the provided moving average type.
func (m *MovingAverageType) String() string {
	switch *m {
	case SimpleAverage:
		return "sma"
	case ExponentialAverage:
		return "ema"
	default:
		return "unknown"
	}
}

// ParseMovingAverageType parses a moving average type from the provided string.
func ParseMovingAverageType(average string) (MovingAverageType, error) {
	switch strings.ToLower(average) {
	case "simple", "sma":
		return SimpleAverage, nil
	case "exponential", "ema":
		return ExponentialAverage, nil
	default:
		return 0, fmt.Errorf("unknown moving average type: %s", average)
	}
}
