package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dnldd/strategist/shared"
	"github.com/google/uuid"
)

// Record represents an immutable trade decision entry for an instrument.
type Record struct {
	// ID uniquely identifies the record.
	ID string
	// Ticker is the instrument symbol the decision applies to.
	Ticker string
	// Action describes the decision made.
	Action string
	// Side is the side of the decision.
	Side shared.Side
	// Signal is the trade signal that produced the record.
	Signal shared.TradeSignal
	// Value is the price per share for opened positions or the profit or
	// loss per share for closed ones.
	Value float64
	// CreatedOn is the evaluation timestamp of the decision.
	CreatedOn time.Time
}

// NewOpenRecord initializes a trade record for an opened position.
func NewOpenRecord(ticker string, signal shared.TradeSignal, side shared.Side,
	price float64, created time.Time) Record {
	return Record{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Action:    fmt.Sprintf("opened %s position @ %.2f/share", signal.String(), price),
		Side:      side,
		Signal:    signal,
		Value:     price,
		CreatedOn: created,
	}
}

// NewCloseRecord initializes a trade record for a closed position.
func NewCloseRecord(ticker string, signal shared.TradeSignal, side shared.Side,
	pnl float64, created time.Time) Record {
	return Record{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Action:    fmt.Sprintf("closed position, %.2f/share", pnl),
		Side:      side,
		Signal:    signal,
		Value:     pnl,
		CreatedOn: created,
	}
}

// Ledger represents an append-only log of trade decisions per instrument.
// Appends are safe for concurrent use by multiple evaluation tasks.
type Ledger struct {
	records    map[string][]Record
	recordsMtx sync.RWMutex
}

// NewLedger initializes a new trade record ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[string][]Record),
	}
}

// Append adds the provided record to the ledger.
func (l *Ledger) Append(record Record) {
	l.recordsMtx.Lock()
	defer l.recordsMtx.Unlock()

	l.records[record.Ticker] = append(l.records[record.Ticker], record)
}

// Records returns the ordered trade records for the provided ticker.
func (l *Ledger) Records(ticker string) []Record {
	l.recordsMtx.RLock()
	defer l.recordsMtx.RUnlock()

	records := make([]Record, len(l.records[ticker]))
	copy(records, l.records[ticker])

	return records
}

// Tickers returns the set of tickers with ledger entries.
func (l *Ledger) Tickers() []string {
	l.recordsMtx.RLock()
	defer l.recordsMtx.RUnlock()

	tickers := make([]string, 0, len(l.records))
	for ticker := range l.records {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	return tickers
}
