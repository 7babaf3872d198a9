package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/strategist/ledger"
	"github.com/dnldd/strategist/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createRecordTableSQL   = "CREATE TABLE IF NOT EXISTS record (id TEXT PRIMARY KEY, ticker TEXT, action TEXT, side INTEGER, signal INTEGER, value REAL, createdon INTEGER)"
	createMetadataTableSQL = "CREATE TABLE IF NOT EXISTS metadata (id TEXT PRIMARY KEY, total INTEGER, buys INTEGER, sells INTEGER, takeprofits INTEGER, createdon INTEGER)"
	persistRecordSQL       = "INSERT INTO record(id, ticker, action, side, signal, value, createdon) VALUES(?,?,?,?,?,?,?)"
	findMetadataSQL        = "SELECT * FROM metadata WHERE id = ?"
	updateMetadataSQL      = "UPDATE metadata SET total = total + 1, buys = buys + ?, sells = sells + ?, takeprofits = takeprofits + ? WHERE id = ?"
	persistMetadataSQL     = "INSERT INTO metadata(id, total, buys, sells, takeprofits, createdon) VALUES(?,?,?,?,?,?)"
)

// RecordStorer defines the requirements for storing trade records.
type RecordStorer interface {
	// PersistRecord stores the provided trade record to the database.
	PersistRecord(ctx context.Context, record *ledger.Record) error
}

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the RecordStorer interface.
var _ RecordStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createRecordTableSQL},
		{SQL: createMetadataTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// generateMetadataID generates deterministic ids for metadata using the
// current month, week and ticker.
func generateMetadataID(currentTime time.Time, ticker string) string {
	month := currentTime.Month().String()
	week := currentTime.Day() / 7

	id := fmt.Sprintf("%s-Week-%d-%s", month, week, ticker)
	return id
}

// PersistRecord stores the provided trade record to the database.
func (db *Database) PersistRecord(ctx context.Context, record *ledger.Record) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistRecordSQL,
			PositionalParams: []any{record.ID, record.Ticker, record.Action, record.Side,
				record.Signal, record.Value, record.CreatedOn.Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	var buy, sell, takeProfit int
	switch {
	case record.Signal == shared.TakeProfit:
		takeProfit++
	case record.Side == shared.BuySide:
		buy++
	case record.Side == shared.SellSide:
		sell++
	default:
		db.cfg.Logger.Error().Msgf("unexpected record state for metadata calculations: %s",
			spew.Sdump(record))
	}

	id := generateMetadataID(record.CreatedOn, record.Ticker)
	resp, err := db.client.QuerySingle(ctx, findMetadataSQL, id)
	if err != nil {
		return err
	}

	exists := len(resp.GetQueryResultsAssoc()) > 0
	switch {
	case exists:
		resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
			{
				SQL:              updateMetadataSQL,
				PositionalParams: []any{buy, sell, takeProfit, id},
			},
		}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
		if err != nil {
			return err
		}
		has, idx, errStr := resp.HasError()
		if has {
			return fmt.Errorf("updating metadata %s: %d -> %s", id, idx, errStr)
		}
	default:
		resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
			{
				SQL:              persistMetadataSQL,
				PositionalParams: []any{id, 1, buy, sell, takeProfit, record.CreatedOn.Unix()},
			},
		}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
		if err != nil {
			return err
		}
		has, idx, errStr := resp.HasError()
		if has {
			return fmt.Errorf("persisting metadata %s: %d -> %s", id, idx, errStr)
		}
	}

	return nil
}
