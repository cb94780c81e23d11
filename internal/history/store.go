// Package history is the pull-based historical collaborator: daily close
// bars per symbol in SQLite, served as PricePoint series plus summary stats
// for the dashboard header.
package history

import (
	"database/sql"
	"fmt"
	"log"

	"tradeboard/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Store provides access to the daily-bar database.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens the database with WAL mode and creates the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[history] opened database at %s", dbPath)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_bars (
			symbol TEXT    NOT NULL,
			ts     INTEGER NOT NULL,
			close  REAL    NOT NULL,
			PRIMARY KEY (symbol, ts)
		);
	`)
	return err
}

// Bars reads the daily closes for a symbol between from and to (unix
// seconds, inclusive), ordered by timestamp ascending.
func (s *Store) Bars(symbol string, from, to int64) ([]model.PricePoint, error) {
	rows, err := s.db.Query(`
		SELECT ts, close
		FROM daily_bars
		WHERE symbol = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("sqlite query daily_bars: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			return nil, fmt.Errorf("sqlite scan daily_bars: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Load reads the bars for a symbol and range and derives the summary stats.
func (s *Store) Load(symbol string, from, to int64) (model.HistoryResult, error) {
	points, err := s.Bars(symbol, from, to)
	if err != nil {
		return model.HistoryResult{}, err
	}
	return model.HistoryResult{
		Symbol: symbol,
		Points: points,
		Stats:  Summarize(points),
	}, nil
}

// Upsert inserts or replaces daily bars in one transaction.
func (s *Store) Upsert(symbol string, bars []model.PricePoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_bars (symbol, ts, close) VALUES (?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol, b.Time, b.Value); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert bar: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Summarize derives the header stats from an ordered bar series. An empty
// series yields zero stats.
func Summarize(points []model.PricePoint) model.SummaryStats {
	if len(points) == 0 {
		return model.SummaryStats{}
	}
	stats := model.SummaryStats{
		Open:        points[0].Value,
		High:        points[0].Value,
		Low:         points[0].Value,
		LatestClose: points[len(points)-1].Value,
	}
	if len(points) > 1 {
		stats.PriorClose = points[len(points)-2].Value
	}
	for _, p := range points {
		if p.Value > stats.High {
			stats.High = p.Value
		}
		if p.Value < stats.Low {
			stats.Low = p.Value
		}
	}
	return stats
}
