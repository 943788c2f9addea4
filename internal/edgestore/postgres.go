// Package edgestore persists positive-EV rows so edge history survives
// refresh cycles.
package edgestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fairline/fairline/pkg/models"
)

// Store writes detected edges to Postgres.
type Store struct {
	db *sql.DB
}

// New creates a store around an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// WriteEdge records one positive-EV row and its competing offers in a single
// transaction. Returns the edge ID.
func (s *Store) WriteEdge(ctx context.Context, row *models.Row) (int64, error) {
	if row.EV == nil {
		return 0, fmt.Errorf("row %s has no EV estimate", row.Key)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if commit doesn't happen

	edgeQuery := `
		INSERT INTO edges (
			row_key, sport_key, event_id, home_team, away_team,
			market_key, outcome_name, line, book_key, price,
			ev_pct, fair_odds, commence_time, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	var fairOdds sql.NullFloat64
	if row.FairOdds != nil {
		fairOdds = sql.NullFloat64{Float64: *row.FairOdds, Valid: true}
	}

	var edgeID int64
	err = tx.QueryRowContext(
		ctx,
		edgeQuery,
		row.Key,
		row.Game.SportKey,
		row.Game.ID,
		row.Game.HomeTeam,
		row.Game.AwayTeam,
		row.Best.MarketKey,
		row.Best.Name,
		models.PointKey(row.Best.Point),
		row.Best.BookKey,
		row.Best.Price,
		*row.EV,
		fairOdds,
		row.Game.CommenceTime,
		time.Now().UTC(),
	).Scan(&edgeID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert edge: %w", err)
	}

	offerQuery := `
		INSERT INTO edge_offers (
			edge_id, book_key, book_title, outcome_name, price, line
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, offer := range row.AllBooks {
		_, err = tx.ExecContext(
			ctx,
			offerQuery,
			edgeID,
			offer.BookKey,
			offer.BookTitle,
			offer.Name,
			offer.Price,
			models.PointKey(offer.Point),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert edge offer: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return edgeID, nil
}

// RecentEdges returns edges detected within the window, newest first.
func (s *Store) RecentEdges(ctx context.Context, sportKey string, window time.Duration, limit int) ([]EdgeRecord, error) {
	query := `
		SELECT id, row_key, sport_key, event_id, market_key, outcome_name,
		       book_key, price, ev_pct, detected_at
		FROM edges
		WHERE detected_at > $1
	`
	args := []interface{}{time.Now().UTC().Add(-window)}

	if sportKey != "" {
		query += " AND sport_key = $2"
		args = append(args, sportKey)
	}
	query += fmt.Sprintf(" ORDER BY detected_at DESC LIMIT %d", limit)

	dbRows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer dbRows.Close()

	var records []EdgeRecord
	for dbRows.Next() {
		var rec EdgeRecord
		if err := dbRows.Scan(
			&rec.ID, &rec.RowKey, &rec.SportKey, &rec.EventID, &rec.MarketKey,
			&rec.OutcomeName, &rec.BookKey, &rec.Price, &rec.EVPercent, &rec.DetectedAt,
		); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, dbRows.Err()
}

// EdgeRecord is one persisted edge row.
type EdgeRecord struct {
	ID          int64     `json:"id"`
	RowKey      string    `json:"row_key"`
	SportKey    string    `json:"sport_key"`
	EventID     string    `json:"event_id"`
	MarketKey   string    `json:"market_key"`
	OutcomeName string    `json:"outcome_name"`
	BookKey     string    `json:"book_key"`
	Price       float64   `json:"price"`
	EVPercent   float64   `json:"ev_pct"`
	DetectedAt  time.Time `json:"detected_at"`
}
