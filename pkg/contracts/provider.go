package contracts

import (
	"context"

	"github.com/fairline/fairline/pkg/models"
)

// GamesProvider supplies the latest odds snapshot for a sport.
type GamesProvider interface {
	// FetchGames returns every upcoming event for the sport with all
	// bookmakers' quotes attached, in vendor order.
	FetchGames(ctx context.Context, sportKey string) ([]models.Game, error)

	// ListSports returns the sport keys the provider can serve.
	ListSports(ctx context.Context) ([]string, error)
}

// FairProbEstimator estimates the no-vig probability of a row's selection.
type FairProbEstimator interface {
	// FairProb reports not-ok when market depth is insufficient for a
	// trustworthy estimate.
	FairProb(row *models.Row) (float64, bool)
}

// SnapshotStore caches the latest raw games payload per sport.
type SnapshotStore interface {
	StoreSnapshot(ctx context.Context, sportKey string, payload []byte) error
	LoadSnapshot(ctx context.Context, sportKey string) ([]byte, error)
}
