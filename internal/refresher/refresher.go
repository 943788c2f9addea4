// Package refresher drives the background fetch → cache → rank → broadcast
// cycle.
package refresher

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/fairline/fairline/internal/edgestore"
	"github.com/fairline/fairline/internal/fetcher"
	"github.com/fairline/fairline/internal/hub"
	"github.com/fairline/fairline/internal/ranking"
	"github.com/fairline/fairline/pkg/contracts"
	"github.com/fairline/fairline/pkg/models"
)

var (
	refreshCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fairline_refresh_cycles_total",
		Help: "Completed refresh cycles.",
	})
	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fairline_fetch_errors_total",
		Help: "Upstream fetch failures per sport.",
	}, []string{"sport"})
	rowsComputed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fairline_rows_computed",
		Help: "Rows produced by the last ranking pass per sport.",
	}, []string{"sport"})
	edgesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fairline_edges_persisted_total",
		Help: "Positive-EV rows written to the edge store.",
	})
)

// minPersistEV is the EV percentage floor for writing a row to the edge
// store; tiny edges churn the table without being actionable.
const minPersistEV = 1.0

// Refresher periodically refreshes every configured sport.
type Refresher struct {
	client   *fetcher.Client
	store    contracts.SnapshotStore
	engine   *ranking.Engine
	hub      *hub.Hub
	edges    *edgestore.Store // nil when persistence is disabled
	sports   []string
	markets  []string
	interval time.Duration
	log      zerolog.Logger

	// previous ranked rows per sport, for delta broadcasts
	previous map[string][]*models.Row
}

// New creates a refresher. edges may be nil.
func New(
	client *fetcher.Client,
	store contracts.SnapshotStore,
	engine *ranking.Engine,
	h *hub.Hub,
	edges *edgestore.Store,
	sports, markets []string,
	interval time.Duration,
	log zerolog.Logger,
) *Refresher {
	return &Refresher{
		client:   client,
		store:    store,
		engine:   engine,
		hub:      h,
		edges:    edges,
		sports:   sports,
		markets:  markets,
		interval: interval,
		log:      log,
		previous: make(map[string][]*models.Row),
	}
}

// Run executes one refresh immediately, then on every tick until ctx is
// cancelled.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh runs one full cycle across all sports.
func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()

	for _, res := range r.client.FetchAll(ctx, r.sports) {
		if res.Err != nil {
			fetchErrors.WithLabelValues(res.SportKey).Inc()
			r.log.Error().Err(res.Err).Str("sport", res.SportKey).Msg("fetch failed, keeping previous snapshot")
			continue
		}

		if err := r.store.StoreSnapshot(ctx, res.SportKey, res.Payload); err != nil {
			r.log.Error().Err(err).Str("sport", res.SportKey).Msg("snapshot store failed")
		}

		r.rankAndPublish(ctx, res.SportKey, res.Games)
	}

	refreshCycles.Inc()
	r.log.Info().Dur("took", time.Since(start)).Int("sports", len(r.sports)).Msg("refresh cycle complete")
}

func (r *Refresher) rankAndPublish(ctx context.Context, sportKey string, games []models.Game) {
	// Only the full Rows slice matters here; pagination is for the API.
	result := r.engine.Rank(games, ranking.Options{Markets: r.markets})
	rowsComputed.WithLabelValues(sportKey).Set(float64(len(result.Rows)))

	deltas := ranking.Diff(r.previous[sportKey], result.Rows)
	r.previous[sportKey] = result.Rows

	if len(deltas) > 0 {
		r.hub.Broadcast(hub.Update{
			SportKey: sportKey,
			Deltas:   deltas,
			SentAt:   time.Now().UTC(),
		})
	}

	r.persistEdges(ctx, result.Rows)
}

// persistEdges writes rows whose EV clears the floor. Failures are logged
// and skipped; history is best-effort.
func (r *Refresher) persistEdges(ctx context.Context, rows []*models.Row) {
	if r.edges == nil {
		return
	}

	for _, row := range rows {
		if row.EV == nil || *row.EV < minPersistEV {
			continue
		}
		if _, err := r.edges.WriteEdge(ctx, row); err != nil {
			r.log.Error().Err(err).Str("row", row.Key).Msg("edge persist failed")
			continue
		}
		edgesPersisted.Inc()
	}
}
