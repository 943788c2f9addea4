package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fairline/fairline/internal/edgestore"
	"github.com/fairline/fairline/internal/ingest"
	"github.com/fairline/fairline/internal/ranking"
	"github.com/fairline/fairline/internal/snapshot"
	"github.com/fairline/fairline/pkg/contracts"
	"github.com/fairline/fairline/pkg/models"
)

// OddsHandler serves cached snapshots and ranked rows.
type OddsHandler struct {
	store  contracts.SnapshotStore
	engine *ranking.Engine
	edges  *edgestore.Store // nil when persistence is disabled
	sports []string
	log    zerolog.Logger

	defaultPageSize int
}

// NewOddsHandler creates the odds API handler. edges may be nil.
func NewOddsHandler(
	store contracts.SnapshotStore,
	engine *ranking.Engine,
	edges *edgestore.Store,
	sports []string,
	defaultPageSize int,
	log zerolog.Logger,
) *OddsHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = ranking.DefaultPageSize
	}
	return &OddsHandler{
		store:           store,
		engine:          engine,
		edges:           edges,
		sports:          sports,
		log:             log,
		defaultPageSize: defaultPageSize,
	}
}

// GetSports returns the configured sport keys.
// GET /api/v1/sports
func (h *OddsHandler) GetSports(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sports": h.sports,
		"count":  len(h.sports),
	})
}

// GetOddsData returns the canonical games snapshot for a sport.
// GET /api/v1/odds-data?sport={sport_key}
func (h *OddsHandler) GetOddsData(w http.ResponseWriter, r *http.Request) {
	sportKey := h.sportParam(r)

	games, ok := h.loadGames(w, r, sportKey)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sport": sportKey,
		"games": games,
		"count": len(games),
	})
}

// GetRankings runs the full pipeline over the cached snapshot.
// GET /api/v1/rankings?sport=&markets=&books=&ev_min=&positive_only=&sort=&dir=&page=&page_size=
func (h *OddsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	sportKey := h.sportParam(r)

	games, ok := h.loadGames(w, r, sportKey)
	if !ok {
		return
	}

	opts := h.parseOptions(r)
	result := h.engine.Rank(games, opts)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sport":       sportKey,
		"rows":        result.PageRows,
		"page":        result.Page,
		"total_pages": result.TotalPages,
		"total_rows":  len(result.Rows),
	})
}

// GetEdges returns recently persisted positive-EV rows.
// GET /api/v1/edges?sport=&limit=
func (h *OddsHandler) GetEdges(w http.ResponseWriter, r *http.Request) {
	if h.edges == nil {
		respondError(w, h.log, http.StatusNotImplemented, "edge history is not enabled", nil)
		return
	}

	sportKey := r.URL.Query().Get("sport")
	limit := parseIntParam(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := h.edges.RecentEdges(r.Context(), sportKey, time.Hour, limit)
	if err != nil {
		respondError(w, h.log, http.StatusInternalServerError, "failed to query edges", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"edges": records,
		"count": len(records),
	})
}

func (h *OddsHandler) sportParam(r *http.Request) string {
	if sport := r.URL.Query().Get("sport"); sport != "" {
		return sport
	}
	if len(h.sports) > 0 {
		return h.sports[0]
	}
	return "basketball_nba"
}

func (h *OddsHandler) loadGames(w http.ResponseWriter, r *http.Request, sportKey string) ([]models.Game, bool) {
	payload, err := h.store.LoadSnapshot(r.Context(), sportKey)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		respondError(w, h.log, http.StatusNotFound, "no snapshot for sport "+sportKey, nil)
		return nil, false
	}
	if err != nil {
		respondError(w, h.log, http.StatusInternalServerError, "failed to load snapshot", err)
		return nil, false
	}

	games, err := ingest.Games(payload)
	if err != nil {
		respondError(w, h.log, http.StatusInternalServerError, "snapshot payload is malformed", err)
		return nil, false
	}

	return games, true
}

// parseOptions maps query parameters onto ranking options.
func (h *OddsHandler) parseOptions(r *http.Request) ranking.Options {
	q := r.URL.Query()

	opts := ranking.Options{
		Markets:  splitParam(q.Get("markets")),
		Books:    splitParam(strings.ToLower(q.Get("books"))),
		SortKey:  q.Get("sort"),
		SortDir:  q.Get("dir"),
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "page_size", h.defaultPageSize),
	}

	if raw := q.Get("ev_min"); raw != "" {
		if min, err := strconv.ParseFloat(raw, 64); err == nil {
			opts.EVMin = &min
		}
	}
	if q.Get("positive_only") == "true" {
		opts.EVOnlyPositive = true
	}

	return opts
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
