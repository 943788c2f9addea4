// Package ranking computes expected value per candidate row, collapses
// duplicate lines, and orders the result set for display.
package ranking

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fairline/fairline/internal/rows"
	"github.com/fairline/fairline/pkg/contracts"
	"github.com/fairline/fairline/pkg/models"
	"github.com/fairline/fairline/pkg/oddsmath"
)

// missingEV stands in for an absent EV during comparisons so rows without an
// estimate always lose against rows that have one, but still survive when
// alone in their dedup bucket.
const missingEV = -999.0

// DefaultPageSize is the page length when the caller does not set one.
const DefaultPageSize = 15

// Options configures one ranking pass. The zero value means: default market
// set, no bookmaker filter, no EV filters, ev desc, page 1 of DefaultPageSize.
type Options struct {
	Markets        []string
	Books          []string
	EVMin          *float64
	EVOnlyPositive bool
	SortKey        string // ev, match, line, book, odds, time, market
	SortDir        string // asc, desc
	Page           int
	PageSize       int
}

// Result is a ranked, paginated row set.
type Result struct {
	Rows       []*models.Row `json:"rows"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PageRows   []*models.Row `json:"page_rows"`
}

// Engine runs the full pipeline: build rows, estimate fair probabilities,
// filter, dedup, sort, paginate. The pipeline is deterministic for a given
// input game order, and never fails on malformed records.
type Engine struct {
	estimator contracts.FairProbEstimator
}

// NewEngine creates an engine around a fair-probability estimator.
func NewEngine(estimator contracts.FairProbEstimator) *Engine {
	return &Engine{estimator: estimator}
}

// Rank executes one pass over a games snapshot.
func (e *Engine) Rank(games []models.Game, opts Options) Result {
	builder := rows.NewBuilder(opts.Markets, opts.Books)
	candidates := builder.Build(games)

	for _, row := range candidates {
		e.annotate(row)
	}

	candidates = filterRows(candidates, opts)
	candidates = dedupRows(candidates)
	sortRows(candidates, opts.SortKey, opts.SortDir)

	return paginate(candidates, opts.Page, opts.PageSize)
}

// annotate fills in the row's EV and fair odds. Both stay nil when market
// depth is insufficient; that is deliberate absence of signal, not an error.
func (e *Engine) annotate(row *models.Row) {
	p, ok := e.estimator.FairProb(row)
	if !ok || p <= 0 {
		return
	}

	fair := oddsmath.DecimalToAmerican(1.0 / p)
	row.FairOdds = &fair

	if ev, ok := oddsmath.ExpectedValue(row.Best.Price, fair); ok {
		row.EV = &ev
	}
}

// filterRows applies the caller's EV filters before deduplication, so a
// filtered-out best side can expose the other side of its line.
func filterRows(in []*models.Row, opts Options) []*models.Row {
	if opts.EVMin == nil && !opts.EVOnlyPositive {
		return in
	}

	out := in[:0]
	for _, row := range in {
		ev := evOrMissing(row)
		if opts.EVOnlyPositive && ev <= 0 {
			continue
		}
		if opts.EVMin != nil && ev < *opts.EVMin {
			continue
		}
		out = append(out, row)
	}
	return out
}

// dedupRows keeps one row per (game, market, line bucket). Spreads bucket on
// the absolute line so +3.5 and -3.5 collapse and only one side of a spread
// surfaces per game. Within a bucket the highest EV wins; absent EV counts
// as missingEV, so it survives only when alone.
func dedupRows(in []*models.Row) []*models.Row {
	type slot struct{ idx int }
	best := make(map[string]slot, len(in))
	out := make([]*models.Row, 0, len(in))

	for _, row := range in {
		bucket := row.Game.ID + "|" + row.Best.MarketKey + "|" + lineBucket(row)
		if s, ok := best[bucket]; ok {
			if evOrMissing(row) > evOrMissing(out[s.idx]) {
				out[s.idx] = row
			}
			continue
		}
		best[bucket] = slot{idx: len(out)}
		out = append(out, row)
	}
	return out
}

// lineBucket is the dedup key component for the row's line: absolute value
// for spreads, the raw line string otherwise.
func lineBucket(row *models.Row) string {
	p := row.Best.Point
	if row.Best.MarketKey == "spreads" && p != nil && p.IsNum {
		return strconv.FormatFloat(math.Abs(p.Num), 'f', -1, 64)
	}
	return models.PointKey(p)
}

// sortRows orders rows under the given key and direction, defaulting to
// ev desc. The sort is stable so equal keys keep pipeline order.
func sortRows(rws []*models.Row, key, dir string) {
	if key == "" {
		key = "ev"
	}
	asc := dir == "asc"

	less := lessFunc(key)
	sort.SliceStable(rws, func(i, j int) bool {
		if asc {
			return less(rws[i], rws[j])
		}
		return less(rws[j], rws[i])
	})
}

func lessFunc(key string) func(a, b *models.Row) bool {
	switch key {
	case "match":
		return func(a, b *models.Row) bool { return matchName(a) < matchName(b) }
	case "line":
		return func(a, b *models.Row) bool {
			return models.PointNum(a.Best.Point) < models.PointNum(b.Best.Point)
		}
	case "book":
		return func(a, b *models.Row) bool { return a.Best.BookTitle < b.Best.BookTitle }
	case "odds":
		return func(a, b *models.Row) bool { return a.Best.Price < b.Best.Price }
	case "time":
		return func(a, b *models.Row) bool {
			return a.Game.CommenceTime.Before(b.Game.CommenceTime)
		}
	case "market":
		return func(a, b *models.Row) bool { return a.Best.MarketKey < b.Best.MarketKey }
	default: // ev
		return func(a, b *models.Row) bool { return evOrMissing(a) < evOrMissing(b) }
	}
}

func matchName(r *models.Row) string {
	return strings.TrimSpace(r.Game.HomeTeam + " " + r.Game.AwayTeam)
}

func evOrMissing(r *models.Row) float64 {
	if r.EV == nil {
		return missingEV
	}
	return *r.EV
}

// paginate slices the ranked set into one page. Page indices are 1-based and
// clamped into range.
func paginate(rws []*models.Row, page, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := (len(rws) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if total > 0 && page > total {
		page = total
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(rws) {
		start = len(rws)
	}
	if end > len(rws) {
		end = len(rws)
	}

	return Result{
		Rows:       rws,
		TotalPages: total,
		Page:       page,
		PageRows:   rws[start:end],
	}
}
