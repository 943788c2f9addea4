// Package rows flattens raw game feeds into candidate bet rows, one per
// (game, market, selection, line) tuple, each carrying the best-priced offer
// and the full competing offer pool.
package rows

import (
	"fmt"

	"github.com/fairline/fairline/pkg/models"
)

// DefaultMarkets is the market set scanned when no allow-list is supplied.
var DefaultMarkets = []string{"h2h", "spreads", "totals"}

// Builder turns games into rows. A bookmaker allow-list restricts which offer
// can be picked as best price, but never thins AllBooks: the fair-probability
// estimate always sees the whole market.
type Builder struct {
	markets []string
	books   map[string]bool
}

// NewBuilder creates a builder. markets defaults to DefaultMarkets when
// empty; books is a set of lowercase bookmaker keys, empty meaning no
// filtering.
func NewBuilder(markets, books []string) *Builder {
	b := &Builder{markets: markets}
	if len(b.markets) == 0 {
		b.markets = DefaultMarkets
	}
	if len(books) > 0 {
		b.books = make(map[string]bool, len(books))
		for _, k := range books {
			b.books[k] = true
		}
	}
	return b
}

// Build flattens every game into rows. Malformed pieces (empty markets,
// priceless outcomes, games without bookmakers) are dropped at the smallest
// scope; Build never fails.
func (b *Builder) Build(games []models.Game) []*models.Row {
	out := make([]*models.Row, 0, len(games)*4)
	for i := range games {
		out = b.buildGame(&games[i], out)
	}
	return out
}

// offerRef is one outcome with its owning bookmaker, in encounter order.
type offerRef struct {
	bookKey   string
	bookTitle string
	outcome   models.Outcome
	price     float64
	hasPrice  bool
}

func (b *Builder) buildGame(g *models.Game, out []*models.Row) []*models.Row {
	for _, marketKey := range b.markets {
		pool := collectPool(g, marketKey)
		if len(pool) == 0 {
			continue
		}

		if marketKey == "h2h" {
			for _, team := range []string{g.HomeTeam, g.AwayTeam} {
				if team == "" {
					continue
				}
				if row := b.buildRow(g, marketKey, team, nil, pool); row != nil {
					out = append(out, row)
				}
			}
			continue
		}

		// Spreads, totals and props group by line first, then by
		// selection name within the line, in encounter order.
		for _, grp := range groupByLine(pool) {
			if row := b.buildRow(g, marketKey, grp.name, grp.point, pool); row != nil {
				out = append(out, row)
			}
		}
	}
	return out
}

// collectPool gathers every outcome for one market key across all bookmakers,
// preserving bookmaker then outcome order. Duplicate bookmaker keys are kept
// as independent occurrences.
func collectPool(g *models.Game, marketKey string) []offerRef {
	var pool []offerRef
	for _, bk := range g.Bookmakers {
		for _, mkt := range bk.Markets {
			if mkt.Key != marketKey {
				continue
			}
			for _, o := range mkt.Outcomes {
				ref := offerRef{bookKey: bk.Key, bookTitle: bk.Title, outcome: o}
				ref.price, ref.hasPrice = o.Price()
				pool = append(pool, ref)
			}
		}
	}
	return pool
}

type lineGroup struct {
	name  string
	point *models.Point
}

// groupByLine returns the distinct (line, name) pairs of a pool in first
// encounter order. The absent line groups under "" and stays distinct from
// any numeric line, including 0.
func groupByLine(pool []offerRef) []lineGroup {
	seen := make(map[string]bool)
	var groups []lineGroup
	for _, ref := range pool {
		if ref.outcome.Name == "" {
			continue
		}
		key := models.PointKey(ref.outcome.Point) + "\x00" + ref.outcome.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		groups = append(groups, lineGroup{name: ref.outcome.Name, point: ref.outcome.Point})
	}
	return groups
}

// buildRow assembles one row for a (market, selection, line) tuple, or nil
// when no allow-listed offer with a usable price matches.
//
// point is nil for h2h: the selection identity is the team name alone.
func (b *Builder) buildRow(g *models.Game, marketKey, name string, point *models.Point, pool []offerRef) *models.Row {
	h2h := point == nil && marketKey == "h2h"
	pointKey := models.PointKey(point)

	var all []models.Offer
	bestIdx := -1
	seq := 0
	for _, ref := range pool {
		if !ref.hasPrice {
			continue
		}
		if !h2h && models.PointKey(ref.outcome.Point) != pointKey {
			continue
		}
		// Blank-name offers still inform the comparison pool, but only
		// an exact name match can represent the row.
		if ref.outcome.Name != name && ref.outcome.Name != "" {
			continue
		}

		offer := models.Offer{
			ID:        fmt.Sprintf("%s:%s:%s:%s:%d", g.ID, marketKey, ref.bookKey, name, seq),
			BookKey:   ref.bookKey,
			BookTitle: ref.bookTitle,
			MarketKey: marketKey,
			Name:      ref.outcome.Name,
			Price:     ref.price,
			Point:     ref.outcome.Point,
		}
		seq++
		all = append(all, offer)

		if ref.outcome.Name != name {
			continue
		}
		if b.books != nil && !b.books[ref.bookKey] {
			continue
		}
		// Strict greater-than keeps the first-encountered offer on ties.
		if bestIdx < 0 || offer.Price > all[bestIdx].Price {
			bestIdx = len(all) - 1
		}
	}

	if bestIdx < 0 || len(all) == 0 {
		return nil
	}

	key := fmt.Sprintf("%s:%s:%s", g.ID, marketKey, name)
	if !h2h {
		key = fmt.Sprintf("%s:%s", key, pointKey)
	}

	return &models.Row{
		Key:      key,
		Game:     g,
		Best:     all[bestIdx],
		AllBooks: all,
	}
}
