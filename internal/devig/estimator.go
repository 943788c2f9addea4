// Package devig estimates no-vig ("fair") win probabilities for candidate
// bets by building a consensus across bookmakers.
package devig

import (
	"math"

	"github.com/fairline/fairline/pkg/models"
	"github.com/fairline/fairline/pkg/oddsmath"
)

// minBooksForConsensus is the market-depth gate: both the pairwise method and
// the median fallback require strictly more than four contributing books.
// Thinner markets produce no estimate at all.
const minBooksForConsensus = 5

// Estimator produces consensus fair probabilities.
//
// The primary method is pairwise de-vig: within each bookmaker, the selected
// outcome and its complement are converted to implied probabilities and
// normalized so the pair sums to 1, cancelling that one book's vig. The
// median of the per-book normalized probabilities is the consensus. When too
// few books quote a complete pair, the estimator falls back to the median of
// independent implied probabilities across the row's offer pool, a strictly
// worse approximation kept only so thin lines retain some signal.
type Estimator struct{}

// NewEstimator creates a stateless estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// FairProb estimates the fair probability of the row's selection winning.
// Not-ok means insufficient market depth, never an error.
func (e *Estimator) FairProb(row *models.Row) (float64, bool) {
	if row == nil || row.Game == nil {
		return 0, false
	}

	if p, ok := e.pairwiseConsensus(row); ok {
		return p, true
	}

	return e.independentMedian(row)
}

// FairOdds is the American-odds rendering of FairProb, for display.
func (e *Estimator) FairOdds(row *models.Row) (float64, bool) {
	p, ok := e.FairProb(row)
	if !ok {
		return 0, false
	}
	return oddsmath.DecimalToAmerican(1.0 / p), true
}

// pairwiseConsensus collects one vig-free probability per bookmaker that
// quotes both sides of the row's market, and takes the median. Valid only
// when more than four books contribute a complete pair.
func (e *Estimator) pairwiseConsensus(row *models.Row) (float64, bool) {
	var normalized []float64

	for _, bk := range row.Game.Bookmakers {
		for _, mkt := range bk.Markets {
			if mkt.Key != row.Best.MarketKey {
				continue
			}
			if p, ok := pairProb(row, mkt.Outcomes); ok {
				normalized = append(normalized, p)
			}
		}
	}

	if len(normalized) < minBooksForConsensus {
		return 0, false
	}

	return oddsmath.Median(normalized)
}

// pairProb finds the selected outcome and its complement inside one
// bookmaker's market and returns the pair-normalized probability of the
// selection.
func pairProb(row *models.Row, outcomes []models.Outcome) (float64, bool) {
	selected, ok := findSelected(row, outcomes)
	if !ok {
		return 0, false
	}

	complement, ok := findComplement(row, outcomes, selected)
	if !ok {
		return 0, false
	}

	pSel, ok := impliedProb(outcomes[selected])
	if !ok {
		return 0, false
	}
	pComp, ok := impliedProb(outcomes[complement])
	if !ok {
		return 0, false
	}

	// Normalizing by the pair sum strips this one book's vig.
	return pSel / (pSel + pComp), true
}

func findSelected(row *models.Row, outcomes []models.Outcome) (int, bool) {
	for i, o := range outcomes {
		if o.Name != row.Best.Name {
			continue
		}
		if row.Best.MarketKey == "h2h" || samePoint(o.Point, row.Best.Point) {
			return i, true
		}
	}
	return 0, false
}

// findComplement locates the opposite side of a two-way market. For h2h that
// is the other team; for totals and props the other name at the identical
// line; for spreads the other name at the mirrored line (the two sides of a
// spread are quoted at opposite signs).
func findComplement(row *models.Row, outcomes []models.Outcome, selected int) (int, bool) {
	sel := outcomes[selected]
	otherTeam := row.Game.HomeTeam
	if sel.Name == row.Game.HomeTeam {
		otherTeam = row.Game.AwayTeam
	}
	for i, o := range outcomes {
		if i == selected || o.Name == sel.Name || o.Name == "" {
			continue
		}
		switch row.Best.MarketKey {
		case "h2h":
			if o.Name == otherTeam {
				return i, true
			}
		case "spreads":
			if mirroredPoint(o.Point, sel.Point) {
				return i, true
			}
		default:
			if samePoint(o.Point, sel.Point) {
				return i, true
			}
		}
	}
	return 0, false
}

// independentMedian is the fallback: implied probability of every offer in
// the row's pool, no pairing. Gated on more than four distinct bookmaker
// keys being represented.
func (e *Estimator) independentMedian(row *models.Row) (float64, bool) {
	books := make(map[string]bool)
	var probs []float64

	for _, offer := range row.AllBooks {
		p, ok := oddsmath.AmericanToProb(offer.Price)
		if !ok || p <= 0 || p >= 1 {
			continue
		}
		books[offer.BookKey] = true
		probs = append(probs, p)
	}

	if len(books) < minBooksForConsensus {
		return 0, false
	}

	return oddsmath.Median(probs)
}

func impliedProb(o models.Outcome) (float64, bool) {
	price, ok := o.Price()
	if !ok {
		return 0, false
	}
	p, ok := oddsmath.AmericanToProb(price)
	if !ok || p <= 0 || p >= 1 {
		return 0, false
	}
	return p, true
}

func samePoint(a, b *models.Point) bool {
	return models.PointKey(a) == models.PointKey(b)
}

func mirroredPoint(a, b *models.Point) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.IsNum && b.IsNum {
		return math.Abs(a.Num) == math.Abs(b.Num)
	}
	return a.Raw == b.Raw
}
