package ranking

import "github.com/fairline/fairline/pkg/models"

// Delta is one best-price movement between two snapshots of the same row.
type Delta struct {
	Key       string   `json:"key"`
	BookKey   string   `json:"book_key"`
	PrevPrice float64  `json:"prev_price"`
	CurrPrice float64  `json:"curr_price"`
	PrevEV    *float64 `json:"prev_ev,omitempty"`
	CurrEV    *float64 `json:"curr_ev,omitempty"`
	Direction string   `json:"direction"` // up or down
}

// Diff compares two ranked snapshots and reports rows whose best price
// moved. Both snapshots are caller-owned values; the function keeps no state
// between calls. Rows present in only one snapshot are ignored: a line
// appearing or disappearing is not a price movement.
//
// Output follows the current snapshot's order.
func Diff(previous, current []*models.Row) []Delta {
	if len(previous) == 0 || len(current) == 0 {
		return nil
	}

	prev := make(map[string]*models.Row, len(previous))
	for _, row := range previous {
		prev[row.Key] = row
	}

	var deltas []Delta
	for _, row := range current {
		old, ok := prev[row.Key]
		if !ok || old.Best.Price == row.Best.Price {
			continue
		}

		direction := "down"
		if row.Best.Price > old.Best.Price {
			direction = "up"
		}

		deltas = append(deltas, Delta{
			Key:       row.Key,
			BookKey:   row.Best.BookKey,
			PrevPrice: old.Best.Price,
			CurrPrice: row.Best.Price,
			PrevEV:    old.EV,
			CurrEV:    row.EV,
			Direction: direction,
		})
	}
	return deltas
}
