package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Game is one sporting event with every bookmaker's quote set attached.
// Bookmaker order is significant: best-offer tie-breaks follow input order.
type Game struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one sportsbook's quote set for a game.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one bet type (h2h, spreads, totals, player_*) from one bookmaker.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one selectable side within a market. Vendors spell the American
// price as either "price" or "odds"; both are kept and Price() prefers the
// former. Point may arrive as a number or a string.
type Outcome struct {
	Name     string   `json:"name"`
	RawPrice *float64 `json:"price,omitempty"`
	RawOdds  *float64 `json:"odds,omitempty"`
	Point    *Point   `json:"point,omitempty"`
}

// Price returns the American price for this outcome. Absent and zero prices
// report not-ok: a quote of 0 carries no information.
func (o Outcome) Price() (float64, bool) {
	switch {
	case o.RawPrice != nil && *o.RawPrice != 0:
		return *o.RawPrice, true
	case o.RawOdds != nil && *o.RawOdds != 0:
		return *o.RawOdds, true
	}
	return 0, false
}

// Point is a spread/total line. Raw preserves the vendor's spelling so that
// grouping keys stay stable even for non-numeric lines; the absent point is
// represented by a nil *Point and groups as the empty string.
type Point struct {
	Raw   string
	Num   float64
	IsNum bool
}

// UnmarshalJSON accepts both numeric and string-typed lines.
func (p *Point) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		p.Raw = str
		if n, err := strconv.ParseFloat(str, 64); err == nil {
			p.Num = n
			p.IsNum = true
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	p.Raw = strconv.FormatFloat(n, 'f', -1, 64)
	p.Num = n
	p.IsNum = true
	return nil
}

// MarshalJSON writes the numeric form when the line parsed as a number.
func (p Point) MarshalJSON() ([]byte, error) {
	if p.IsNum {
		return json.Marshal(p.Num)
	}
	return json.Marshal(p.Raw)
}

// PointKey is the grouping key for an optional line: the raw string, or ""
// when the line is absent. "" is distinct from any numeric value including 0.
func PointKey(p *Point) string {
	if p == nil {
		return ""
	}
	return p.Raw
}

// PointNum is the numeric line value used for sorting, 0 when absent or
// non-numeric.
func PointNum(p *Point) float64 {
	if p == nil || !p.IsNum {
		return 0
	}
	return p.Num
}
