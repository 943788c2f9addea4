package models

// Offer is one bookmaker's quote for one candidate bet. ID is synthetic and
// only stable within one build pass; it exists for list rendering downstream.
type Offer struct {
	ID        string  `json:"id"`
	BookKey   string  `json:"book_key"`
	BookTitle string  `json:"book_title"`
	MarketKey string  `json:"market_key"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Point     *Point  `json:"point,omitempty"`
}

// Row is the unit of ranking and display: one (game, market, selection, line)
// tuple, carrying the best-priced offer and every competing offer.
//
// Best is the offer with the numerically highest American price among offers
// matching the tuple; at identical prices the first in bookmaker input order
// wins. AllBooks is never filtered by the caller's bookmaker allow-list; it
// feeds the fair-probability estimate and the comparison sub-table.
type Row struct {
	Key      string   `json:"key"`
	Game     *Game    `json:"game"`
	Best     Offer    `json:"best"`
	AllBooks []Offer  `json:"all_books"`
	EV       *float64 `json:"ev"`
	FairOdds *float64 `json:"fair_odds"`
}
