// Package ingest decodes upstream odds payloads into the canonical game
// shape. Vendors are inconsistent about nesting: bookmakers arrive as a bare
// array, wrapped in a {"bookmakers": [...]} object, or as a single bookmaker
// object. All variants are resolved here, once, so the pipeline downstream
// only ever sees the canonical shape.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairline/fairline/pkg/models"
)

// rawGame defers bookmaker decoding so the variant shapes can be probed.
type rawGame struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	CommenceTime time.Time       `json:"commence_time"`
	Bookmakers   json.RawMessage `json:"bookmakers"`
}

// Games decodes a snapshot payload into canonical games. A non-array
// top-level payload is a caller error and fails fast; inside the array,
// malformed records are dropped at the smallest possible scope (one
// bookmaker, one game) rather than failing the batch.
func Games(payload []byte) ([]models.Game, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("odds payload is not an array: %w", err)
	}

	games := make([]models.Game, 0, len(raw))
	for _, item := range raw {
		var rg rawGame
		if err := json.Unmarshal(item, &rg); err != nil {
			continue
		}
		if rg.ID == "" {
			continue
		}

		games = append(games, models.Game{
			ID:           rg.ID,
			SportKey:     rg.SportKey,
			SportTitle:   rg.SportTitle,
			HomeTeam:     rg.HomeTeam,
			AwayTeam:     rg.AwayTeam,
			CommenceTime: rg.CommenceTime,
			Bookmakers:   bookmakers(rg.Bookmakers),
		})
	}
	return games, nil
}

// bookmakers resolves the three observed shapes of the bookmakers field.
func bookmakers(raw json.RawMessage) []models.Bookmaker {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	// Bare array.
	if trimmed[0] == '[' {
		var bks []models.Bookmaker
		if err := json.Unmarshal(trimmed, &bks); err != nil {
			return nil
		}
		return bks
	}

	if trimmed[0] != '{' {
		return nil
	}

	// Wrapper object {"bookmakers": [...]}.
	var wrapper struct {
		Bookmakers []models.Bookmaker `json:"bookmakers"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err == nil && len(wrapper.Bookmakers) > 0 {
		return wrapper.Bookmakers
	}

	// Single bookmaker object.
	var single models.Bookmaker
	if err := json.Unmarshal(trimmed, &single); err == nil && single.Key != "" {
		return []models.Bookmaker{single}
	}

	return nil
}
