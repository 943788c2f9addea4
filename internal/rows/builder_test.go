package rows_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairline/fairline/internal/rows"
	"github.com/fairline/fairline/pkg/models"
)

func price(v float64) *float64 { return &v }

func point(v float64) *models.Point {
	return &models.Point{Raw: strconv.FormatFloat(v, 'f', -1, 64), Num: v, IsNum: true}
}

func h2hGame(id string, books ...models.Bookmaker) models.Game {
	return models.Game{
		ID:           id,
		SportKey:     "basketball_nba",
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
		Bookmakers:   books,
	}
}

func h2hBook(key, title string, homePrice, awayPrice float64) models.Bookmaker {
	return models.Bookmaker{
		Key:   key,
		Title: title,
		Markets: []models.Market{{
			Key: "h2h",
			Outcomes: []models.Outcome{
				{Name: "Boston Celtics", RawPrice: price(homePrice)},
				{Name: "Miami Heat", RawPrice: price(awayPrice)},
			},
		}},
	}
}

func TestBuildH2H(t *testing.T) {
	game := h2hGame("g1",
		h2hBook("alpha", "Alpha Book", -110, -105),
		h2hBook("beta", "Beta Book", -105, -110),
	)

	built := rows.NewBuilder(nil, nil).Build([]models.Game{game})
	require.Len(t, built, 2)

	home := built[0]
	assert.Equal(t, "g1:h2h:Boston Celtics", home.Key)
	assert.Equal(t, "beta", home.Best.BookKey, "highest price wins")
	assert.Equal(t, -105.0, home.Best.Price)
	assert.Len(t, home.AllBooks, 2, "all books kept for comparison")

	away := built[1]
	assert.Equal(t, "g1:h2h:Miami Heat", away.Key)
	assert.Equal(t, "alpha", away.Best.BookKey)
}

func TestBuildBestPriceTieKeepsFirstBook(t *testing.T) {
	game := h2hGame("g1",
		h2hBook("alpha", "Alpha Book", -105, -110),
		h2hBook("beta", "Beta Book", -105, -110),
	)

	built := rows.NewBuilder(nil, nil).Build([]models.Game{game})
	require.Len(t, built, 2)

	assert.Equal(t, "alpha", built[0].Best.BookKey, "tie keeps first in input order")
}

func TestBuildBookFilterNarrowsBestButNotAllBooks(t *testing.T) {
	game := h2hGame("g1",
		h2hBook("alpha", "Alpha Book", 105, -125),
		h2hBook("beta", "Beta Book", -110, -105),
	)

	built := rows.NewBuilder(nil, []string{"beta"}).Build([]models.Game{game})
	require.Len(t, built, 2)

	home := built[0]
	assert.Equal(t, "beta", home.Best.BookKey, "alpha's better price not eligible")
	assert.Equal(t, -110.0, home.Best.Price)
	assert.Len(t, home.AllBooks, 2, "filter must not thin the comparison pool")
}

func TestBuildBookFilterCanRemoveRow(t *testing.T) {
	game := h2hGame("g1", h2hBook("alpha", "Alpha Book", -110, -110))

	built := rows.NewBuilder(nil, []string{"nosuchbook"}).Build([]models.Game{game})
	assert.Empty(t, built, "no eligible representative, no row")
}

func TestBuildTotalsGroupsByPointThenName(t *testing.T) {
	game := models.Game{
		ID:       "g2",
		HomeTeam: "A",
		AwayTeam: "B",
		Bookmakers: []models.Bookmaker{
			{
				Key: "alpha", Title: "Alpha",
				Markets: []models.Market{{
					Key: "totals",
					Outcomes: []models.Outcome{
						{Name: "Over", RawPrice: price(-110), Point: point(220.5)},
						{Name: "Under", RawPrice: price(-110), Point: point(220.5)},
					},
				}},
			},
			{
				Key: "beta", Title: "Beta",
				Markets: []models.Market{{
					Key: "totals",
					Outcomes: []models.Outcome{
						{Name: "Over", RawPrice: price(-105), Point: point(221.5)},
						{Name: "Under", RawPrice: price(-115), Point: point(221.5)},
					},
				}},
			},
		},
	}

	built := rows.NewBuilder([]string{"totals"}, nil).Build([]models.Game{game})
	require.Len(t, built, 4, "two lines, two sides each")

	assert.Equal(t, "g2:totals:Over:220.5", built[0].Key)
	assert.Equal(t, "g2:totals:Under:220.5", built[1].Key)
	assert.Equal(t, "g2:totals:Over:221.5", built[2].Key)
	assert.Len(t, built[0].AllBooks, 1, "different lines never share a pool")
}

func TestBuildMissingPointDistinctFromZero(t *testing.T) {
	game := models.Game{
		ID:       "g3",
		HomeTeam: "A",
		AwayTeam: "B",
		Bookmakers: []models.Bookmaker{{
			Key: "alpha", Title: "Alpha",
			Markets: []models.Market{{
				Key: "spreads",
				Outcomes: []models.Outcome{
					{Name: "A", RawPrice: price(-110), Point: point(0)},
					{Name: "A", RawPrice: price(-120)}, // no point
				},
			}},
		}},
	}

	built := rows.NewBuilder([]string{"spreads"}, nil).Build([]models.Game{game})
	require.Len(t, built, 2, "point 0 and absent point are distinct lines")
}

func TestBuildMissingPriceSkippedWithoutPanic(t *testing.T) {
	game := models.Game{
		ID:       "g4",
		HomeTeam: "A",
		AwayTeam: "B",
		Bookmakers: []models.Bookmaker{{
			Key: "alpha", Title: "Alpha",
			Markets: []models.Market{{
				Key: "h2h",
				Outcomes: []models.Outcome{
					{Name: "A"}, // neither price nor odds
					{Name: "B", RawPrice: price(-110)},
				},
			}},
		}},
	}

	built := rows.NewBuilder(nil, nil).Build([]models.Game{game})
	require.Len(t, built, 1, "priceless side contributes nothing")
	assert.Equal(t, "B", built[0].Best.Name)
}

func TestBuildOddsFieldFallback(t *testing.T) {
	odds := 120.0
	game := models.Game{
		ID:       "g5",
		HomeTeam: "A",
		AwayTeam: "B",
		Bookmakers: []models.Bookmaker{{
			Key: "alpha", Title: "Alpha",
			Markets: []models.Market{{
				Key: "h2h",
				Outcomes: []models.Outcome{
					{Name: "A", RawOdds: &odds},
					{Name: "B", RawPrice: price(-140), RawOdds: &odds},
				},
			}},
		}},
	}

	built := rows.NewBuilder(nil, nil).Build([]models.Game{game})
	require.Len(t, built, 2)
	assert.Equal(t, 120.0, built[0].Best.Price, "odds field accepted")
	assert.Equal(t, -140.0, built[1].Best.Price, "price preferred over odds")
}

func TestBuildEmptyInputs(t *testing.T) {
	assert.Empty(t, rows.NewBuilder(nil, nil).Build(nil))
	assert.Empty(t, rows.NewBuilder(nil, nil).Build([]models.Game{h2hGame("g6")}))

	noOutcomes := h2hGame("g7", models.Bookmaker{
		Key: "alpha", Title: "Alpha",
		Markets: []models.Market{{Key: "h2h"}},
	})
	assert.Empty(t, rows.NewBuilder(nil, nil).Build([]models.Game{noOutcomes}))
}
