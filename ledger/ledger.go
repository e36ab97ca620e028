// Package ledger maintains the ordered food log and answers aggregate queries
// over it. It is pure data manipulation: persistence lives elsewhere.
package ledger

import (
	"math"

	"github.com/nutricalc/nutricalc-backend/models"
)

// chartEpsilon replaces the macro shares when every macro total is zero, so a
// pie chart consumer never divides by zero or renders an empty chart. It is a
// presentation convenience only; true totals are reported separately.
const chartEpsilon = 1.0

// DailyTotals are the sums over every entry currently in the ledger. There is
// no per-day partitioning: "daily" means the whole current ledger.
type DailyTotals struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// Distribution is the macro weighting used for chart rendering.
type Distribution struct {
	CarbsShare   float64 `json:"carbsShare"`
	ProteinShare float64 `json:"proteinShare"`
	FatShare     float64 `json:"fatShare"`
}

// Append inserts e at the front of the ledger (most-recent-first). A
// duplicate id is accepted as-is; the caller is responsible for generating
// unique ids.
func Append(entries []models.FoodLogEntry, e models.FoodLogEntry) []models.FoodLogEntry {
	out := make([]models.FoodLogEntry, 0, len(entries)+1)
	out = append(out, e)
	return append(out, entries...)
}

// Remove deletes the entry with the given id, preserving the order of the
// rest. An unknown id is a no-op, not an error.
func Remove(entries []models.FoodLogEntry, id string) []models.FoodLogEntry {
	out := make([]models.FoodLogEntry, 0, len(entries))
	for _, e := range entries {
		if e.EntryID == id {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Totals sums calories and macros across all entries. An empty ledger yields
// all-zero totals. Non-finite nutrient values on a malformed entry count as
// zero rather than poisoning the sums.
func Totals(entries []models.FoodLogEntry) DailyTotals {
	var t DailyTotals
	for _, e := range entries {
		t.Calories += finite(e.Calories)
		t.Carbs += finite(e.Carbs)
		t.Protein += finite(e.Protein)
		t.Fat += finite(e.Fat)
	}
	return t
}

// MacroDistribution returns the chart weights for the three macros. Only when
// all three macro totals are zero are the shares substituted with an equal
// positive epsilon; an individual zero macro stays zero.
func MacroDistribution(t DailyTotals) Distribution {
	if t.Carbs == 0 && t.Protein == 0 && t.Fat == 0 {
		return Distribution{
			CarbsShare:   chartEpsilon,
			ProteinShare: chartEpsilon,
			FatShare:     chartEpsilon,
		}
	}
	return Distribution{
		CarbsShare:   t.Carbs,
		ProteinShare: t.Protein,
		FatShare:     t.Fat,
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
