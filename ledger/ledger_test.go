package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutricalc/nutricalc-backend/ledger"
	"github.com/nutricalc/nutricalc-backend/models"
)

func entry(id string, cal, carbs, protein, fat float64) models.FoodLogEntry {
	return models.FoodLogEntry{
		EntryID:  id,
		Name:     "food-" + id,
		Calories: cal,
		Carbs:    carbs,
		Protein:  protein,
		Fat:      fat,
	}
}

func TestTotalsEmptyLedger(t *testing.T) {
	assert.Equal(t, ledger.DailyTotals{}, ledger.Totals(nil))
}

func TestTotalsSumsAllEntries(t *testing.T) {
	entries := []models.FoodLogEntry{
		entry("a", 100, 10, 5, 2),
		entry("b", 50, 5, 2, 1),
	}

	got := ledger.Totals(entries)

	assert.Equal(t, ledger.DailyTotals{Calories: 150, Carbs: 15, Protein: 7, Fat: 3}, got)
}

func TestTotalsIgnoresNonFiniteValues(t *testing.T) {
	entries := []models.FoodLogEntry{
		entry("a", 100, 10, 5, 2),
		entry("bad", math.NaN(), math.Inf(1), 3, math.Inf(-1)),
	}

	got := ledger.Totals(entries)

	assert.Equal(t, ledger.DailyTotals{Calories: 100, Carbs: 10, Protein: 8, Fat: 2}, got)
}

func TestAppendIsMostRecentFirst(t *testing.T) {
	entries := ledger.Append(nil, entry("first", 1, 0, 0, 0))
	entries = ledger.Append(entries, entry("second", 2, 0, 0, 0))

	assert.Equal(t, "second", entries[0].EntryID)
	assert.Equal(t, "first", entries[1].EntryID)
}

func TestAppendThenRemoveRoundTrips(t *testing.T) {
	base := []models.FoodLogEntry{entry("keep", 100, 10, 5, 2)}

	grown := ledger.Append(base, entry("temp", 50, 5, 2, 1))
	shrunk := ledger.Remove(grown, "temp")

	assert.Equal(t, base, shrunk)
}

func TestRemoveUnknownIDIsNoOp(t *testing.T) {
	entries := []models.FoodLogEntry{
		entry("a", 100, 10, 5, 2),
		entry("b", 50, 5, 2, 1),
	}

	got := ledger.Remove(entries, "missing")

	assert.Equal(t, entries, got)
}

func TestMacroDistributionEpsilonWhenAllZero(t *testing.T) {
	d := ledger.MacroDistribution(ledger.DailyTotals{})

	assert.Greater(t, d.CarbsShare, 0.0)
	assert.Equal(t, d.CarbsShare, d.ProteinShare)
	assert.Equal(t, d.ProteinShare, d.FatShare)
}

func TestMacroDistributionKeepsIndividualZeros(t *testing.T) {
	d := ledger.MacroDistribution(ledger.DailyTotals{Carbs: 0, Protein: 30, Fat: 10})

	assert.Equal(t, 0.0, d.CarbsShare)
	assert.Equal(t, 30.0, d.ProteinShare)
	assert.Equal(t, 10.0, d.FatShare)
}
