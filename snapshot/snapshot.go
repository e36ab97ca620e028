// Package snapshot encodes and decodes the persisted per-user state record:
// an optional metabolic profile plus the food log. Stored data may be stale,
// hand-edited, or written by the legacy browser app, so decoding never trusts
// field types: numbers are coerced, missing fields default, and legacy field
// names are translated. Nothing is dropped silently; every repair is reported
// as a warning for the caller to log.
package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nutricalc/nutricalc-backend/metabolic"
	"github.com/nutricalc/nutricalc-backend/models"
)

// SchemaVersion is written on every encode. Version 0 (absent field) is the
// legacy browser layout.
const SchemaVersion = 1

// State is the logical persisted record for one user. Either field may be
// absent independently.
type State struct {
	SchemaVersion int                   `json:"schemaVersion"`
	Profile       *models.Profile       `json:"profile,omitempty"`
	FoodLog       []models.FoodLogEntry `json:"foodLog,omitempty"`
}

// Encode serializes s with the current schema version.
func Encode(s State) ([]byte, error) {
	s.SchemaVersion = SchemaVersion
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses data into a State, tolerating the legacy layout and type
// drift. The returned warnings describe every coercion or substitution that
// was applied; they are informational, not errors.
//
// Derived profile fields are never taken from the stored record: when the
// stored inputs are valid the profile is recomputed, otherwise the profile is
// absent from the result.
func Decode(data []byte) (State, []string, error) {
	var raw looseState
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return State{}, nil, fmt.Errorf("decode state: %w", err)
	}

	var warnings []string
	out := State{SchemaVersion: SchemaVersion}

	if raw.Profile != nil {
		profile, ws := decodeProfile(*raw.Profile)
		warnings = append(warnings, ws...)
		out.Profile = profile
	}

	entries := raw.FoodLog
	if entries == nil && raw.Foods != nil {
		entries = raw.Foods
		warnings = append(warnings, "legacy 'foods' key translated to foodLog")
	}
	for i, le := range entries {
		entry, ws := decodeEntry(le, i)
		warnings = append(warnings, ws...)
		out.FoodLog = append(out.FoodLog, entry)
	}

	return out, warnings, nil
}

type looseState struct {
	SchemaVersion any           `json:"schemaVersion"`
	Profile       *looseProfile `json:"profile"`
	FoodLog       []looseEntry  `json:"foodLog"`
	Foods         []looseEntry  `json:"foods"` // legacy key
}

type looseProfile struct {
	Weight any `json:"weight"`
	Height any `json:"height"`
	Age    any `json:"age"`

	Sex    string `json:"sex"`
	Gender string `json:"gender"` // legacy: Masculino / Feminino

	ActivityFactor any `json:"activityFactor"`
	ActivityLevel  any `json:"activityLevel"` // legacy key
}

type looseEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Calories any    `json:"calories"`
	Carbs    any    `json:"carbs"`
	Protein  any    `json:"protein"`
	Fat      any    `json:"fat"`
	Lipids   any    `json:"lipids"` // legacy key for fat

	PortionQuantity any    `json:"portionQuantity"`
	Portion         any    `json:"portion"` // legacy key
	PortionUnit     string `json:"portionUnit"`

	MealSlot string `json:"mealSlot"`
	Meal     string `json:"meal"` // legacy: Portuguese meal names

	Provenance string `json:"provenance"`
	Source     string `json:"source"` // legacy key

	LoggedAt string `json:"loggedAt"`
}

func decodeProfile(lp looseProfile) (*models.Profile, []string) {
	var warnings []string

	sex := models.Sex(strings.ToUpper(strings.TrimSpace(lp.Sex)))
	if !sex.Valid() {
		var ok bool
		sex, ok = legacySex(lp.Gender)
		if !ok && (lp.Sex != "" || lp.Gender != "") {
			warnings = append(warnings, fmt.Sprintf("unknown sex %q/%q", lp.Sex, lp.Gender))
		}
	}

	factor, fw := num(lp.ActivityFactor, "profile.activityFactor")
	if lp.ActivityFactor == nil {
		factor, fw = num(lp.ActivityLevel, "profile.activityLevel")
	}
	warnings = append(warnings, fw...)

	weight, ws := num(lp.Weight, "profile.weight")
	warnings = append(warnings, ws...)
	height, ws2 := num(lp.Height, "profile.height")
	warnings = append(warnings, ws2...)
	age, ws3 := num(lp.Age, "profile.age")
	warnings = append(warnings, ws3...)

	in := metabolic.Input{
		Weight:         weight,
		Height:         height,
		Age:            int(age),
		Sex:            sex,
		ActivityFactor: factor,
	}
	profile, err := metabolic.ComputeProfile(in)
	if err != nil {
		// Derived fields are a pure function of the inputs; a profile whose
		// inputs cannot be validated is treated as absent rather than kept
		// with stale derived values.
		warnings = append(warnings, fmt.Sprintf("stored profile discarded: %v", err))
		return nil, warnings
	}
	return &profile, warnings
}

func decodeEntry(le looseEntry, idx int) (models.FoodLogEntry, []string) {
	var warnings []string
	field := func(name string) string { return fmt.Sprintf("foodLog[%d].%s", idx, name) }

	id := strings.TrimSpace(le.ID)
	if id == "" {
		id = uuid.NewString()
		warnings = append(warnings, field("id")+" missing, generated")
	}

	fat := le.Fat
	if fat == nil && le.Lipids != nil {
		fat = le.Lipids
	}
	portion := le.PortionQuantity
	if portion == nil && le.Portion != nil {
		portion = le.Portion
	}

	calories, ws := num(le.Calories, field("calories"))
	warnings = append(warnings, ws...)
	carbs, ws2 := num(le.Carbs, field("carbs"))
	warnings = append(warnings, ws2...)
	protein, ws3 := num(le.Protein, field("protein"))
	warnings = append(warnings, ws3...)
	fatVal, ws4 := num(fat, field("fat"))
	warnings = append(warnings, ws4...)
	portionQty, ws5 := num(portion, field("portionQuantity"))
	warnings = append(warnings, ws5...)
	if portionQty <= 0 {
		portionQty = 1
	}

	unit := strings.TrimSpace(le.PortionUnit)
	if unit == "" {
		unit = "g" // the legacy app only logged grams
	}

	slot := models.MealSlot(strings.ToUpper(strings.TrimSpace(le.MealSlot)))
	if !slot.Valid() {
		var ok bool
		slot, ok = legacyMealSlot(le.Meal)
		if !ok {
			slot = models.MealBreakfast
			warnings = append(warnings, fmt.Sprintf("%s unknown (%q/%q), defaulted to BREAKFAST", field("mealSlot"), le.MealSlot, le.Meal))
		}
	}

	provenance := le.Provenance
	if provenance == "" {
		provenance = le.Source
	}

	var loggedAt time.Time
	if le.LoggedAt != "" {
		var err error
		loggedAt, err = time.Parse(time.RFC3339, le.LoggedAt)
		if err != nil {
			loggedAt = time.Time{}
			warnings = append(warnings, field("loggedAt")+" not RFC3339, cleared")
		}
	}

	return models.FoodLogEntry{
		EntryID:         id,
		Name:            le.Name,
		Calories:        calories,
		Carbs:           carbs,
		Protein:         protein,
		Fat:             fatVal,
		PortionQuantity: portionQty,
		PortionUnit:     unit,
		MealSlot:        slot,
		Provenance:      provenance,
		LoggedAt:        loggedAt,
	}, warnings
}

// num coerces a JSON value to a finite float64. Anything unusable becomes
// zero with a warning, never NaN or a failure.
func num(v any, field string) (float64, []string) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, []string{field + " not a finite number, coerced to 0"}
		}
		return f, nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, []string{field + " not finite, coerced to 0"}
		}
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, []string{field + " not numeric, coerced to 0"}
		}
		return f, []string{field + " stored as string, coerced"}
	default:
		return 0, []string{fmt.Sprintf("%s has unexpected type %T, coerced to 0", field, v)}
	}
}

func legacySex(gender string) (models.Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "masculino", "male", "m":
		return models.SexMale, true
	case "feminino", "female", "f":
		return models.SexFemale, true
	default:
		return "", false
	}
}

func legacyMealSlot(meal string) (models.MealSlot, bool) {
	switch strings.ToLower(strings.TrimSpace(meal)) {
	case "café da manhã", "cafe da manha":
		return models.MealBreakfast, true
	case "colação", "colacao":
		return models.MealMorningSnack, true
	case "almoço", "almoco":
		return models.MealLunch, true
	case "lanche da tarde":
		return models.MealAfternoonSnack, true
	case "jantar":
		return models.MealDinner, true
	default:
		return "", false
	}
}
