package nutrition

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNoResult means the lookup could not produce usable nutrition data.
// Callers must not log anything when they receive it.
var ErrNoResult = errors.New("no nutrition result")

type llmNutrition struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Source   string  `json:"source"`
}

// stripFences removes markdown code fences models tend to wrap JSON in and
// cuts the payload down to the outermost braces.
func stripFences(raw string) string {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	start := strings.IndexAny(clean, "{[")
	if start < 0 {
		return strings.TrimSpace(clean)
	}
	var end int
	if clean[start] == '{' {
		end = strings.LastIndex(clean, "}")
	} else {
		end = strings.LastIndex(clean, "]")
	}
	if end <= start {
		return strings.TrimSpace(clean)
	}
	return clean[start : end+1]
}

// parseNutritionJSON decodes a model response into nutrition data. Anything
// malformed, negative or non-finite yields ErrNoResult: a bad estimate must
// never end up in the ledger.
func parseNutritionJSON(raw string) (llmNutrition, error) {
	clean := stripFences(raw)

	var data llmNutrition
	if err := json.Unmarshal([]byte(clean), &data); err != nil {
		return llmNutrition{}, fmt.Errorf("%w: %s", ErrNoResult, err)
	}

	for _, v := range []float64{data.Calories, data.Carbs, data.Protein, data.Fat} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return llmNutrition{}, fmt.Errorf("%w: value out of range", ErrNoResult)
		}
	}
	if data.Calories == 0 && data.Carbs == 0 && data.Protein == 0 && data.Fat == 0 {
		return llmNutrition{}, fmt.Errorf("%w: empty estimate", ErrNoResult)
	}

	// Sanity caps: pure fat tops out near 900 kcal per 100g, and no macro
	// can exceed its own reference mass.
	if data.Calories > 900 {
		data.Calories = 900
	}
	if data.Protein > 100 {
		data.Protein = 100
	}
	if data.Carbs > 100 {
		data.Carbs = 100
	}
	if data.Fat > 100 {
		data.Fat = 100
	}

	return data, nil
}

// parseSuggestions decodes a model response into a plain list of food names.
func parseSuggestions(raw string) ([]string, error) {
	clean := stripFences(raw)

	var names []string
	if err := json.Unmarshal([]byte(clean), &names); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoResult, err)
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}
