// Package nutrition resolves free-text food descriptions into nutrition data.
// Open Food Facts is tried first; when it has nothing usable the lookup falls
// back to a generative-AI estimate biased toward the Brazilian TACO and TBCA
// composition tables. All values are produced per reference basis (100 g,
// 100 ml or one unit) and scaled to the requested portion afterwards.
package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nutricalc/nutricalc-backend/config"
	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/observability"
)

const (
	BasisPer100g  = "per-100g"
	BasisPer100ml = "per-100ml"
	BasisPerUnit  = "per-unit"
)

// Result is the nutrition of one concrete portion, scaled from a FoodFact.
type Result struct {
	Name       string
	Calories   float64
	Carbs      float64
	Protein    float64
	Fat        float64
	Provenance string
}

// Client performs nutrition lookups against Open Food Facts and an
// OpenAI-compatible model.
type Client struct {
	llm        *llmClient
	offBaseURL string
	offClient  *http.Client
}

// NewClient builds a lookup client from the LLM configuration.
func NewClient(cfg config.LLM) *Client {
	return &Client{
		llm:        newLLMClient(cfg),
		offBaseURL: "https://world.openfoodfacts.org",
		offClient:  &http.Client{Timeout: 2 * time.Second},
	}
}

// BasisForUnit maps a portion unit onto the reference basis lookups use.
func BasisForUnit(unit string) string {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "ml", "l":
		return BasisPer100ml
	case "unit", "units", "pc", "pcs", "piece", "pieces", "slice", "slices", "fatia", "fatias", "unidade", "unidades":
		return BasisPerUnit
	default:
		return BasisPer100g
	}
}

// LookupFact resolves a food description into a per-basis FoodFact.
// Failures of either provider collapse into ErrNoResult.
func (c *Client) LookupFact(ctx context.Context, query, unit string) (models.FoodFact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.FoodFact{}, ErrNoResult
	}
	basis := BasisForUnit(unit)

	// Open Food Facts only publishes per-100g/ml figures, so count-based
	// portions go straight to the estimator.
	if basis != BasisPerUnit {
		fact, err := c.searchOpenFoodFacts(ctx, query, basis)
		if err == nil {
			observability.RecordLookup("openfoodfacts", "hit")
			return fact, nil
		}
		observability.RecordLookup("openfoodfacts", "miss")
		logger.Debug("Open Food Facts had no usable match", "query", query, "error", err)
	}

	fact, err := c.estimateWithLLM(ctx, query, basis)
	if err != nil {
		observability.RecordLookup("llm", "error")
		logger.Warn("Nutrition estimation failed", "query", query, "error", err)
		return models.FoodFact{}, fmt.Errorf("%w: %s", ErrNoResult, err)
	}
	observability.RecordLookup("llm", "hit")
	return fact, nil
}

func (c *Client) estimateWithLLM(ctx context.Context, query, basis string) (models.FoodFact, error) {
	unitType := "por 100g"
	switch basis {
	case BasisPer100ml:
		unitType = "por 100ml"
	case BasisPerUnit:
		unitType = "por 1 unidade"
	}

	prompt := fmt.Sprintf(`Forneça a informação nutricional %s para o alimento: %q.
Priorize os valores das tabelas brasileiras TACO e TBCA quando o alimento existir nelas.

Retorne APENAS um objeto JSON:
{
  "name": "nome do alimento",
  "calories": float,
  "carbs": float,
  "protein": float,
  "fat": float,
  "source": "TACO, TBCA ou estimativa"
}`, unitType, query)

	resp, err := c.llm.chat(ctx, []Message{
		{Role: "system", Content: fmt.Sprintf("Você é um nutricionista especialista em alimentos brasileiros. Forneça dados nutricionais %s, priorizando as tabelas TACO e TBCA.", unitType)},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return models.FoodFact{}, err
	}

	data, err := parseNutritionJSON(resp)
	if err != nil {
		return models.FoodFact{}, err
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = query
	}
	provenance := strings.TrimSpace(data.Source)
	if provenance == "" {
		provenance = "estimativa"
	}

	logger.Info("Nutrition estimated", "query", query, "basis", basis, "kcal", data.Calories)
	return models.FoodFact{
		Query:      query,
		Name:       name,
		Calories:   data.Calories,
		Carbs:      data.Carbs,
		Protein:    data.Protein,
		Fat:        data.Fat,
		Basis:      basis,
		Provenance: provenance + " (IA)",
		Verified:   false,
	}, nil
}

// Reverify re-checks an AI-estimated fact against Open Food Facts. It only
// succeeds when the database has a usable per-100g/ml match.
func (c *Client) Reverify(ctx context.Context, query, basis string) (models.FoodFact, error) {
	if basis == BasisPerUnit {
		return models.FoodFact{}, fmt.Errorf("%w: per-unit facts cannot be verified", ErrNoResult)
	}
	fact, err := c.searchOpenFoodFacts(ctx, query, basis)
	if err != nil {
		return models.FoodFact{}, fmt.Errorf("%w: %s", ErrNoResult, err)
	}
	return fact, nil
}

// Suggest asks the model for food name completions for a partial query.
func (c *Client) Suggest(ctx context.Context, partial string) ([]string, error) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(`Liste 5 nomes de alimentos comuns no Brasil que começam com ou contêm %q.
Retorne APENAS um array JSON de strings, por exemplo: ["arroz branco cozido", "arroz integral"]`, partial)

	resp, err := c.llm.chat(ctx, []Message{
		{Role: "system", Content: "Você é um assistente de nutrição. Responda somente com JSON."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoResult, err)
	}

	names, err := parseSuggestions(resp)
	if err != nil {
		return nil, err
	}
	if len(names) > 5 {
		names = names[:5]
	}
	return names, nil
}

// ScalePortion converts a per-basis fact into the nutrition of one portion.
func ScalePortion(fact models.FoodFact, quantity float64, unit string) Result {
	if quantity <= 0 {
		quantity = 1
	}

	amount := quantity
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kg", "l":
		amount = quantity * 1000
	}

	factor := amount
	if fact.Basis != BasisPerUnit {
		factor = amount / 100
	}

	return Result{
		Name:       fact.Name,
		Calories:   fact.Calories * factor,
		Carbs:      fact.Carbs * factor,
		Protein:    fact.Protein * factor,
		Fat:        fact.Fat * factor,
		Provenance: fact.Provenance,
	}
}
