package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/models"
)

const openFoodFactsProvenance = "Open Food Facts"

type offResponse struct {
	Products []struct {
		ProductName string `json:"product_name"`
		Nutriments  struct {
			EnergyKcal100g    json.Number `json:"energy-kcal_100g"`
			Proteins100g      json.Number `json:"proteins_100g"`
			Carbohydrates100g json.Number `json:"carbohydrates_100g"`
			Fat100g           json.Number `json:"fat_100g"`
		} `json:"nutriments"`
	} `json:"products"`
}

// searchOpenFoodFacts queries the public search API for the best per-100g
// match. It only accepts a product with meaningful energy data.
func (c *Client) searchOpenFoodFacts(ctx context.Context, query, basis string) (models.FoodFact, error) {
	searchURL := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=3",
		c.offBaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return models.FoodFact{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.offClient.Do(req)
	if err != nil {
		return models.FoodFact{}, fmt.Errorf("open food facts search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.FoodFact{}, fmt.Errorf("open food facts returned status %d", resp.StatusCode)
	}

	var result offResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.FoodFact{}, fmt.Errorf("failed to decode open food facts response: %w", err)
	}

	for _, p := range result.Products {
		kcal, _ := p.Nutriments.EnergyKcal100g.Float64()
		if kcal <= 0 {
			continue
		}
		protein, _ := p.Nutriments.Proteins100g.Float64()
		carbs, _ := p.Nutriments.Carbohydrates100g.Float64()
		fat, _ := p.Nutriments.Fat100g.Float64()

		name := strings.TrimSpace(p.ProductName)
		if name == "" {
			name = query
		}

		logger.Info("Nutrition fetched from Open Food Facts", "query", query, "kcal", kcal)
		return models.FoodFact{
			Query:      query,
			Name:       name,
			Calories:   kcal,
			Carbs:      carbs,
			Protein:    protein,
			Fat:        fat,
			Basis:      basis,
			Provenance: openFoodFactsProvenance,
			Verified:   true,
		}, nil
	}

	return models.FoodFact{}, fmt.Errorf("no product with energy data for %q", query)
}
