package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutricalc/nutricalc-backend/auth"
	"github.com/nutricalc/nutricalc-backend/config"
	"github.com/nutricalc/nutricalc-backend/controllers"
	"github.com/nutricalc/nutricalc-backend/jobs"
	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/nutrition"
	"github.com/nutricalc/nutricalc-backend/routes"
	"github.com/nutricalc/nutricalc-backend/store"
)

type stubLookup struct {
	fact models.FoodFact
	err  error
}

func (s stubLookup) LookupFact(ctx context.Context, query, unit string) (models.FoodFact, error) {
	if s.err != nil {
		return models.FoodFact{}, s.err
	}
	fact := s.fact
	fact.Query = query
	fact.Basis = nutrition.BasisForUnit(unit)
	return fact, nil
}

func (s stubLookup) Suggest(ctx context.Context, partial string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{partial + " cozido"}, nil
}

type stubReverifier struct{}

func (stubReverifier) Reverify(ctx context.Context, query, basis string) (models.FoodFact, error) {
	return models.FoodFact{}, nutrition.ErrNoResult
}

func newTestServer(t *testing.T, lookup controllers.NutritionLookup) (*httptest.Server, string) {
	t.Helper()

	gate, err := auth.NewGate([]auth.Credential{
		{Email: "maria@exemplo.com", AccessCode: "chave123"},
	}, "test-secret", time.Hour)
	require.NoError(t, err)

	mem := store.NewMemory()
	api := &controllers.API{
		Store:   mem,
		Catalog: mem,
		Lookup:  lookup,
		Worker:  jobs.NewVerifyWorker(mem, stubReverifier{}),
		Gate:    gate,
	}

	cfg := config.Config{AllowedOrigins: []string{"http://localhost:5173"}}
	srv := httptest.NewServer(routes.SetupRouter(cfg, api))
	t.Cleanup(srv.Close)

	token := loginToken(t, srv)
	return srv, token
}

func loginToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := doJSON(t, srv, "POST", "/auth/login", "", map[string]string{
		"email": "maria@exemplo.com", "accessCode": "chave123",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, srv.URL+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, stubLookup{})

	resp := doJSON(t, srv, "POST", "/auth/login", "", map[string]string{
		"email": "maria@exemplo.com", "accessCode": "errada",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStatefulRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t, stubLookup{})

	for _, path := range []string{"/profile", "/log", "/log/totals", "/state"} {
		resp := doJSON(t, srv, "GET", path, "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestProfileLifecycle(t *testing.T) {
	srv, token := newTestServer(t, stubLookup{})

	resp := doJSON(t, srv, "GET", "/profile", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no profile before first submission")

	resp = doJSON(t, srv, "PUT", "/profile", token, map[string]any{
		"weight": 70, "height": 170, "age": 30, "sex": "MALE", "activityFactor": 1.2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decode[models.Profile](t, resp)
	assert.InDelta(t, 1617.5, profile.BMR, 1e-9)
	assert.InDelta(t, 1941.0, profile.TDEE, 1e-9)
	assert.Equal(t, models.BMINormal, profile.BMIClass)

	resp = doJSON(t, srv, "GET", "/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.Profile](t, resp)
	assert.Equal(t, profile.BMR, got.BMR)

	resp = doJSON(t, srv, "PUT", "/profile", token, map[string]any{
		"weight": -1, "height": 170, "age": 30, "sex": "MALE", "activityFactor": 1.2,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchLogsAndAggregates(t *testing.T) {
	srv, token := newTestServer(t, stubLookup{fact: models.FoodFact{
		Name: "Arroz branco cozido", Calories: 128, Carbs: 28.1, Protein: 2.5, Fat: 0.2,
		Provenance: "TACO (IA)",
	}})

	resp := doJSON(t, srv, "POST", "/log/search", token, map[string]any{
		"query": "arroz branco", "quantity": 150, "unit": "g", "mealSlot": "LUNCH",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decode[models.FoodLogEntry](t, resp)
	assert.NotEmpty(t, entry.EntryID)
	assert.InDelta(t, 192.0, entry.Calories, 1e-9, "per-100g values scaled to 150g")
	assert.Equal(t, models.MealLunch, entry.MealSlot)

	resp = doJSON(t, srv, "GET", "/log", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]models.FoodLogEntry](t, resp)
	require.Len(t, entries, 1)

	resp = doJSON(t, srv, "GET", "/log/totals", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	totals := decode[map[string]map[string]float64](t, resp)
	assert.InDelta(t, 192.0, totals["totals"]["calories"], 1e-9)
	assert.InDelta(t, 42.15, totals["distribution"]["carbsShare"], 1e-9)

	resp = doJSON(t, srv, "DELETE", "/log/"+entries[0].EntryID, token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting an unknown id is still a 204.
	resp = doJSON(t, srv, "DELETE", "/log/never-existed", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, srv, "GET", "/log", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.FoodLogEntry](t, resp))
}

func TestSearchFailureLeavesLogUntouched(t *testing.T) {
	srv, token := newTestServer(t, stubLookup{err: nutrition.ErrNoResult})

	resp := doJSON(t, srv, "POST", "/log/search", token, map[string]any{
		"query": "comida desconhecida", "quantity": 100, "unit": "g", "mealSlot": "DINNER",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = doJSON(t, srv, "GET", "/log", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.FoodLogEntry](t, resp))
}

func TestSearchRejectsBadRequests(t *testing.T) {
	srv, token := newTestServer(t, stubLookup{fact: models.FoodFact{Name: "x", Calories: 1}})

	resp := doJSON(t, srv, "POST", "/log/search", token, map[string]any{"query": "  "})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, srv, "POST", "/log/search", token, map[string]any{
		"query": "arroz", "mealSlot": "BRUNCH",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSuggestIsBestEffort(t *testing.T) {
	srv, token := newTestServer(t, stubLookup{})
	resp := doJSON(t, srv, "GET", "/foods/suggest?q=arroz", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"arroz cozido"}, decode[[]string](t, resp))

	srv, token = newTestServer(t, stubLookup{err: nutrition.ErrNoResult})
	resp = doJSON(t, srv, "GET", "/foods/suggest?q=arroz", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]string](t, resp), "failures yield an empty list, not an error")
}

func TestStateExportImport(t *testing.T) {
	srv, token := newTestServer(t, stubLookup{})

	// Import the legacy browser export: Portuguese enums, 'foods' key,
	// string-typed numbers. Derived profile values are recomputed.
	legacy := []byte(`{
		"profile": {"weight": 70, "height": 170, "age": 30, "gender": "Masculino",
			"activityLevel": 1.2, "tmb": 9999, "tdee": 1, "imc": 1, "imcClassification": "Normal"},
		"foods": [
			{"id": "f1", "name": "Feijão", "calories": "76.5", "carbs": 13.6,
			 "protein": 4.8, "lipids": 0.5, "portion": 100, "source": "TACO", "meal": "Almoço"}
		]
	}`)

	req, err := http.NewRequest("POST", srv.URL+"/state/import", bytes.NewReader(legacy))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, float64(1), body["imported"])

	resp = doJSON(t, srv, "GET", "/state", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[map[string]any](t, resp)
	assert.Equal(t, float64(1), state["schemaVersion"])

	profile := state["profile"].(map[string]any)
	assert.InDelta(t, 1617.5, profile["bmr"].(float64), 1e-9, "stored tmb is ignored, bmr recomputed")

	foodLog := state["foodLog"].([]any)
	require.Len(t, foodLog, 1)
	first := foodLog[0].(map[string]any)
	assert.Equal(t, "Feijão", first["name"])
	assert.InDelta(t, 76.5, first["calories"].(float64), 1e-9, "string calories coerced")
	assert.Equal(t, "LUNCH", first["mealSlot"])
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, stubLookup{})
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
