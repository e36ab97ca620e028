package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/snapshot"
)

func TestDecodeLegacyBrowserLayout(t *testing.T) {
	data := []byte(`{
		"profile": {
			"weight": 70, "height": 170, "age": 30,
			"gender": "Masculino", "activityLevel": 1.2,
			"tmb": 9999, "tdee": 9999, "imc": 9999, "imcClassification": "Normal"
		},
		"foods": [
			{"id": "abc123", "name": "Arroz branco", "calories": 128, "carbs": 28.1,
			 "protein": 2.5, "lipids": 0.2, "portion": 100, "source": "TACO", "meal": "Almoço"}
		]
	}`)

	state, warnings, err := snapshot.Decode(data)
	require.NoError(t, err)

	require.NotNil(t, state.Profile)
	assert.Equal(t, models.SexMale, state.Profile.Sex)
	// Derived values recomputed from inputs, not trusted from the record.
	assert.Equal(t, 1617.5, state.Profile.BMR)
	assert.Equal(t, 1941.0, state.Profile.TDEE)
	assert.Equal(t, models.BMINormal, state.Profile.BMIClass)

	require.Len(t, state.FoodLog, 1)
	e := state.FoodLog[0]
	assert.Equal(t, "abc123", e.EntryID)
	assert.Equal(t, 0.2, e.Fat)
	assert.Equal(t, 100.0, e.PortionQuantity)
	assert.Equal(t, "g", e.PortionUnit)
	assert.Equal(t, models.MealLunch, e.MealSlot)
	assert.Equal(t, "TACO", e.Provenance)

	assert.NotEmpty(t, warnings) // at least the legacy-key translation
}

func TestDecodeMissingFieldsIndependently(t *testing.T) {
	state, _, err := snapshot.Decode([]byte(`{"schemaVersion": 1}`))
	require.NoError(t, err)
	assert.Nil(t, state.Profile)
	assert.Empty(t, state.FoodLog)

	state, _, err = snapshot.Decode([]byte(`{"schemaVersion": 1, "foodLog": [{"id": "x", "name": "Ovo", "calories": 70, "mealSlot": "BREAKFAST", "portionQuantity": 1, "portionUnit": "unit"}]}`))
	require.NoError(t, err)
	assert.Nil(t, state.Profile)
	require.Len(t, state.FoodLog, 1)
}

func TestDecodeCoercesMalformedNutrients(t *testing.T) {
	data := []byte(`{"foodLog": [
		{"id": "a", "name": "Feijão", "calories": "76.5", "carbs": null, "protein": {"oops": true}, "fat": 0.5, "mealSlot": "LUNCH", "portionQuantity": 100, "portionUnit": "g"}
	]}`)

	state, warnings, err := snapshot.Decode(data)
	require.NoError(t, err)

	require.Len(t, state.FoodLog, 1)
	e := state.FoodLog[0]
	assert.Equal(t, 76.5, e.Calories) // numeric string coerced
	assert.Equal(t, 0.0, e.Carbs)
	assert.Equal(t, 0.0, e.Protein) // wrong type coerced to zero, entry kept
	assert.Equal(t, 0.5, e.Fat)
	assert.NotEmpty(t, warnings)
}

func TestDecodeDiscardsInvalidProfileKeepsLog(t *testing.T) {
	data := []byte(`{
		"profile": {"weight": -5, "height": 170, "age": 30, "sex": "MALE", "activityFactor": 1.2},
		"foodLog": [{"id": "a", "name": "Pão", "calories": 62, "mealSlot": "BREAKFAST", "portionQuantity": 25, "portionUnit": "g"}]
	}`)

	state, warnings, err := snapshot.Decode(data)
	require.NoError(t, err)

	assert.Nil(t, state.Profile)
	require.Len(t, state.FoodLog, 1)
	assert.NotEmpty(t, warnings)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := snapshot.State{
		Profile: &models.Profile{
			Weight: 55, Height: 160, Age: 25,
			Sex: models.SexFemale, ActivityFactor: 1.375,
			BMR: 1264, TDEE: 1738, BMI: 21.484375, BMIClass: models.BMINormal,
		},
		FoodLog: []models.FoodLogEntry{
			{
				EntryID: "e1", Name: "Banana", Calories: 89, Carbs: 22.8, Protein: 1.1, Fat: 0.3,
				PortionQuantity: 100, PortionUnit: "g", MealSlot: models.MealMorningSnack, Provenance: "TACO",
			},
		},
	}

	encoded, err := snapshot.Encode(original)
	require.NoError(t, err)

	decoded, warnings, err := snapshot.Decode(encoded)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, snapshot.SchemaVersion, decoded.SchemaVersion)
	require.NotNil(t, decoded.Profile)
	assert.Equal(t, original.Profile.BMR, decoded.Profile.BMR)
	assert.Equal(t, original.Profile.BMIClass, decoded.Profile.BMIClass)
	require.Len(t, decoded.FoodLog, 1)
	assert.Equal(t, original.FoodLog[0].EntryID, decoded.FoodLog[0].EntryID)
	assert.Equal(t, original.FoodLog[0].Fat, decoded.FoodLog[0].Fat)
	assert.Equal(t, original.FoodLog[0].MealSlot, decoded.FoodLog[0].MealSlot)
}
