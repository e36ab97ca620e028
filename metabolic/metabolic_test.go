package metabolic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutricalc/nutricalc-backend/metabolic"
	"github.com/nutricalc/nutricalc-backend/models"
)

func TestComputeProfileMale(t *testing.T) {
	p, err := metabolic.ComputeProfile(metabolic.Input{
		Weight:         70,
		Height:         170,
		Age:            30,
		Sex:            models.SexMale,
		ActivityFactor: 1.2,
	})
	require.NoError(t, err)

	assert.Equal(t, 1617.5, p.BMR)
	assert.Equal(t, 1941.0, p.TDEE)
	assert.InDelta(t, 24.22, p.BMI, 0.01)
	assert.Equal(t, models.BMINormal, p.BMIClass)
}

func TestComputeProfileFemale(t *testing.T) {
	p, err := metabolic.ComputeProfile(metabolic.Input{
		Weight:         55,
		Height:         160,
		Age:            25,
		Sex:            models.SexFemale,
		ActivityFactor: 1.375,
	})
	require.NoError(t, err)

	assert.Equal(t, 1264.0, p.BMR)
	assert.Equal(t, 1738.0, p.TDEE)
	assert.InDelta(t, 21.48, p.BMI, 0.01)
	assert.Equal(t, models.BMINormal, p.BMIClass)
}

func TestComputeProfileDeterministic(t *testing.T) {
	in := metabolic.Input{Weight: 82.4, Height: 178.5, Age: 41, Sex: models.SexMale, ActivityFactor: 1.55}

	first, err := metabolic.ComputeProfile(in)
	require.NoError(t, err)
	second, err := metabolic.ComputeProfile(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeProfileRejectsInvalidInput(t *testing.T) {
	valid := metabolic.Input{Weight: 70, Height: 170, Age: 30, Sex: models.SexMale, ActivityFactor: 1.2}

	cases := map[string]func(*metabolic.Input){
		"zero weight":             func(in *metabolic.Input) { in.Weight = 0 },
		"negative weight":         func(in *metabolic.Input) { in.Weight = -70 },
		"zero height":             func(in *metabolic.Input) { in.Height = 0 },
		"zero age":                func(in *metabolic.Input) { in.Age = 0 },
		"unknown sex":             func(in *metabolic.Input) { in.Sex = "OTHER" },
		"unlisted activityFactor": func(in *metabolic.Input) { in.ActivityFactor = 1.9 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := metabolic.ComputeProfile(in)
			assert.Error(t, err)
		})
	}
}

func TestClassifyBMIBoundaries(t *testing.T) {
	cases := []struct {
		bmi  float64
		want models.BMIClass
	}{
		{16.0, models.BMIUnderweight},
		{18.49, models.BMIUnderweight},
		{18.5, models.BMINormal}, // boundary belongs to the upper band
		{24.99, models.BMINormal},
		{25.0, models.BMIOverweight},
		{29.99, models.BMIOverweight},
		{30.0, models.BMIObese},
		{45.0, models.BMIObese},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, metabolic.ClassifyBMI(tc.bmi), "bmi=%v", tc.bmi)
	}
}
