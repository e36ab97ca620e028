// Package metabolic computes a user's metabolic profile from body metrics.
// All functions are pure: no I/O, no state, deterministic for equal input.
package metabolic

import (
	"fmt"
	"math"

	"github.com/nutricalc/nutricalc-backend/models"
)

// ActivityFactors is the allowed set of TDEE multipliers, sedentary to intense.
var ActivityFactors = []float64{1.2, 1.375, 1.55, 1.725}

// Input is the body-metrics tuple a profile is derived from.
type Input struct {
	Weight         float64    `json:"weight"` // kg
	Height         float64    `json:"height"` // cm
	Age            int        `json:"age"`
	Sex            models.Sex `json:"sex"`
	ActivityFactor float64    `json:"activityFactor"`
}

// Validate rejects inputs the formulas are not defined for. Callers must not
// compute a profile from an input that fails validation.
func (in Input) Validate() error {
	if !(in.Weight > 0) {
		return fmt.Errorf("weight must be positive, got %v", in.Weight)
	}
	if !(in.Height > 0) {
		return fmt.Errorf("height must be positive, got %v", in.Height)
	}
	if in.Age <= 0 {
		return fmt.Errorf("age must be positive, got %d", in.Age)
	}
	if !in.Sex.Valid() {
		return fmt.Errorf("sex must be MALE or FEMALE, got %q", in.Sex)
	}
	if !validActivityFactor(in.ActivityFactor) {
		return fmt.Errorf("activity factor must be one of %v, got %v", ActivityFactors, in.ActivityFactor)
	}
	return nil
}

func validActivityFactor(f float64) bool {
	for _, allowed := range ActivityFactors {
		if f == allowed {
			return true
		}
	}
	return false
}

// ComputeProfile derives BMR, TDEE, BMI and the BMI class from in.
//
// BMR uses the Mifflin-St Jeor equation; the older age-bracketed
// Harris-Benedict family is deliberately not implemented.
func ComputeProfile(in Input) (models.Profile, error) {
	if err := in.Validate(); err != nil {
		return models.Profile{}, err
	}

	bmr := 10*in.Weight + 6.25*in.Height - 5*float64(in.Age)
	if in.Sex == models.SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	heightM := in.Height / 100
	bmi := in.Weight / (heightM * heightM)
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) {
		// Height is validated positive, so this cannot happen; guard anyway
		// rather than persist a non-finite value.
		return models.Profile{}, fmt.Errorf("bmi is not finite for height %v", in.Height)
	}

	return models.Profile{
		Weight:         in.Weight,
		Height:         in.Height,
		Age:            in.Age,
		Sex:            in.Sex,
		ActivityFactor: in.ActivityFactor,
		BMR:            bmr,
		TDEE:           bmr * in.ActivityFactor,
		BMI:            bmi,
		BMIClass:       ClassifyBMI(bmi),
	}, nil
}

// ClassifyBMI maps a BMI value to its band. Boundaries belong to the upper
// band: exactly 18.5 is NORMAL, exactly 25 is OVERWEIGHT, exactly 30 is OBESE.
func ClassifyBMI(bmi float64) models.BMIClass {
	switch {
	case bmi < 18.5:
		return models.BMIUnderweight
	case bmi < 25:
		return models.BMINormal
	case bmi < 30:
		return models.BMIOverweight
	default:
		return models.BMIObese
	}
}
