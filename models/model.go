package models

import "time"

// Sex selects which Mifflin-St Jeor constant applies.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

// Valid reports whether s is one of the two supported values.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// BMIClass is the classification band for a body-mass index value.
type BMIClass string

const (
	BMIUnderweight BMIClass = "UNDERWEIGHT"
	BMINormal      BMIClass = "NORMAL"
	BMIOverweight  BMIClass = "OVERWEIGHT"
	BMIObese       BMIClass = "OBESE"
)

// MealSlot is the meal a food log entry belongs to.
type MealSlot string

const (
	MealBreakfast      MealSlot = "BREAKFAST"
	MealMorningSnack   MealSlot = "MORNING_SNACK"
	MealLunch          MealSlot = "LUNCH"
	MealAfternoonSnack MealSlot = "AFTERNOON_SNACK"
	MealDinner         MealSlot = "DINNER"
)

// MealSlots is the fixed display order of the slots.
var MealSlots = []MealSlot{
	MealBreakfast,
	MealMorningSnack,
	MealLunch,
	MealAfternoonSnack,
	MealDinner,
}

// Valid reports whether m is one of the known slots.
func (m MealSlot) Valid() bool {
	for _, s := range MealSlots {
		if m == s {
			return true
		}
	}
	return false
}

// Profile is a user's metabolic profile. The derived fields (BMR, TDEE, BMI,
// BMIClass) are always recomputed from the input fields and must never be set
// independently of them. A profile is replaced wholesale on resubmission.
type Profile struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UserEmail string `gorm:"size:255;uniqueIndex;not null" json:"-"`

	Weight         float64 `gorm:"not null" json:"weight"`
	Height         float64 `gorm:"not null" json:"height"`
	Age            int     `gorm:"not null" json:"age"`
	Sex            Sex     `gorm:"size:10;not null" json:"sex"`
	ActivityFactor float64 `gorm:"not null" json:"activityFactor"`

	BMR      float64  `json:"bmr"`
	TDEE     float64  `json:"tdee"`
	BMI      float64  `json:"bmi"`
	BMIClass BMIClass `gorm:"size:20" json:"bmiClass"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FoodLogEntry is one logged food. Nutrient fields are the values for the
// entire logged portion, not per-100g; any unit conversion happens before the
// entry is constructed. Entries are immutable once created and removed only by
// explicit deletion.
type FoodLogEntry struct {
	EntryID   string `gorm:"primaryKey;size:36" json:"id"`
	UserEmail string `gorm:"size:255;index;not null" json:"-"`

	Name     string  `gorm:"size:255;not null" json:"name"`
	Calories float64 `gorm:"default:0" json:"calories"`
	Carbs    float64 `gorm:"default:0" json:"carbs"`
	Protein  float64 `gorm:"default:0" json:"protein"`
	Fat      float64 `gorm:"default:0" json:"fat"`

	PortionQuantity float64  `gorm:"not null" json:"portionQuantity"`
	PortionUnit     string   `gorm:"size:50;not null" json:"portionUnit"`
	MealSlot        MealSlot `gorm:"size:20;not null" json:"mealSlot"`
	Provenance      string   `gorm:"size:255" json:"provenance"`

	LoggedAt time.Time `json:"loggedAt"`
}

// FoodFact is a cached nutrition lookup, keyed by the normalized query.
// Values are per reference basis (100 g/ml or per unit), never per portion.
// Unverified facts came from the AI estimator and are candidates for
// background re-verification against Open Food Facts.
type FoodFact struct {
	ID    uint   `gorm:"primaryKey" json:"-"`
	Query string `gorm:"size:255;uniqueIndex;not null" json:"query"`
	Name  string `gorm:"size:255;not null" json:"name"`

	Calories float64 `gorm:"default:0" json:"calories"`
	Carbs    float64 `gorm:"default:0" json:"carbs"`
	Protein  float64 `gorm:"default:0" json:"protein"`
	Fat      float64 `gorm:"default:0" json:"fat"`

	Basis      string `gorm:"size:20;not null" json:"basis"` // per-100g, per-100ml, per-unit
	Provenance string `gorm:"size:255" json:"provenance"`
	Verified   bool   `gorm:"default:false" json:"verified"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}
