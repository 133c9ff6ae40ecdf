// internal/models/models.go
package models

import (
	"time"
)

// UserProfile is the inbound biometric/dietary data for one person.
// It is immutable once handed to the fulfillment pipeline.
type UserProfile struct {
	Name            string              `json:"name"`
	Age             int                 `json:"age"`
	Height          float64             `json:"height"` // cm
	Weight          float64             `json:"weight"` // kg
	Gender          string              `json:"gender"`
	Goal            string              `json:"goal"`
	DietType        string              `json:"dietType"`
	Allergies       []string            `json:"allergies"`
	FoodPreferences map[string][]string `json:"foodPreferences"`
	Phone           string              `json:"phone"`
	Email           string              `json:"email"`
}

// DietPlan is the fully defaulted plan produced by the normalizer.
// Every numeric field is either the AI's value or the documented default;
// downstream components treat it as read-only.
type DietPlan struct {
	Description     string         `json:"description"`
	DailyCalories   float64        `json:"dailyCalories"`
	Macronutrients  Macronutrients `json:"macronutrients"`
	Meals           []Meal         `json:"meals"`
	Hydration       Hydration      `json:"hydration"`
	NutritionalTips string         `json:"nutritionalTips"`
	Price           float64        `json:"price"`
}

type Macronutrients struct {
	Protein Macronutrient `json:"protein"`
	Carbs   Macronutrient `json:"carbs"`
	Fats    Macronutrient `json:"fats"`
}

type Macronutrient struct {
	Grams      float64 `json:"grams"`
	Percentage float64 `json:"percentage"`
}

type Hydration struct {
	WaterIntake     float64 `json:"waterIntake"` // ml/day
	Recommendations string  `json:"recommendations"`
}

type Meal struct {
	Type  string     `json:"type"`
	Foods []FoodItem `json:"foods"`
}

type FoodItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Notes    string  `json:"notes,omitempty"`
}

// Payment is the persisted record of one payment-provider preference and
// its terminal status transition.
type Payment struct {
	ID                int64     `json:"id"`
	ExternalReference string    `json:"external_reference"`
	ProviderPaymentID string    `json:"provider_payment_id"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	PayerEmail        string    `json:"payer_email"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
