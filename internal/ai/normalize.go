// internal/ai/normalize.go
package ai

import (
	"encoding/json"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
)

// Documented defaults for every optional DietPlan field. All defaulting
// lives here so the generator and the normalizer cannot drift apart.
const (
	DefaultDailyCalories    = 2000.0
	DefaultWaterIntake      = 2000.0
	DefaultHydrationAdvice  = "Beber 2L de água por dia"
	DefaultNutritionalTips  = "Siga as recomendações do seu nutricionista"
	DefaultProteinGrams     = 150.0
	DefaultProteinPercent   = 30.0
	DefaultCarbsGrams       = 250.0
	DefaultCarbsPercent     = 50.0
	DefaultFatsGrams        = 67.0
	DefaultFatsPercent      = 30.0
)

// Raw shapes mirror the JSON the completion service is instructed to emit.
// Pointers distinguish "absent" from zero so defaults only replace absence.
type planEnvelope struct {
	DietPlan *rawPlan `json:"dietPlan"`
}

type rawPlan struct {
	Description     string        `json:"description"`
	DailyCalories   *float64      `json:"dailyCalories"`
	Macronutrients  *rawMacros    `json:"macronutrients"`
	Meals           []rawMeal     `json:"meals"`
	Hydration       *rawHydration `json:"hydration"`
	NutritionalTips string        `json:"nutritionalTips"`
	Price           *float64      `json:"price"`
}

type rawMacros struct {
	Protein *models.Macronutrient `json:"protein"`
	Carbs   *models.Macronutrient `json:"carbs"`
	Fats    *models.Macronutrient `json:"fats"`
}

type rawHydration struct {
	WaterIntake     *float64 `json:"waterIntake"`
	Recommendations string   `json:"recommendations"`
}

type rawMeal struct {
	Type  string        `json:"type"`
	Foods []rawFoodItem `json:"foods"`
}

type rawFoodItem struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories"`
	Notes    string   `json:"notes"`
}

// Normalize turns a raw completion payload into a strict DietPlan.
// Optional fields get their documented defaults; a missing dietPlan root
// fails; a food item without a name is dropped without failing the plan.
// Price is the one field left untouched: the generator owns its fallback.
func Normalize(content []byte) (*models.DietPlan, error) {
	var env planEnvelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, apperr.Schema(apperr.KindMalformed, "resposta da IA em formato inválido", err)
	}
	if env.DietPlan == nil {
		return nil, apperr.Schema(apperr.KindMissingRoot, "estrutura inválida: falta dietPlan", nil)
	}

	raw := env.DietPlan
	plan := &models.DietPlan{
		Description:     raw.Description,
		DailyCalories:   DefaultDailyCalories,
		NutritionalTips: DefaultNutritionalTips,
		Hydration: models.Hydration{
			WaterIntake:     DefaultWaterIntake,
			Recommendations: DefaultHydrationAdvice,
		},
		Macronutrients: models.Macronutrients{
			Protein: models.Macronutrient{Grams: DefaultProteinGrams, Percentage: DefaultProteinPercent},
			Carbs:   models.Macronutrient{Grams: DefaultCarbsGrams, Percentage: DefaultCarbsPercent},
			Fats:    models.Macronutrient{Grams: DefaultFatsGrams, Percentage: DefaultFatsPercent},
		},
		Meals: []models.Meal{},
	}

	if raw.DailyCalories != nil && *raw.DailyCalories > 0 {
		plan.DailyCalories = *raw.DailyCalories
	}
	if raw.NutritionalTips != "" {
		plan.NutritionalTips = raw.NutritionalTips
	}
	if raw.Hydration != nil {
		if raw.Hydration.WaterIntake != nil && *raw.Hydration.WaterIntake > 0 {
			plan.Hydration.WaterIntake = *raw.Hydration.WaterIntake
		}
		if raw.Hydration.Recommendations != "" {
			plan.Hydration.Recommendations = raw.Hydration.Recommendations
		}
	}
	if raw.Macronutrients != nil {
		if raw.Macronutrients.Protein != nil {
			plan.Macronutrients.Protein = *raw.Macronutrients.Protein
		}
		if raw.Macronutrients.Carbs != nil {
			plan.Macronutrients.Carbs = *raw.Macronutrients.Carbs
		}
		if raw.Macronutrients.Fats != nil {
			plan.Macronutrients.Fats = *raw.Macronutrients.Fats
		}
	}
	if raw.Price != nil {
		plan.Price = *raw.Price
	}

	for _, m := range raw.Meals {
		meal := models.Meal{Type: m.Type, Foods: []models.FoodItem{}}
		for _, f := range m.Foods {
			if f.Name == "" {
				// Name is structurally required per item, but one malformed
				// item must not fail the whole plan.
				continue
			}
			item := models.FoodItem{
				Name:     f.Name,
				Category: f.Category,
				Quantity: f.Quantity,
				Notes:    f.Notes,
			}
			if f.Calories != nil && *f.Calories > 0 {
				item.Calories = *f.Calories
			}
			meal.Foods = append(meal.Foods, item)
		}
		plan.Meals = append(plan.Meals, meal)
	}

	return plan, nil
}
