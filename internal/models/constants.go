// internal/models/constants.go
package models

// Domain vocabulary. The values are what the product speaks (and what the
// AI is instructed to emit), so they are kept in Portuguese.

var DietTypes = []string{
	"Mediterrânea",
	"Low Carb",
	"Cetogênica",
	"Vegetariana",
}

var Genders = []string{"Masculino", "Feminino"}

var Goals = []string{"Emagrecimento", "Hipertrofia"}

var Allergies = []string{
	"Lactose",
	"Glúten",
	"Proteína do leite",
	"Ovo",
	"Frutos do mar",
	"Nenhuma",
}

var FoodCategories = []string{
	"proteins",
	"vegetables",
	"greens",
	"carbs",
	"fruits",
	"fats",
}

var MealTypes = []string{
	"Café da manhã",
	"Lanche da manhã",
	"Almoço",
	"Lanche da tarde",
	"Jantar",
	"Ceia",
}

// FallbackPrice is charged when the generated plan carries no price.
const FallbackPrice = 97.90
