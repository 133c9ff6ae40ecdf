// internal/nutrition/calc.go
package nutrition

// BMI returns the body mass index for weight in kg and height in cm.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	heightM := heightCm / 100
	return weightKg / (heightM * heightM)
}

// BMICategory buckets a BMI value. The chain of inclusive upper bounds is
// deliberate: 24.9 is still "Peso normal" and 29.9 is still "Sobrepeso".
func BMICategory(bmi float64) string {
	if bmi < 18.5 {
		return "Abaixo do peso"
	}
	if bmi <= 24.9 {
		return "Peso normal"
	}
	if bmi <= 29.9 {
		return "Sobrepeso"
	}
	return "Obesidade"
}

// BMR returns the basal metabolic rate (Mifflin-St Jeor).
func BMR(weightKg, heightCm float64, age int, gender string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == "Masculino" {
		return base + 5
	}
	return base - 161
}

// WaterIntake returns the recommended daily water intake in ml (35 ml/kg).
func WaterIntake(weightKg float64) float64 {
	return 35 * weightKg
}
