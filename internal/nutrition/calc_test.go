package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBMI(t *testing.T) {
	// 74 kg at 2.00 m is exactly 18.5.
	assert.Equal(t, 18.5, BMI(74, 200))
	assert.InDelta(t, 24.22, BMI(70, 170), 0.01)
	assert.Zero(t, BMI(70, 0))
}

func TestBMICategoryBoundaries(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{17.0, "Abaixo do peso"},
		{18.49, "Abaixo do peso"},
		{18.5, "Peso normal"}, // inclusive lower edge of normal
		{22.0, "Peso normal"},
		{24.9, "Peso normal"}, // 24.9 itself is still normal
		{25.0, "Sobrepeso"},
		{29.9, "Sobrepeso"}, // 29.9 itself is still overweight
		{30.0, "Obesidade"},
		{35.0, "Obesidade"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BMICategory(tt.bmi), "BMI %.2f", tt.bmi)
	}
}

func TestBMICategoryFromMeasurements(t *testing.T) {
	// Derived end to end from weight/height pairs that land on the edges.
	assert.Equal(t, "Peso normal", BMICategory(BMI(74, 200)))   // 18.5
	assert.Equal(t, "Peso normal", BMICategory(BMI(24.9, 100))) // 24.9
	assert.Equal(t, "Sobrepeso", BMICategory(BMI(29.9, 100)))   // 29.9
	assert.Equal(t, "Obesidade", BMICategory(BMI(30, 100)))     // 30.0
}

func TestBMR(t *testing.T) {
	assert.Equal(t, 10*70+6.25*170-5*30+5, BMR(70, 170, 30, "Masculino"))
	assert.Equal(t, 10*60+6.25*165-5*25-161, BMR(60, 165, 25, "Feminino"))
}

func TestWaterIntake(t *testing.T) {
	assert.Equal(t, 2450.0, WaterIntake(70))
}
