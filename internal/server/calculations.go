// internal/server/calculations.go
package server

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/nutrition"
)

type imcRequest struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

type tmbRequest struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
}

type waterRequest struct {
	Weight float64 `json:"weight"`
}

// calculateIMC returns the body mass index and its category for the given
// weight (kg) and height (cm).
func (h *handlers) calculateIMC(c *gin.Context) {
	var req imcRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Weight <= 0 || req.Height <= 0 {
		h.badPayload(c, "peso e altura devem ser valores positivos")
		return
	}

	imc := round2(nutrition.BMI(req.Weight, req.Height))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"imc":      imc,
			"category": nutrition.BMICategory(imc),
		},
	})
}

// calculateTMB returns the basal metabolic rate (Mifflin-St Jeor).
func (h *handlers) calculateTMB(c *gin.Context) {
	var req tmbRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Weight <= 0 || req.Height <= 0 || req.Age <= 0 {
		h.badPayload(c, "peso, altura e idade devem ser valores positivos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"tmb": nutrition.BMR(req.Weight, req.Height, req.Age, req.Gender),
		},
	})
}

// calculateWater returns the recommended daily water intake in ml.
func (h *handlers) calculateWater(c *gin.Context) {
	var req waterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Weight <= 0 {
		h.badPayload(c, "peso deve ser um valor positivo")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"waterIntake": nutrition.WaterIntake(req.Weight),
		},
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
