// internal/pdf/renderer.go
package pdf

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
	"nutriplan/internal/nutrition"
	"nutriplan/pkg/logger"
)

// A4 portrait layout, mm units.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
	// The footer is never rendered with less than this much room left.
	tailMargin = 45.0
	bottom     = pageHeight - 20.0
)

// Renderer produces the paginated diet-plan document: header, user info,
// nutrient summary, per-meal sections, tips and footer.
type Renderer struct {
	logger *logger.Logger
}

func NewRenderer(log *logger.Logger) *Renderer {
	return &Renderer{logger: log}
}

// Render writes the document into outputDir and returns its path. The
// filename embeds the recipient's name and a nanosecond timestamp, so
// concurrent renders for the same user never collide. A partially written
// file on failure is the caller's to clean up.
func (r *Renderer) Render(plan *models.DietPlan, profile models.UserProfile, outputDir string) (string, error) {
	name := profile.Name
	if name == "" {
		name = "user"
	}
	fileName := fmt.Sprintf("diet_plan_%s_%d.pdf", sanitizeFileName(name), time.Now().UnixNano())
	fullPath := filepath.Join(outputDir, fileName)

	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	r.addHeader(doc, tr, profile)
	r.addUserInfo(doc, tr, profile)
	r.addNutritionalSummary(doc, tr, plan)
	r.addMealPlan(doc, tr, plan)
	r.addTipsAndFooter(doc, tr, plan)

	if err := doc.OutputFileAndClose(fullPath); err != nil {
		r.logger.Errorw("PDF generation failed", "path", fullPath, "error", err)
		return "", apperr.Render(apperr.KindIO, "falha ao gerar o documento do plano", err)
	}

	return fullPath, nil
}

// ensureSpace starts a new page when the next block would not fit.
func ensureSpace(doc *gofpdf.Fpdf, needed float64) {
	if doc.GetY()+needed > bottom {
		doc.AddPage()
		doc.SetY(15)
	}
}

func (r *Renderer) addHeader(doc *gofpdf.Fpdf, tr func(string) string, profile models.UserProfile) {
	doc.SetFillColor(0, 121, 107)
	doc.Rect(0, 0, pageWidth, 28, "F")

	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 18)
	doc.SetXY(marginLeft, 7)
	doc.CellFormat(contentWidth, 9, tr("PLANO NUTRICIONAL PERSONALIZADO"), "", 1, "C", false, 0, "")

	name := profile.Name
	if name == "" {
		name = "Cliente"
	}
	doc.SetFont("Helvetica", "", 11)
	doc.SetX(marginLeft)
	doc.CellFormat(contentWidth, 7, tr("Preparado para "+name), "", 1, "C", false, 0, "")

	doc.SetDrawColor(224, 242, 241)
	doc.Line(marginLeft, 30, pageWidth-marginRight, 30)
	doc.SetY(36)
}

func (r *Renderer) addUserInfo(doc *gofpdf.Fpdf, tr func(string) string, profile models.UserProfile) {
	ensureSpace(doc, 50)

	r.sectionTitle(doc, tr, "INFORMAÇÕES DO USUÁRIO")

	bmi := nutrition.BMI(profile.Weight, profile.Height)
	category := nutrition.BMICategory(bmi)

	top := doc.GetY()
	doc.SetFillColor(245, 251, 250)
	doc.SetDrawColor(224, 242, 241)
	doc.Rect(marginLeft, top, contentWidth, 38, "FD")

	doc.SetTextColor(69, 90, 100)
	doc.SetFont("Helvetica", "", 9)

	left := [][2]string{
		{"Idade", fmt.Sprintf("%d anos", profile.Age)},
		{"Altura", fmt.Sprintf("%.0f cm", profile.Height)},
		{"Peso", fmt.Sprintf("%.0f kg", profile.Weight)},
		{"IMC", fmt.Sprintf("%.1f (%s)", bmi, category)},
		{"Sexo", orDefault(profile.Gender, "Não informado")},
	}
	right := [][2]string{
		{"Objetivo", orDefault(profile.Goal, "Não especificado")},
		{"Dieta", orDefault(profile.DietType, "Padrão")},
		{"Alergias", orDefault(strings.Join(profile.Allergies, ", "), "Nenhuma")},
		{"Preferências", orDefault(flattenPreferences(profile.FoodPreferences), "Nenhuma")},
	}

	y := top + 4
	for _, row := range left {
		doc.SetXY(marginLeft+4, y)
		doc.CellFormat(85, 5, tr(row[0]+": "+row[1]), "", 0, "L", false, 0, "")
		y += 6.5
	}
	y = top + 4
	for _, row := range right {
		doc.SetXY(marginLeft+95, y)
		doc.CellFormat(80, 5, tr(row[0]+": "+row[1]), "", 0, "L", false, 0, "")
		y += 6.5
	}

	doc.SetY(top + 44)
}

func (r *Renderer) addNutritionalSummary(doc *gofpdf.Fpdf, tr func(string) string, plan *models.DietPlan) {
	ensureSpace(doc, 60)

	r.sectionTitle(doc, tr, "RESUMO NUTRICIONAL")

	doc.SetTextColor(69, 90, 100)
	doc.SetFont("Helvetica", "", 9)
	doc.SetX(marginLeft)
	doc.CellFormat(contentWidth, 5, tr(fmt.Sprintf("Calorias Diárias: %.0f kcal", plan.DailyCalories)), "", 1, "L", false, 0, "")
	doc.SetX(marginLeft)
	doc.CellFormat(contentWidth, 5, tr(fmt.Sprintf("Ingestão de Água: %.0f ml/dia", plan.Hydration.WaterIntake)), "", 1, "L", false, 0, "")
	if plan.Description != "" {
		doc.SetX(marginLeft)
		doc.MultiCell(contentWidth, 5, tr("Descrição: "+plan.Description), "", "L", false)
	}
	doc.Ln(2)

	// Macronutrient table header.
	doc.SetFillColor(0, 121, 107)
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 8)
	doc.SetX(marginLeft)
	doc.CellFormat(70, 6, tr("MACRONUTRIENTE"), "", 0, "L", true, 0, "")
	doc.CellFormat(55, 6, tr("GRAMAS/DIA"), "", 0, "L", true, 0, "")
	doc.CellFormat(55, 6, tr("% DIÁRIA"), "", 1, "L", true, 0, "")

	rows := []struct {
		name string
		data models.Macronutrient
	}{
		{"Proteínas", plan.Macronutrients.Protein},
		{"Carboidratos", plan.Macronutrients.Carbs},
		{"Gorduras", plan.Macronutrients.Fats},
	}

	doc.SetTextColor(69, 90, 100)
	doc.SetFont("Helvetica", "", 8)
	for i, row := range rows {
		if i%2 == 0 {
			doc.SetFillColor(248, 248, 248)
		} else {
			doc.SetFillColor(255, 255, 255)
		}
		doc.SetX(marginLeft)
		doc.CellFormat(70, 6, tr(row.name), "", 0, "L", true, 0, "")
		doc.CellFormat(55, 6, fmt.Sprintf("%.1fg", row.data.Grams), "", 0, "L", true, 0, "")
		doc.CellFormat(55, 6, fmt.Sprintf("%.0f%%", row.data.Percentage), "", 1, "L", true, 0, "")
	}

	doc.Ln(6)
}

func (r *Renderer) addMealPlan(doc *gofpdf.Fpdf, tr func(string) string, plan *models.DietPlan) {
	ensureSpace(doc, 20)

	r.sectionTitle(doc, tr, "PLANO ALIMENTAR DIÁRIO")

	for _, meal := range plan.Meals {
		ensureSpace(doc, 8+float64(len(meal.Foods))*12)

		mealType := meal.Type
		if mealType == "" {
			mealType = "Refeição"
		}
		doc.SetFillColor(0, 121, 107)
		doc.SetTextColor(255, 255, 255)
		doc.SetFont("Helvetica", "B", 9)
		doc.SetX(marginLeft)
		doc.CellFormat(contentWidth, 6, tr(strings.ToUpper(mealType)), "", 1, "L", true, 0, "")

		for i, food := range meal.Foods {
			ensureSpace(doc, 12)
			if i%2 == 0 {
				doc.SetFillColor(248, 248, 248)
			} else {
				doc.SetFillColor(255, 255, 255)
			}

			top := doc.GetY()
			doc.Rect(marginLeft, top, contentWidth, 11, "F")

			doc.SetTextColor(38, 50, 56)
			doc.SetFont("Helvetica", "B", 8)
			doc.SetXY(marginLeft+3, top+1.5)
			doc.CellFormat(90, 4, tr(food.Name), "", 0, "L", false, 0, "")

			doc.SetTextColor(84, 110, 122)
			doc.SetFont("Helvetica", "", 7)
			doc.SetXY(marginLeft+95, top+1.5)
			doc.CellFormat(45, 4, tr("Categoria: "+orDefault(food.Category, "N/A")), "", 0, "L", false, 0, "")
			if food.Notes != "" {
				doc.SetXY(marginLeft+140, top+1.5)
				doc.CellFormat(38, 4, tr("Obs: "+food.Notes), "", 0, "L", false, 0, "")
			}

			doc.SetXY(marginLeft+3, top+6)
			doc.CellFormat(120, 4,
				tr(fmt.Sprintf("Quantidade: %s | Calorias: %.0f kcal", orDefault(food.Quantity, "N/A"), food.Calories)),
				"", 0, "L", false, 0, "")

			doc.SetY(top + 12)
		}

		doc.Ln(3)
	}
}

func (r *Renderer) addTipsAndFooter(doc *gofpdf.Fpdf, tr func(string) string, plan *models.DietPlan) {
	ensureSpace(doc, tailMargin)

	r.sectionTitle(doc, tr, "DICAS NUTRICIONAIS")

	tips := plan.NutritionalTips
	if tips == "" {
		tips = "Nenhuma dica específica fornecida."
	}
	translated := tr(tips)

	// The box grows with the text so long tips never spill past its border.
	doc.SetFont("Helvetica", "", 9)
	lines := doc.SplitText(tips, contentWidth-8)
	boxHeight := float64(len(lines))*4.5 + 6
	if boxHeight < 24 {
		boxHeight = 24
	}
	ensureSpace(doc, boxHeight+6)

	top := doc.GetY()
	doc.SetFillColor(245, 251, 250)
	doc.SetDrawColor(224, 242, 241)
	doc.Rect(marginLeft, top, contentWidth, boxHeight, "FD")

	doc.SetTextColor(69, 90, 100)
	doc.SetXY(marginLeft+4, top+3)
	doc.MultiCell(contentWidth-8, 4.5, translated, "", "L", false)

	doc.SetY(top + boxHeight + 6)
	ensureSpace(doc, 18)

	footer := "Este plano foi gerado automaticamente com base em suas informações. " +
		"Consulte um nutricionista para orientações personalizadas."
	copyright := fmt.Sprintf("© %d NutriApp - Todos os direitos reservados", time.Now().Year())

	doc.SetTextColor(120, 144, 156)
	doc.SetFont("Helvetica", "", 8)
	doc.SetX(marginLeft)
	doc.MultiCell(contentWidth, 4.5, tr(footer), "", "C", false)
	doc.Ln(2)
	doc.SetTextColor(176, 190, 197)
	doc.SetX(marginLeft)
	doc.CellFormat(contentWidth, 4.5, tr(copyright), "", 1, "C", false, 0, "")
}

func (r *Renderer) sectionTitle(doc *gofpdf.Fpdf, tr func(string) string, title string) {
	doc.SetTextColor(0, 121, 107)
	doc.SetFont("Helvetica", "B", 13)
	doc.SetX(marginLeft)
	doc.CellFormat(contentWidth, 8, tr(title), "", 1, "L", false, 0, "")
	doc.Ln(1)
}

func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func flattenPreferences(prefs map[string][]string) string {
	var parts []string
	for _, items := range prefs {
		parts = append(parts, items...)
	}
	return strings.Join(parts, ", ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
