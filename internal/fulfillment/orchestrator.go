// internal/fulfillment/orchestrator.go
package fulfillment

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"nutriplan/internal/apperr"
	"nutriplan/internal/delivery"
	"nutriplan/internal/models"
	"nutriplan/internal/tasks"
	"nutriplan/pkg/logger"
)

// PlanGenerator produces a normalized diet plan for a profile.
type PlanGenerator interface {
	GenerateDietPlan(ctx context.Context, profile models.UserProfile) (*models.DietPlan, error)
}

// Renderer writes the plan document into outputDir and returns its path.
type Renderer interface {
	Render(plan *models.DietPlan, profile models.UserProfile, outputDir string) (string, error)
}

// Dispatcher delivers a rendered document to the user.
type Dispatcher interface {
	Deliver(ctx context.Context, phone string, profile models.UserProfile, documentPath string) (*delivery.Receipt, error)
}

// Store persists users and their generated plans. Saving is best-effort
// from the pipeline's point of view: a save failure is logged, never
// escalated. Lookup failures surface to the caller.
type Store interface {
	SaveDietPlan(ctx context.Context, profile models.UserProfile, plan *models.DietPlan) error
	GetLatestDietPlan(ctx context.Context, email string) (*models.DietPlan, error)
}

// Result is the uniform envelope every entry operation returns. The
// correlation ID is always set, success or failure.
type Result struct {
	CorrelationID string            `json:"correlationId"`
	DietPlan      *models.DietPlan  `json:"dietPlan,omitempty"`
	DocumentPath  string            `json:"-"`
	Receipt       *delivery.Receipt `json:"receipt,omitempty"`
	PDFGenerated  bool              `json:"pdfGenerated,omitempty"`
	WhatsAppSent  bool              `json:"whatsappSent,omitempty"`
}

// Orchestrator coordinates the generate → render → deliver pipeline under
// its three entry modes. Each invocation is independent and sequential;
// the only shared resource is the temp directory, and filenames are unique
// per invocation.
type Orchestrator struct {
	generator  PlanGenerator
	renderer   Renderer
	dispatcher Dispatcher
	store      Store
	scheduler  *tasks.Scheduler
	tempDir    string
	retention  time.Duration
	logger     *logger.Logger
}

func NewOrchestrator(
	generator PlanGenerator,
	renderer Renderer,
	dispatcher Dispatcher,
	store Store,
	scheduler *tasks.Scheduler,
	tempDir string,
	retention time.Duration,
	log *logger.Logger,
) *Orchestrator {
	if retention == 0 {
		retention = 5 * time.Minute
	}
	return &Orchestrator{
		generator:  generator,
		renderer:   renderer,
		dispatcher: dispatcher,
		store:      store,
		scheduler:  scheduler,
		tempDir:    tempDir,
		retention:  retention,
		logger:     log,
	}
}

// Generate validates the required profile fields and produces a plan.
func (o *Orchestrator) Generate(ctx context.Context, profile models.UserProfile) (*Result, error) {
	cid := uuid.NewString()
	log := o.logger.With("correlation_id", cid)
	res := &Result{CorrelationID: cid}

	plan, err := o.generate(ctx, log, profile)
	if err != nil {
		return res, err
	}

	res.DietPlan = plan
	return res, nil
}

// Latest returns the most recently stored plan for the given email.
func (o *Orchestrator) Latest(ctx context.Context, email string) (*Result, error) {
	cid := uuid.NewString()
	log := o.logger.With("correlation_id", cid)
	res := &Result{CorrelationID: cid}

	if email == "" {
		log.Warnw("missing email for plan lookup")
		return res, apperr.Validation(apperr.KindMissingFields, "campos obrigatórios faltando", "email")
	}

	plan, err := o.store.GetLatestDietPlan(ctx, email)
	if err != nil {
		log.Warnw("plan lookup failed", "email", email, "error", err)
		return res, err
	}

	res.DietPlan = plan
	return res, nil
}

// SendExisting delivers an already rendered document.
func (o *Orchestrator) SendExisting(ctx context.Context, phone string, profile models.UserProfile, documentPath string) (*Result, error) {
	cid := uuid.NewString()
	log := o.logger.With("correlation_id", cid)
	res := &Result{CorrelationID: cid}

	if digitsOf(phone) == "" {
		log.Warnw("invalid phone number", "phone", phone)
		return res, apperr.Validation(apperr.KindInvalidPhone, "número de telefone inválido")
	}
	if _, err := os.Stat(documentPath); err != nil {
		log.Warnw("document not found", "path", documentPath)
		return res, apperr.Validation(apperr.KindDocumentNotFound, "arquivo PDF não encontrado")
	}

	log.Infow("sending diet plan via WhatsApp", "phone", phone, "path", documentPath)

	receipt, err := o.dispatcher.Deliver(ctx, phone, profile, documentPath)
	if err != nil {
		log.Errorw("delivery failed", "error", err)
		return res, err
	}

	res.Receipt = receipt
	res.WhatsAppSent = true
	return res, nil
}

// FullProcess runs the whole pipeline: generate, render into the temp
// directory, deliver, then schedule deletion of the temporary document
// after the retention window. Deletion failure is logged, never escalated:
// by then the response has already been returned.
func (o *Orchestrator) FullProcess(ctx context.Context, profile models.UserProfile) (*Result, error) {
	cid := uuid.NewString()
	log := o.logger.With("correlation_id", cid)
	res := &Result{CorrelationID: cid}

	log.Infow("starting full process", "phone", profile.Phone)

	// The phone check runs before any AI call is made.
	if profile.Phone == "" {
		log.Warnw("missing phone number")
		return res, apperr.Validation(apperr.KindMissingPhone, "número de telefone é obrigatório")
	}

	plan, err := o.generate(ctx, log, profile)
	if err != nil {
		return res, err
	}
	res.DietPlan = plan

	if err := os.MkdirAll(o.tempDir, 0o755); err != nil {
		log.Errorw("failed to create temp directory", "dir", o.tempDir, "error", err)
		return res, apperr.Render(apperr.KindIO, "falha ao preparar diretório de documentos", err)
	}

	path, err := o.renderer.Render(plan, profile, o.tempDir)
	if err != nil {
		log.Errorw("render failed", "error", err)
		return res, err
	}
	res.DocumentPath = path
	res.PDFGenerated = true
	log.Infow("PDF generated", "path", path)

	receipt, err := o.dispatcher.Deliver(ctx, profile.Phone, profile, path)
	if err != nil {
		log.Errorw("delivery failed", "error", err)
		return res, err
	}
	res.Receipt = receipt
	res.WhatsAppSent = true

	o.scheduler.AfterFunc(o.retention, "temp document cleanup", func() error {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		return nil
	})

	return res, nil
}

// generate is the shared core of Generate and FullProcess: required-field
// validation, AI invocation and best-effort persistence.
func (o *Orchestrator) generate(ctx context.Context, log *logger.Logger, profile models.UserProfile) (*models.DietPlan, error) {
	if missing := missingRequiredFields(profile); len(missing) > 0 {
		log.Warnw("missing required fields", "fields", missing)
		return nil, apperr.Validation(apperr.KindMissingFields, "campos obrigatórios faltando", missing...)
	}

	log.Infow("generating diet plan",
		"dietType", profile.DietType, "goal", profile.Goal,
		"age", profile.Age, "height", profile.Height, "weight", profile.Weight)

	plan, err := o.generator.GenerateDietPlan(ctx, profile)
	if err != nil {
		log.Errorw("plan generation failed", "error", err)
		return nil, err
	}

	if err := o.store.SaveDietPlan(ctx, profile, plan); err != nil {
		log.Warnw("failed to persist diet plan", "error", err)
	}

	log.Infow("diet plan generated successfully", "dailyCalories", plan.DailyCalories, "price", plan.Price)
	return plan, nil
}

func missingRequiredFields(p models.UserProfile) []string {
	var missing []string
	if p.Age <= 0 {
		missing = append(missing, "age")
	}
	if p.Height <= 0 {
		missing = append(missing, "height")
	}
	if p.Weight <= 0 {
		missing = append(missing, "weight")
	}
	if p.Goal == "" {
		missing = append(missing, "goal")
	}
	if p.DietType == "" {
		missing = append(missing, "dietType")
	}
	return missing
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
