// internal/ai/client.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
	"nutriplan/pkg/logger"
)

// Profile defaults applied before prompt construction. The prompt must
// always be well-formed; only delivery fields (phone) are validated, and
// that happens in the orchestrator, not here.
const (
	defaultDietType = "Equilibrada"
	defaultGoal     = "Manutenção de peso"
	defaultAge      = 30
	defaultHeight   = 170.0
	defaultWeight   = 70.0
)

// ChatCompleter is the slice of the OpenAI client the generator uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client generates diet plans through the AI completion collaborator.
type Client struct {
	api         ChatCompleter
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *logger.Logger
}

type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func NewClient(apiKey string, opts Options, log *logger.Logger) *Client {
	return newClient(openai.NewClient(apiKey), opts, log)
}

func newClient(api ChatCompleter, opts Options, log *logger.Logger) *Client {
	c := &Client{
		api:         api,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		logger:      log,
	}
	if c.model == "" {
		c.model = openai.GPT4oMini
	}
	if c.maxTokens == 0 {
		c.maxTokens = 2500
	}
	if c.timeout == 0 {
		c.timeout = 15 * time.Second
	}
	return c
}

func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// GenerateDietPlan builds the prompt from the sanitized profile, invokes
// the completion service with a bounded timeout and passes the raw result
// through the normalizer. The price fallback is the only defaulting done
// outside the normalizer.
func (c *Client) GenerateDietPlan(ctx context.Context, profile models.UserProfile) (*models.DietPlan, error) {
	safe := sanitizeProfile(profile)
	prompt := buildPrompt(safe)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, c.classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperr.Generation(apperr.KindProviderError, "resposta vazia do serviço de IA", nil)
	}

	plan, err := Normalize([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, apperr.Generation(apperr.KindInvalidSchema, "falha ao processar resposta da IA", err)
	}

	if plan.Price <= 0 {
		plan.Price = models.FallbackPrice
	}

	return plan, nil
}

func (c *Client) classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Generation(apperr.KindTimeout, "tempo limite excedido no serviço de IA", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			c.logger.Errorw("OpenAI quota exceeded", "status", apiErr.HTTPStatusCode)
			return apperr.Generation(apperr.KindRateLimited, "limite de requisições excedido, tente novamente mais tarde", err)
		}
		return apperr.Generation(apperr.KindProviderError, "erro na API de IA", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return apperr.Generation(apperr.KindRateLimited, "limite de requisições excedido, tente novamente mais tarde", err)
	}

	return apperr.Generation(apperr.KindProviderError, "erro ao se comunicar com o serviço de IA", err)
}

func sanitizeProfile(p models.UserProfile) models.UserProfile {
	if p.DietType == "" {
		p.DietType = defaultDietType
	}
	if p.Goal == "" {
		p.Goal = defaultGoal
	}
	if p.Age <= 0 {
		p.Age = defaultAge
	}
	if p.Height <= 0 {
		p.Height = defaultHeight
	}
	if p.Weight <= 0 {
		p.Weight = defaultWeight
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.FoodPreferences == nil {
		p.FoodPreferences = map[string][]string{}
	}
	return p
}

// buildPrompt produces the deterministic instruction embedding the exact
// output schema the AI must follow, including the enumerated meal-type and
// food-category values.
func buildPrompt(p models.UserProfile) string {
	allergies := strings.Join(p.Allergies, ", ")
	if allergies == "" {
		allergies = "Nenhuma"
	}
	preferences, _ := json.Marshal(p.FoodPreferences)

	return fmt.Sprintf(`Você é um nutricionista especializado. Gere um plano alimentar detalhado em JSON com:

- Dieta: %s
- Objetivo: %s
- Dados: %d anos, %.0fcm, %.0fkg
- Alergias: %s
- Preferências: %s

Retorne um JSON estruturado com:
{
  "dietPlan": {
    "description": "string",
    "dailyCalories": number,
    "macronutrients": {
      "protein": { "grams": number, "percentage": number },
      "carbs": { "grams": number, "percentage": number },
      "fats": { "grams": number, "percentage": number }
    },
    "meals": [
      {
        "type": "%s",
        "foods": [
          {
            "name": "string",
            "category": "%s",
            "quantity": "string",
            "calories": number,
            "notes": "string"
          }
        ]
      }
    ],
    "hydration": {
      "waterIntake": number,
      "recommendations": "string"
    },
    "nutritionalTips": "string"
  }
}`,
		p.DietType, p.Goal, p.Age, p.Height, p.Weight,
		allergies, string(preferences),
		strings.Join(models.MealTypes, "|"),
		strings.Join(models.FoodCategories, "|"),
	)
}
