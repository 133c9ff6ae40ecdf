package ai

import (
	"context"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
	"nutriplan/pkg/logger"
)

type fakeCompleter struct {
	calls    int
	lastReq  openai.ChatCompletionRequest
	response string
	err      error
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.response}},
		},
	}, nil
}

func testClient(api ChatCompleter) *Client {
	return newClient(api, Options{Model: "gpt-4o-mini"}, logger.NewNop())
}

func TestGenerateDietPlanAppliesPriceFallback(t *testing.T) {
	fake := &fakeCompleter{response: `{"dietPlan": {}}`}
	client := testClient(fake)

	profile := models.UserProfile{
		Age: 30, Height: 170, Weight: 70,
		Goal: "Emagrecimento", DietType: "Low Carb",
	}

	plan, err := client.GenerateDietPlan(context.Background(), profile)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 97.90, plan.Price)
	assert.Equal(t, 2000.0, plan.DailyCalories)
	assert.Equal(t, 150.0, plan.Macronutrients.Protein.Grams)
}

func TestGenerateDietPlanKeepsProviderPrice(t *testing.T) {
	fake := &fakeCompleter{response: `{"dietPlan": {"price": 149.90}}`}
	client := testClient(fake)

	plan, err := client.GenerateDietPlan(context.Background(), models.UserProfile{})
	require.NoError(t, err)
	assert.Equal(t, 149.90, plan.Price)
}

func TestGenerateDietPlanPromptEmbedsSchemaAndProfile(t *testing.T) {
	fake := &fakeCompleter{response: `{"dietPlan": {}}`}
	client := testClient(fake)

	profile := models.UserProfile{
		Age: 42, Height: 180, Weight: 90,
		Goal: "Hipertrofia", DietType: "Mediterrânea",
		Allergies: []string{"Lactose", "Ovo"},
	}

	_, err := client.GenerateDietPlan(context.Background(), profile)
	require.NoError(t, err)

	prompt := fake.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "Mediterrânea")
	assert.Contains(t, prompt, "Hipertrofia")
	assert.Contains(t, prompt, "42 anos")
	assert.Contains(t, prompt, "Lactose, Ovo")
	assert.Contains(t, prompt, strings.Join(models.MealTypes, "|"))
	assert.Contains(t, prompt, strings.Join(models.FoodCategories, "|"))

	require.NotNil(t, fake.lastReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, fake.lastReq.ResponseFormat.Type)
}

func TestGenerateDietPlanSanitizesEmptyProfile(t *testing.T) {
	fake := &fakeCompleter{response: `{"dietPlan": {}}`}
	client := testClient(fake)

	_, err := client.GenerateDietPlan(context.Background(), models.UserProfile{})
	require.NoError(t, err)

	prompt := fake.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "Equilibrada")
	assert.Contains(t, prompt, "Manutenção de peso")
	assert.Contains(t, prompt, "30 anos")
	assert.Contains(t, prompt, "Alergias: Nenhuma")
}

func TestGenerateDietPlanRateLimited(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}}
	client := testClient(fake)

	_, err := client.GenerateDietPlan(context.Background(), models.UserProfile{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindRateLimited))
	assert.Equal(t, http.StatusTooManyRequests, apperr.HTTPStatus(err))
}

func TestGenerateDietPlanProviderError(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}}
	client := testClient(fake)

	_, err := client.GenerateDietPlan(context.Background(), models.UserProfile{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProviderError))
}

func TestGenerateDietPlanTimeout(t *testing.T) {
	fake := &fakeCompleter{err: context.DeadlineExceeded}
	client := testClient(fake)

	_, err := client.GenerateDietPlan(context.Background(), models.UserProfile{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTimeout))
}

func TestGenerateDietPlanInvalidSchema(t *testing.T) {
	fake := &fakeCompleter{response: `{"no_plan_here": true}`}
	client := testClient(fake)

	_, err := client.GenerateDietPlan(context.Background(), models.UserProfile{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidSchema))
}
