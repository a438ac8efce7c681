// Package llm turns recipe requests into language model completions and parses
// the replies back into recipes.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const (
	opGenerate = "generate"
	opEnhance  = "enhance"
)

// Completer is the single remote call the client depends on. *openai.Client
// satisfies it.
type Completer interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the completion endpoint settings
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GenerateRequest describes a recipe to create from ingredients
type GenerateRequest struct {
	Ingredients            []string
	Preferences            string
	CuisineType            string
	AdditionalInstructions string
}

// EnhanceRequest describes an existing recipe and how to improve it
type EnhanceRequest struct {
	Title            string
	Ingredients      []string
	Instructions     []string
	EnhancementFocus []string
	AdditionalNotes  string
}

// Client generates and enhances recipes through a chat completion endpoint
type Client struct {
	completer Completer
	model     string
	metrics   *metrics.Metrics
}

// NewClient creates a Client talking to an OpenAI-compatible endpoint.
// An empty API key is accepted; calls will then fail at the remote step.
func NewClient(cfg Config, m *metrics.Metrics) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return NewClientWithCompleter(openai.NewClientWithConfig(clientConfig), cfg.Model, m)
}

// NewClientWithCompleter creates a Client on top of an arbitrary Completer
func NewClientWithCompleter(completer Completer, model string, m *metrics.Metrics) *Client {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &Client{completer: completer, model: model, metrics: m}
}

// GenerateRecipe asks the model for a new recipe built from the given ingredients.
// The result has recipeType "ai_generated" and no identity yet.
func (c *Client) GenerateRecipe(ctx context.Context, req GenerateRequest) (models.Recipe, error) {
	return c.complete(ctx, opGenerate, buildGeneratePrompt(req), models.RecipeTypeAIGenerated)
}

// EnhanceRecipe asks the model to improve an existing recipe.
// The result has recipeType "enhanced" and carries the enhancement summary in
// its additional data.
func (c *Client) EnhanceRecipe(ctx context.Context, req EnhanceRequest) (models.Recipe, error) {
	return c.complete(ctx, opEnhance, buildEnhancePrompt(req), models.RecipeTypeEnhanced)
}

func (c *Client) complete(ctx context.Context, op, prompt, recipeType string) (models.Recipe, error) {
	start := time.Now()
	recipe, err := c.completeRecipe(ctx, op, prompt, recipeType)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.ModelRequest(op, metrics.OutcomeFailure, elapsed)
		log.WithError(err).WithFields(log.Fields{
			"operation": op,
			"model":     c.model,
			"elapsed":   elapsed.String(),
		}).Error("Model call failed")
		return models.Recipe{}, err
	}

	c.metrics.ModelRequest(op, metrics.OutcomeSuccess, elapsed)
	log.WithFields(log.Fields{
		"operation": op,
		"model":     c.model,
		"elapsed":   elapsed.String(),
		"title":     recipe.Title,
	}).Debug("Model call succeeded")
	return recipe, nil
}

func (c *Client) completeRecipe(ctx context.Context, op, prompt, recipeType string) (models.Recipe, error) {
	resp, err := c.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return models.Recipe{}, &ModelError{Op: op, Kind: KindUpstream, Err: err}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return models.Recipe{}, &ModelError{Op: op, Kind: KindEmptyReply, Err: errors.New("no content returned from model")}
	}

	recipe, err := parseRecipeReply(resp.Choices[0].Message.Content, recipeType)
	if err != nil {
		return models.Recipe{}, &ModelError{Op: op, Kind: KindMalformedReply, Err: err}
	}
	return recipe, nil
}
