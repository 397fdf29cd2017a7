package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Image is an encoded image passed to a vision model
type Image struct {
	Format string // Short format name: "png", "jpeg", "webp", "gif"
	Data   []byte
}

// Client asks a vision model about one image and returns its JSON answer
type Client interface {
	GenerateJSONWithImage(ctx context.Context, prompt string, img Image, tier ModelTier) (string, error)
	Close() error
}

// NewClient creates the Gemini client. A nil config uses DefaultConfig.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return NewGeminiClient(ctx, config, apiKey)
}

// GeminiClient implements Client on the Gemini API
type GeminiClient struct {
	client  *genai.Client
	config  *Config
	limiter *rate.Limiter
}

// NewGeminiClient creates a Gemini client throttled to config.RequestsPerMinute
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		config:  config,
		limiter: newRequestLimiter(config.RequestsPerMinute),
	}, nil
}

// newRequestLimiter spreads rpm requests over a minute with a burst of the whole allowance
func newRequestLimiter(rpm float64) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(math.Ceil(rpm))
	return rate.NewLimiter(rate.Limit(rpm/60), burst)
}

// GenerateJSONWithImage sends the image ahead of the prompt and returns the cleaned JSON answer
func (c *GeminiClient) GenerateJSONWithImage(ctx context.Context, prompt string, img Image, tier ModelTier) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("image data is empty")
	}

	modelName := c.config.ModelFor(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.Temperature)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.ImageData(img.Format, img.Data), genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%s failed on %s image: %w", modelName, img.Format, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Close releases the underlying connection
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("model returned no candidates")
	}

	content := resp.Candidates[0].Content
	if content == nil {
		return "", errors.New("model returned an empty candidate")
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("model returned no text")
	}
	return sb.String(), nil
}
