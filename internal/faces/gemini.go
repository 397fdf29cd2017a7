package faces

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/creative-compliance/internal/llm"
)

// DefaultMinConfidence drops low-confidence detections
const DefaultMinConfidence = 0.5

// GeminiDetector asks a Gemini vision model for face boxes
type GeminiDetector struct {
	client        llm.Client
	tier          llm.ModelTier
	minConfidence float64
}

// NewGeminiDetector creates a detector on an existing client
func NewGeminiDetector(client llm.Client, tier llm.ModelTier) *GeminiDetector {
	return &GeminiDetector{client: client, tier: tier, minConfidence: DefaultMinConfidence}
}

type detectionResponse struct {
	Faces []Face `json:"faces"`
}

// Detect implements Detector
func (d *GeminiDetector) Detect(ctx context.Context, img llm.Image) ([]Face, error) {
	prompt := llm.BuildExtractionPrompt(llm.FaceDetectionSchema(), "")

	answer, err := d.client.GenerateJSONWithImage(ctx, prompt, img, d.tier)
	if err != nil {
		return nil, err
	}

	var resp detectionResponse
	if err := json.Unmarshal([]byte(answer), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse detector answer: %w", err)
	}

	faces := make([]Face, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		// Models omit confidence when certain
		if f.Confidence != 0 && f.Confidence < d.minConfidence {
			continue
		}
		faces = append(faces, f)
	}
	return faces, nil
}

// GeminiLoader returns a Loader that connects to Gemini on first use
func GeminiLoader(apiKey string, config *llm.Config) Loader {
	return func(ctx context.Context) (Detector, error) {
		client, err := llm.NewClient(ctx, config, apiKey)
		if err != nil {
			return nil, err
		}
		return NewGeminiDetector(client, llm.TierLite), nil
	}
}
