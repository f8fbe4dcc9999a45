package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hdmquan/logos-living-capital/internal/config"
)

// Model completes a prompt.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// NewModel builds the model selected by cfg. The Gemini provider without an
// API key falls back to the static model.
func NewModel(ctx context.Context, cfg config.NarrativeConfig) (Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		if cfg.APIKey == "" {
			return StaticModel{}, nil
		}
		return NewGeminiModel(ctx, cfg.APIKey, cfg.Model)
	case config.ProviderStatic, "":
		return StaticModel{}, nil
	default:
		return nil, fmt.Errorf("unknown narrative provider: %q", cfg.Provider)
	}
}

// GeminiModel generates text with the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini client for model.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if model == "" {
		model = config.DefaultNarrativeModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

func (m *GeminiModel) Name() string { return m.model }

// Generate sends prompt as a single user turn.
func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// StaticModel answers offline with a deterministic digest of the prompt: the
// first data line and the number of data lines. It is used when no API key is
// configured.
type StaticModel struct{}

func (StaticModel) Name() string { return "static" }

func (StaticModel) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var lines []string
	for _, line := range strings.Split(prompt, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", ErrEmptyResponse
	}

	// The last line is the instruction.
	data := lines[:len(lines)-1]
	if len(data) == 0 {
		return "- No figures were provided.", nil
	}
	return fmt.Sprintf("- %d lines reviewed.\n- First line: %s", len(data), data[0]), nil
}
