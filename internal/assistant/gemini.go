package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"banortesmart/backend/internal/config"
)

var (
	ErrProviderNotConfigured = errors.New("generative provider is not configured")
	ErrProviderTransport     = errors.New("generative provider transport failure")
	ErrProviderStatus        = errors.New("generative provider returned an error status")
	ErrMalformedResponse     = errors.New("generative provider response is malformed")
)

type Generation struct {
	Text  string
	Model string
}

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// GeminiClient calls the generateContent endpoint once per prompt. It never
// retries; the caller falls back to the rule table instead.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	temperature     float64
	maxOutputTokens int
	httpClient      *http.Client
}

func NewGeminiClient(cfg config.Config) *GeminiClient {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 20
	}
	return &GeminiClient{
		apiKey:          strings.TrimSpace(cfg.GeminiAPIKey),
		baseURL:         strings.TrimRight(strings.TrimSpace(cfg.GeminiBaseURL), "/"),
		model:           strings.TrimSpace(cfg.GeminiModel),
		temperature:     cfg.AITemperature,
		maxOutputTokens: cfg.AIMaxOutputTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (Generation, error) {
	if c.apiKey == "" || c.baseURL == "" || c.model == "" {
		return Generation{}, ErrProviderNotConfigured
	}

	bodyRaw, err := json.Marshal(generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		},
	})
	if err != nil {
		return Generation{}, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyRaw))
	if err != nil {
		return Generation{}, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return Generation{}, fmt.Errorf("%w: %w", ErrProviderTransport, err)
	}
	defer response.Body.Close()

	if err := googleapi.CheckResponse(response); err != nil {
		return Generation{}, fmt.Errorf("%w: %w", ErrProviderStatus, err)
	}

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return Generation{}, fmt.Errorf("%w: %w", ErrProviderTransport, err)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return Generation{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Generation{}, fmt.Errorf("%w: no candidate text", ErrMalformedResponse)
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return Generation{}, fmt.Errorf("%w: empty candidate text", ErrMalformedResponse)
	}

	model := strings.TrimSpace(parsed.ModelVersion)
	if model == "" {
		model = c.model
	}
	return Generation{Text: text, Model: model}, nil
}

// StatusCode extracts the provider's HTTP status from a Generate error, or 0.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
