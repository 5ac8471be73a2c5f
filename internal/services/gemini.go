package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/techkeshav23/Flux/internal/models"
)

// DefaultBaseURL is the generative-language API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient sends generateContent requests to the generative-language
// API. It is stateless between invocations; one call yields one request,
// no retries, no streaming.
type GeminiClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewGeminiClient creates a client with a bounded request timeout. A hung
// upstream call fails the request instead of hanging the caller forever.
func NewGeminiClient(apiKey string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Part is one piece of a request content: text or inline image data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries a base64 image payload.
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Content groups the parts of a single turn.
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerationConfig holds the fixed sampling parameters for a call.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// Generate sends one generateContent request to the named model and returns
// the first candidate's first text part.
func (c *GeminiClient) Generate(ctx context.Context, model string, parts []Part, cfg GenerationConfig) (string, error) {
	if c.APIKey == "" {
		return "", models.ErrAPIKeyMissing
	}

	reqBody := generateRequest{
		Contents:         []Content{{Parts: parts}},
		GenerationConfig: cfg,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", models.ErrEmptyResponse
	}
	text := genResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", models.ErrEmptyResponse
	}
	return text, nil
}

// StripCodeFences removes Markdown code-fence wrappers the model sometimes
// puts around its JSON. It is a no-op on fence-free text.
func StripCodeFences(text string) string {
	if strings.Contains(text, "```json") {
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
	} else if strings.Contains(text, "```") {
		text = strings.ReplaceAll(text, "```", "")
	}
	return strings.TrimSpace(text)
}
