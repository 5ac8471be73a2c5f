package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/techkeshav23/Flux/internal/models"
)

// DefaultExtractionModel is the vision-capable model used for label OCR.
const DefaultExtractionModel = "gemini-2.5-flash-preview-05-20"

// defaultMimeType is assumed when the data URL does not name one.
const defaultMimeType = "image/jpeg"

// extractionFailedNotes is the fixed user-facing copy for unparseable OCR
// output.
const extractionFailedNotes = "Failed to parse the extracted text. Please try again or paste ingredients manually."

const ocrPrompt = `You are an expert at reading food product ingredient labels from images.

TASK: Extract the ingredients list from this image.

INSTRUCTIONS:
1. Look for the "Ingredients:" or similar section on the product label
2. Extract ALL ingredients exactly as written
3. If you can't find ingredients or the image is unclear, say so honestly
4. Don't make up ingredients - only extract what you can actually see

OUTPUT FORMAT:
Return ONLY a JSON object in this exact format:
{
  "success": true/false,
  "ingredients": "comma-separated list of ingredients exactly as shown on label",
  "confidence": 0-100,
  "notes": "any relevant notes about image quality or partial visibility"
}

If you cannot read the ingredients (blurry, no label visible, etc.):
{
  "success": false,
  "ingredients": "",
  "confidence": 0,
  "notes": "explanation of why extraction failed"
}

Be accurate - users are relying on this for health decisions.`

// LabelExtractor reads an ingredient list off a label photo via one
// vision-model call. Low temperature keeps it from hallucinating
// ingredients; the prompt tells it to report failure rather than guess.
type LabelExtractor struct {
	client *GeminiClient
	model  string
	logger *slog.Logger
}

// NewLabelExtractor creates an extractor bound to a transport client.
func NewLabelExtractor(client *GeminiClient, model string, logger *slog.Logger) *LabelExtractor {
	if model == "" {
		model = DefaultExtractionModel
	}
	return &LabelExtractor{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Extract sends the OCR prompt plus the inline image and returns the
// extraction result. Unparseable model output yields the degraded
// failure record, not an error.
func (e *LabelExtractor) Extract(ctx context.Context, imageDataURL string) (*models.ExtractionResult, error) {
	if strings.TrimSpace(imageDataURL) == "" {
		return nil, models.ErrEmptyImage
	}

	mimeType, base64Data := ParseImageDataURL(imageDataURL)
	parts := []Part{
		{Text: ocrPrompt},
		{InlineData: &InlineData{MimeType: mimeType, Data: base64Data}},
	}

	text, err := e.client.Generate(ctx, e.model, parts, GenerationConfig{
		Temperature:     0.2,
		TopK:            32,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	})
	if err != nil {
		return nil, err
	}

	cleaned := StripCodeFences(text)
	var result models.ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		e.logger.Warn("OCR output was not valid JSON, returning degraded result", "error", err)
		return &models.ExtractionResult{
			Success:     false,
			Ingredients: "",
			Confidence:  0,
			Notes:       extractionFailedNotes,
		}, nil
	}
	result.Normalize()
	return &result, nil
}

// ParseImageDataURL splits a data URL into its MIME type and base64
// payload. Raw base64 without a data: prefix passes through with the
// default image/jpeg type.
func ParseImageDataURL(dataURL string) (mimeType, base64Data string) {
	mimeType = defaultMimeType
	base64Data = dataURL

	if !strings.HasPrefix(dataURL, "data:") {
		return mimeType, base64Data
	}

	comma := strings.Index(dataURL, ",")
	if comma < 0 {
		return mimeType, base64Data
	}

	header := dataURL[len("data:"):comma]
	base64Data = dataURL[comma+1:]
	if semi := strings.Index(header, ";"); semi >= 0 {
		header = header[:semi]
	}
	if strings.HasPrefix(header, "image/") {
		mimeType = header
	}
	return mimeType, base64Data
}
