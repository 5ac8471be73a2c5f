package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/techkeshav23/Flux/internal/models"
)

func TestParseImageDataURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMime string
		wantData string
	}{
		{"png data url", "data:image/png;base64,iVBORw0KGgo=", "image/png", "iVBORw0KGgo="},
		{"jpeg data url", "data:image/jpeg;base64,/9j/4AAQ", "image/jpeg", "/9j/4AAQ"},
		{"raw base64", "/9j/4AAQSkZJRg==", "image/jpeg", "/9j/4AAQSkZJRg=="},
		{"non-image mime falls back", "data:text/plain;base64,aGVsbG8=", "image/jpeg", "aGVsbG8="},
		{"data prefix without comma", "data:image/png;base64", "image/jpeg", "data:image/png;base64"},
	}

	for _, tc := range tests {
		mime, data := ParseImageDataURL(tc.input)
		if mime != tc.wantMime || data != tc.wantData {
			t.Errorf("%s: ParseImageDataURL(%q) = (%q, %q); want (%q, %q)",
				tc.name, tc.input, mime, data, tc.wantMime, tc.wantData)
		}
	}
}

func TestExtractEmptyImage(t *testing.T) {
	extractor := NewLabelExtractor(NewGeminiClient("key", time.Second), "", testLogger())
	_, err := extractor.Extract(context.Background(), "   ")
	if !errors.Is(err, models.ErrEmptyImage) {
		t.Errorf("Extract error = %v; want ErrEmptyImage", err)
	}
}

func TestExtractMissingAPIKey(t *testing.T) {
	extractor := NewLabelExtractor(NewGeminiClient("", time.Second), "", testLogger())
	_, err := extractor.Extract(context.Background(), "data:image/jpeg;base64,abc")
	if !errors.Is(err, models.ErrAPIKeyMissing) {
		t.Errorf("Extract error = %v; want ErrAPIKeyMissing", err)
	}
}

func TestExtractSuccess(t *testing.T) {
	srv, client := fakeUpstream(t, "```json\n{\"success\":true,\"ingredients\":\"Water, Sugar, Salt\",\"confidence\":88,\"notes\":\"clear label\"}\n```")
	defer srv.Close()

	result, err := NewLabelExtractor(client, "", testLogger()).Extract(context.Background(), "data:image/jpeg;base64,abc")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !result.Success {
		t.Error("success = false; want true")
	}
	if result.Ingredients != "Water, Sugar, Salt" {
		t.Errorf("ingredients = %q; want %q", result.Ingredients, "Water, Sugar, Salt")
	}
	if result.Confidence != 88 {
		t.Errorf("confidence = %d; want 88", result.Confidence)
	}
}

// Unparseable OCR output recovers into the fixed failure record.
func TestExtractDegradedOnMalformedOutput(t *testing.T) {
	srv, client := fakeUpstream(t, "I can see some text but cannot read it")
	defer srv.Close()

	result, err := NewLabelExtractor(client, "", testLogger()).Extract(context.Background(), "data:image/jpeg;base64,abc")
	if err != nil {
		t.Fatalf("Extract returned error for malformed output: %v", err)
	}
	if result.Success {
		t.Error("degraded success = true; want false")
	}
	if result.Ingredients != "" {
		t.Errorf("degraded ingredients = %q; want empty", result.Ingredients)
	}
	if result.Confidence != 0 {
		t.Errorf("degraded confidence = %d; want 0", result.Confidence)
	}
	if result.Notes != extractionFailedNotes {
		t.Errorf("degraded notes = %q; want fixed message", result.Notes)
	}
}

// A claimed failure with leftover ingredient text normalizes to empty.
func TestExtractFailureClearsIngredients(t *testing.T) {
	srv, client := fakeUpstream(t, `{"success":false,"ingredients":"maybe sugar?","confidence":120,"notes":"blurry"}`)
	defer srv.Close()

	result, err := NewLabelExtractor(client, "", testLogger()).Extract(context.Background(), "data:image/jpeg;base64,abc")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if result.Ingredients != "" {
		t.Errorf("ingredients = %q; want empty on failure", result.Ingredients)
	}
	if result.Confidence != 100 {
		t.Errorf("confidence = %d; want clamped to 100", result.Confidence)
	}
}
