package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/techkeshav23/Flux/internal/models"
)

// DefaultAnalysisModel is the model used for ingredient analysis.
const DefaultAnalysisModel = "gemini-2.5-flash-lite"

// personalizationMarker opens the user-health-profile block; it appears in
// the prompt only when a user context is present.
const personalizationMarker = "IMPORTANT - USER HEALTH PROFILE:"

// degradedReasoningLimit caps how much raw model text the degraded record
// embeds.
const degradedReasoningLimit = 500

// IngredientAnalyzer turns raw ingredient text into a bilingual,
// severity-tagged analysis via one generative-language call.
type IngredientAnalyzer struct {
	client *GeminiClient
	model  string
	logger *slog.Logger
}

// NewIngredientAnalyzer creates an analyzer bound to a transport client.
func NewIngredientAnalyzer(client *GeminiClient, model string, logger *slog.Logger) *IngredientAnalyzer {
	if model == "" {
		model = DefaultAnalysisModel
	}
	return &IngredientAnalyzer{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Analyze sends one analysis request and returns a normalized result.
// Malformed model output is not an error: the caller gets a degraded but
// well-typed record instead, so there is always something to display.
func (a *IngredientAnalyzer) Analyze(ctx context.Context, ingredientText, userContext string) (*models.AnalysisResult, error) {
	ingredientText = strings.TrimSpace(ingredientText)
	if ingredientText == "" {
		return nil, models.ErrEmptyIngredients
	}

	prompt := a.BuildPrompt(ingredientText, userContext)
	text, err := a.client.Generate(ctx, a.model, []Part{{Text: prompt}}, GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return nil, err
	}

	result, err := decodeAnalysis(text)
	if err != nil {
		a.logger.Warn("model output was not valid JSON, returning degraded result", "error", err)
		return degradedAnalysis(text), nil
	}
	result.Normalize()
	return result, nil
}

// decodeAnalysis strips code fences and parses the model text. The error
// branch is the explicit signal for the degraded-result path.
func decodeAnalysis(text string) (*models.AnalysisResult, error) {
	cleaned := StripCodeFences(text)
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}
	return &result, nil
}

// degradedAnalysis synthesizes the fixed placeholder record for unparseable
// model output: Caution at 50% confidence, with the raw text embedded
// (truncated) in the legacy reasoning field.
func degradedAnalysis(raw string) *models.AnalysisResult {
	if len(raw) > degradedReasoningLimit {
		raw = raw[:degradedReasoningLimit]
	}
	result := &models.AnalysisResult{
		Verdict:             models.VerdictCaution,
		Confidence:          50,
		DetectedProductName: models.FallbackProductName,
		Thinking:            "I analyzed the ingredients but had trouble formatting my response.",
		Summary:             "Analysis completed - please review the details below.",
		Reasoning:           raw,
		En: &models.LanguageBlock{
			SimpleSummary:  "Analysis completed - please review the details below.",
			WhatIsThis:     raw,
			WhoShouldAvoid: "Please review the ingredients carefully.",
			SimpleAdvice:   "Please review the ingredients carefully.",
		},
		Hi: &models.LanguageBlock{
			SimpleSummary:  "विश्लेषण पूरा हुआ - कृपया नीचे दी गई जानकारी देखें।",
			WhoShouldAvoid: "कृपया सामग्री ध्यान से देखें।",
			SimpleAdvice:   "कृपया सामग्री ध्यान से देखें।",
		},
	}
	result.Normalize()
	return result
}

// BuildPrompt composes the full prompt: system instructions, the optional
// personalization block, and the user's ingredient text.
func (a *IngredientAnalyzer) BuildPrompt(ingredientText, userContext string) string {
	systemPrompt := buildSystemPrompt(userContext)

	var userMessage string
	if userContext != "" {
		userMessage = fmt.Sprintf("Analyze these ingredients for a user with this health profile: %s\n\nIngredients:\n%s", userContext, ingredientText)
	} else {
		userMessage = fmt.Sprintf("Analyze these ingredients and explain in simple terms (provide BOTH English and Hindi):\n\n%s", ingredientText)
	}

	return systemPrompt + "\n\n" + userMessage
}

func buildSystemPrompt(userContext string) string {
	personalizationSection := ""
	if userContext != "" {
		personalizationSection = fmt.Sprintf(`
%s
%s

You MUST personalize your analysis based on this user's health profile. For example:
- If diabetic: Highlight sugar content and glycemic impact prominently
- If has allergies: Make allergen warnings very prominent
- If vegetarian/vegan: Flag any non-vegetarian ingredients
- If weight loss goal: Focus on calorie density and satiety
- If hypertension: Highlight sodium content

Add a special "personalWarnings" array with warnings specific to THIS user.
`, personalizationMarker, userContext)
	}

	return fmt.Sprintf(`You are a friendly AI health assistant helping regular people (not doctors or scientists) understand food/medicine ingredients. Explain things like you're talking to a friend or family member.
%s
CRITICAL RULES:
1. Use VERY SIMPLE language - imagine explaining to your grandmother
2. NO scientific jargon - if you must use a technical term, explain it simply
3. Use everyday examples and comparisons people can relate to
4. Be warm and conversational, not clinical
5. Focus on practical "should I eat/take this?" advice
6. Provide response in BOTH English AND Hindi

OUTPUT FORMAT (JSON):
{
  "verdict": "Safe" | "Caution" | "Avoid",
  "confidence": 0-100,
  "personalizedForUser": true/false,
  "detectedProductName": "Short product name like 'Chocolate Bar', 'Energy Drink', 'Cough Syrup' etc - max 3 words",
  "en": {
    "verdictLabel": "Good to go! / Be careful / Better avoid",
    "simpleSummary": "One simple sentence about this product",
    "whatIsThis": "What is this product? Simple explanation",
    "personalWarnings": [
      {
        "title": "Warning specific to user's health profile",
        "explanation": "Why this matters FOR THIS USER specifically",
        "severity": "high"
      }
    ],
    "goodThings": [
      {
        "title": "Good thing name",
        "explanation": "Why this is good - very simple",
        "icon": "👍"
      }
    ],
    "concerns": [
      {
        "title": "Concern name",
        "explanation": "Why this is concerning - simple language",
        "severity": "low" | "medium" | "high",
        "icon": "⚠️"
      }
    ],
    "whoShouldAvoid": "Who should avoid this?",
    "simpleAdvice": "5 second advice for a friend",
    "dailyLifeTip": "A practical tip for daily use"
  },
  "hi": {
    "verdictLabel": "सुरक्षित है / सावधानी रखें / इससे बचें",
    "simpleSummary": "इस प्रोडक्ट के बारे में एक आसान वाक्य",
    "whatIsThis": "यह क्या है? सरल शब्दों में",
    "personalWarnings": [
      {
        "title": "आपके लिए विशेष चेतावनी",
        "explanation": "यह आपके लिए क्यों महत्वपूर्ण है",
        "severity": "high"
      }
    ],
    "goodThings": [
      {
        "title": "अच्छी बात",
        "explanation": "यह अच्छा क्यों है - बहुत आसान भाषा में",
        "icon": "👍"
      }
    ],
    "concerns": [
      {
        "title": "चिंता की बात",
        "explanation": "यह चिंता क्यों है - आसान भाषा में",
        "severity": "low" | "medium" | "high",
        "icon": "⚠️"
      }
    ],
    "whoShouldAvoid": "किन लोगों को यह नहीं लेना चाहिए?",
    "simpleAdvice": "दोस्त को 5 सेकंड में सलाह",
    "dailyLifeTip": "रोज़मर्रा की ज़िंदगी के लिए टिप"
  }
}

IMPORTANT FOR HINDI:
- Use simple Hindi that everyone understands
- Mix common English words where Indians normally use them (like "sugar", "protein", "calories", "blood pressure")
- Don't use heavy Sanskrit/formal Hindi

Remember: You're a helpful friend explaining health stuff, not a textbook!`, personalizationSection)
}
