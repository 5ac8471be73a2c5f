package models

import "strings"

// Verdict is the three-way health classification produced per analysis.
type Verdict string

const (
	VerdictSafe    Verdict = "Safe"
	VerdictCaution Verdict = "Caution"
	VerdictAvoid   Verdict = "Avoid"
)

// ParseVerdict coerces an upstream verdict string to a known value.
// Anything unrecognized becomes Caution — the safest displayable default.
func ParseVerdict(s string) Verdict {
	switch {
	case strings.EqualFold(s, string(VerdictSafe)):
		return VerdictSafe
	case strings.EqualFold(s, string(VerdictAvoid)):
		return VerdictAvoid
	default:
		return VerdictCaution
	}
}

// Severity grades a warning or concern.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// PersonalWarning is a warning specific to the user's health profile.
type PersonalWarning struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Severity    Severity `json:"severity"`
}

// GoodThing is a positive finding about the product.
type GoodThing struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	Icon        string `json:"icon"`
}

// Concern is a negative finding with a severity grade.
type Concern struct {
	Title       string   `json:"title"`
	Explanation string   `json:"explanation"`
	Severity    Severity `json:"severity"`
	Icon        string   `json:"icon"`
}

// LanguageBlock holds the per-language half of an analysis.
type LanguageBlock struct {
	VerdictLabel     string            `json:"verdictLabel"`
	SimpleSummary    string            `json:"simpleSummary"`
	WhatIsThis       string            `json:"whatIsThis"`
	PersonalWarnings []PersonalWarning `json:"personalWarnings,omitempty"`
	GoodThings       []GoodThing       `json:"goodThings,omitempty"`
	Concerns         []Concern         `json:"concerns,omitempty"`
	WhoShouldAvoid   string            `json:"whoShouldAvoid"`
	SimpleAdvice     string            `json:"simpleAdvice"`
	DailyLifeTip     string            `json:"dailyLifeTip"`
}

// AnalysisResult is the model's reply, normalized. The legacy top-level
// fields (Thinking, Summary, Reasoning) survive from older prompt variants;
// Normalize backfills the language blocks from them so presentation code
// never has to know the fallback chain.
type AnalysisResult struct {
	Verdict             Verdict        `json:"verdict"`
	Confidence          int            `json:"confidence"`
	PersonalizedForUser bool           `json:"personalizedForUser"`
	DetectedProductName string         `json:"detectedProductName"`
	En                  *LanguageBlock `json:"en,omitempty"`
	Hi                  *LanguageBlock `json:"hi,omitempty"`

	// Legacy top-level fields from earlier single-language contracts.
	Thinking  string `json:"thinking,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// FallbackProductName is used when the model does not name the product.
const FallbackProductName = "Scanned Product"

// maxProductNameWords caps the detected product name length.
const maxProductNameWords = 3

// Normalize enforces the result invariants in place: verdict in its enum,
// confidence clamped to 0-100, a short non-empty product name, and language
// blocks backfilled from the legacy top-level fields.
func (r *AnalysisResult) Normalize() {
	r.Verdict = ParseVerdict(string(r.Verdict))

	if r.Confidence < 0 {
		r.Confidence = 0
	} else if r.Confidence > 100 {
		r.Confidence = 100
	}

	r.DetectedProductName = strings.TrimSpace(r.DetectedProductName)
	if r.DetectedProductName == "" {
		r.DetectedProductName = FallbackProductName
	}
	if words := strings.Fields(r.DetectedProductName); len(words) > maxProductNameWords {
		r.DetectedProductName = strings.Join(words[:maxProductNameWords], " ")
	}

	if r.En == nil {
		r.En = &LanguageBlock{}
	}
	if r.Hi == nil {
		r.Hi = &LanguageBlock{}
	}
	r.En.backfill(r, englishVerdictLabels)
	r.Hi.backfill(r, hindiVerdictLabels)
}

// SimpleSummaryText prefers the English block's summary and falls back to
// the legacy top-level field.
func (r *AnalysisResult) SimpleSummaryText() string {
	if r.En != nil && r.En.SimpleSummary != "" {
		return r.En.SimpleSummary
	}
	return r.Summary
}

var englishVerdictLabels = map[Verdict]string{
	VerdictSafe:    "Good to go!",
	VerdictCaution: "Be careful",
	VerdictAvoid:   "Better avoid",
}

var hindiVerdictLabels = map[Verdict]string{
	VerdictSafe:    "सुरक्षित है",
	VerdictCaution: "सावधानी रखें",
	VerdictAvoid:   "इससे बचें",
}

func (b *LanguageBlock) backfill(r *AnalysisResult, verdictLabels map[Verdict]string) {
	if b.VerdictLabel == "" {
		b.VerdictLabel = verdictLabels[r.Verdict]
	}
	if b.SimpleSummary == "" {
		b.SimpleSummary = r.Summary
	}
	if b.WhatIsThis == "" {
		b.WhatIsThis = r.Reasoning
	}
}
