package models

import "testing"

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		input string
		want  Verdict
	}{
		{"Safe", VerdictSafe},
		{"safe", VerdictSafe},
		{"SAFE", VerdictSafe},
		{"Avoid", VerdictAvoid},
		{"avoid", VerdictAvoid},
		{"Caution", VerdictCaution},
		{"caution", VerdictCaution},
		{"", VerdictCaution},
		{"maybe fine", VerdictCaution},
	}
	for _, tc := range tests {
		if got := ParseVerdict(tc.input); got != tc.want {
			t.Errorf("ParseVerdict(%q) = %q; want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeClampsAndDefaults(t *testing.T) {
	r := &AnalysisResult{Verdict: "SAFE", Confidence: 140}
	r.Normalize()
	if r.Verdict != VerdictSafe {
		t.Errorf("verdict = %q; want Safe", r.Verdict)
	}
	if r.Confidence != 100 {
		t.Errorf("confidence = %d; want clamped to 100", r.Confidence)
	}
	if r.DetectedProductName != FallbackProductName {
		t.Errorf("product name = %q; want fallback", r.DetectedProductName)
	}
	if r.En == nil || r.Hi == nil {
		t.Fatal("Normalize must materialize both language blocks")
	}
	if r.En.VerdictLabel != "Good to go!" {
		t.Errorf("en verdictLabel = %q; want default Safe label", r.En.VerdictLabel)
	}
	if r.Hi.VerdictLabel != "सुरक्षित है" {
		t.Errorf("hi verdictLabel = %q; want default Safe label", r.Hi.VerdictLabel)
	}

	low := &AnalysisResult{Confidence: -5}
	low.Normalize()
	if low.Confidence != 0 {
		t.Errorf("confidence = %d; want clamped to 0", low.Confidence)
	}
}

func TestNormalizeCapsProductName(t *testing.T) {
	r := &AnalysisResult{DetectedProductName: "Extra Dark Belgian Chocolate Bar"}
	r.Normalize()
	if r.DetectedProductName != "Extra Dark Belgian" {
		t.Errorf("product name = %q; want first three words", r.DetectedProductName)
	}
}

// Language blocks prefer their own fields and fall back to the legacy
// top-level ones.
func TestNormalizeLegacyBackfill(t *testing.T) {
	r := &AnalysisResult{
		Verdict:   "Caution",
		Summary:   "legacy summary",
		Reasoning: "legacy reasoning",
		En:        &LanguageBlock{SimpleSummary: "english summary"},
	}
	r.Normalize()

	if r.En.SimpleSummary != "english summary" {
		t.Errorf("en simpleSummary = %q; language field must win", r.En.SimpleSummary)
	}
	if r.En.WhatIsThis != "legacy reasoning" {
		t.Errorf("en whatIsThis = %q; want legacy backfill", r.En.WhatIsThis)
	}
	if r.Hi.SimpleSummary != "legacy summary" {
		t.Errorf("hi simpleSummary = %q; want legacy backfill", r.Hi.SimpleSummary)
	}
	if got := r.SimpleSummaryText(); got != "english summary" {
		t.Errorf("SimpleSummaryText = %q; want english field", got)
	}
}
