package models

import (
	"sort"
	"strings"
	"unicode"
)

// Preference category names. Each category is a fixed set of boolean flags.
const (
	CategoryDietary    = "dietary"
	CategoryConditions = "conditions"
	CategoryAllergies  = "allergies"
	CategoryGoals      = "goals"
)

// Profile holds the user's basic details. Age stays a string so that a
// blank value round-trips the stored record unchanged.
type Profile struct {
	Name string `json:"name"`
	Age  string `json:"age"`
}

// PreferenceProfile is the single persisted preferences record for a device.
type PreferenceProfile struct {
	Dietary                map[string]bool `json:"dietary"`
	Conditions             map[string]bool `json:"conditions"`
	Allergies              map[string]bool `json:"allergies"`
	Goals                  map[string]bool `json:"goals"`
	CustomNotes            string          `json:"customNotes"`
	Profile                Profile         `json:"profile"`
	HasCompletedOnboarding bool            `json:"hasCompletedOnboarding"`
}

// DefaultPreferences returns a profile with every flag present and false.
func DefaultPreferences() PreferenceProfile {
	return PreferenceProfile{
		Dietary: map[string]bool{
			"vegetarian": false,
			"vegan":      false,
			"halal":      false,
			"kosher":     false,
			"glutenFree": false,
		},
		Conditions: map[string]bool{
			"diabetic":          false,
			"hypertension":      false,
			"heartDisease":      false,
			"pregnant":          false,
			"lactoseIntolerant": false,
			"celiacDisease":     false,
			"kidneyDisease":     false,
		},
		Allergies: map[string]bool{
			"nuts":      false,
			"peanuts":   false,
			"dairy":     false,
			"eggs":      false,
			"soy":       false,
			"wheat":     false,
			"fish":      false,
			"shellfish": false,
		},
		Goals: map[string]bool{
			"weightLoss":  false,
			"muscleGain":  false,
			"heartHealth": false,
			"lowSodium":   false,
			"lowSugar":    false,
			"highProtein": false,
		},
	}
}

// Category returns the flag map for a category name, or nil if unknown.
func (p *PreferenceProfile) Category(name string) map[string]bool {
	switch name {
	case CategoryDietary:
		return p.Dietary
	case CategoryConditions:
		return p.Conditions
	case CategoryAllergies:
		return p.Allergies
	case CategoryGoals:
		return p.Goals
	default:
		return nil
	}
}

// MergeDefaults fills any keys missing from a loaded record and drops keys
// the current schema does not know about. This is what keeps old and new
// stored records mutually loadable.
func (p *PreferenceProfile) MergeDefaults() {
	defaults := DefaultPreferences()
	p.Dietary = mergeFlags(defaults.Dietary, p.Dietary)
	p.Conditions = mergeFlags(defaults.Conditions, p.Conditions)
	p.Allergies = mergeFlags(defaults.Allergies, p.Allergies)
	p.Goals = mergeFlags(defaults.Goals, p.Goals)
}

func mergeFlags(defaults, loaded map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(defaults))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range loaded {
		if _, known := merged[key]; known {
			merged[key] = value
		}
	}
	return merged
}

// HasAny reports whether any flag is set or the notes are non-blank.
func (p *PreferenceProfile) HasAny() bool {
	for _, flags := range []map[string]bool{p.Dietary, p.Conditions, p.Allergies, p.Goals} {
		for _, set := range flags {
			if set {
				return true
			}
		}
	}
	return strings.TrimSpace(p.CustomNotes) != ""
}

// PromptSummary serializes the active preferences into the sentence-fragment
// string injected into the analysis prompt. It returns "" when nothing is
// set; that sentinel gates the personalization block entirely.
func (p *PreferenceProfile) PromptSummary() string {
	var parts []string

	if dietary := activeLabels(p.Dietary); len(dietary) > 0 {
		parts = append(parts, "Dietary: "+strings.Join(dietary, ", "))
	}
	if conditions := activeLabels(p.Conditions); len(conditions) > 0 {
		parts = append(parts, "Health conditions: "+strings.Join(conditions, ", "))
	}
	if allergies := activeLabels(p.Allergies); len(allergies) > 0 {
		parts = append(parts, "Allergies: "+strings.Join(allergies, ", "))
	}
	if goals := activeLabels(p.Goals); len(goals) > 0 {
		parts = append(parts, "Health goals: "+strings.Join(goals, ", "))
	}
	if notes := strings.TrimSpace(p.CustomNotes); notes != "" {
		parts = append(parts, "Additional notes: "+notes)
	}
	if p.Profile.Age != "" {
		parts = append(parts, "Age: "+p.Profile.Age)
	}

	return strings.Join(parts, ". ")
}

// ActiveSummary lists the active flags as display labels; allergy labels
// carry an " allergy" suffix so they read naturally on their own.
func (p *PreferenceProfile) ActiveSummary() []string {
	var active []string
	active = append(active, activeLabels(p.Dietary)...)
	active = append(active, activeLabels(p.Conditions)...)
	for _, label := range activeLabels(p.Allergies) {
		active = append(active, label+" allergy")
	}
	active = append(active, activeLabels(p.Goals)...)
	return active
}

func activeLabels(flags map[string]bool) []string {
	var labels []string
	for _, key := range sortedKeys(flags) {
		if flags[key] {
			labels = append(labels, FormatLabel(key))
		}
	}
	return labels
}

// sortedKeys returns the flag keys in a stable order so the prompt string
// is identical across calls.
func sortedKeys(flags map[string]bool) []string {
	keys := make([]string, 0, len(flags))
	for key := range flags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FormatLabel renders a camelCase flag key as a spaced Title Case label,
// e.g. "weightLoss" -> "Weight Loss".
func FormatLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
