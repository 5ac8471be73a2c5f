package store

import (
	"fmt"
	"sync"

	"github.com/techkeshav23/Flux/internal/models"
)

// PreferenceStore owns the device's single health-preferences record.
type PreferenceStore struct {
	mu      sync.Mutex
	adapter Adapter
	profile models.PreferenceProfile
}

// NewPreferenceStore loads the persisted record through the adapter,
// merging it over defaults so records written by older schema versions
// still load.
func NewPreferenceStore(adapter Adapter) (*PreferenceStore, error) {
	s := &PreferenceStore{
		adapter: adapter,
		profile: models.DefaultPreferences(),
	}

	var loaded models.PreferenceProfile
	found, err := adapter.Load(&loaded)
	if err != nil {
		return nil, fmt.Errorf("failed to load health preferences: %w", err)
	}
	if found {
		loaded.MergeDefaults()
		s.profile = loaded
	}
	return s, nil
}

// Preferences returns a copy of the current profile.
func (s *PreferenceStore) Preferences() models.PreferenceProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyProfile()
}

// UpdateCategory sets one boolean flag and persists the whole record.
func (s *PreferenceStore) UpdateCategory(category, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := s.profile.Category(category)
	if flags == nil {
		return fmt.Errorf("%w: %q", models.ErrUnknownCategory, category)
	}
	if _, known := flags[key]; !known {
		return fmt.Errorf("%w: %s/%s", models.ErrUnknownKey, category, key)
	}
	flags[key] = value
	return s.persist()
}

// UpdateCustomNotes replaces the free-text notes and persists.
func (s *PreferenceStore) UpdateCustomNotes(notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.CustomNotes = notes
	return s.persist()
}

// UpdateProfile replaces the name/age details and persists.
func (s *PreferenceStore) UpdateProfile(profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Profile = profile
	return s.persist()
}

// CompleteOnboarding marks onboarding done and persists.
func (s *PreferenceStore) CompleteOnboarding() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.HasCompletedOnboarding = true
	return s.persist()
}

// Reset clears the persisted record and restores defaults.
func (s *PreferenceStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.adapter.Delete(); err != nil {
		return fmt.Errorf("failed to clear health preferences: %w", err)
	}
	s.profile = models.DefaultPreferences()
	return nil
}

// PreferencesForPrompt returns the personalization string for the analysis
// prompt, or "" when nothing is set. The empty sentinel is what gates the
// personalization block in the prompt.
func (s *PreferenceStore) PreferencesForPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.PromptSummary()
}

// HasAnyPreferences reports whether any flag is set or notes are non-blank.
func (s *PreferenceStore) HasAnyPreferences() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.HasAny()
}

// ActiveSummary lists the active preference labels for display.
func (s *PreferenceStore) ActiveSummary() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.ActiveSummary()
}

func (s *PreferenceStore) persist() error {
	if err := s.adapter.Save(&s.profile); err != nil {
		return fmt.Errorf("failed to save health preferences: %w", err)
	}
	return nil
}

func (s *PreferenceStore) copyProfile() models.PreferenceProfile {
	copied := s.profile
	copied.Dietary = copyFlags(s.profile.Dietary)
	copied.Conditions = copyFlags(s.profile.Conditions)
	copied.Allergies = copyFlags(s.profile.Allergies)
	copied.Goals = copyFlags(s.profile.Goals)
	return copied
}

func copyFlags(flags map[string]bool) map[string]bool {
	copied := make(map[string]bool, len(flags))
	for key, value := range flags {
		copied[key] = value
	}
	return copied
}
