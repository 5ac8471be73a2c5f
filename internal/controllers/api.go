// Package controllers exposes the local JSON API the front end talks to.
package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/techkeshav23/Flux/internal/models"
	"github.com/techkeshav23/Flux/internal/services"
	"github.com/techkeshav23/Flux/internal/store"
)

// APIController handles the analyze/extract pipeline plus the device-local
// preference and history records.
type APIController struct {
	analyzer    *services.IngredientAnalyzer
	extractor   *services.LabelExtractor
	preferences *store.PreferenceStore
	history     *store.HistoryStore
	logger      *slog.Logger
}

// NewAPIController creates a new APIController.
func NewAPIController(
	analyzer *services.IngredientAnalyzer,
	extractor *services.LabelExtractor,
	preferences *store.PreferenceStore,
	history *store.HistoryStore,
	logger *slog.Logger,
) *APIController {
	return &APIController{
		analyzer:    analyzer,
		extractor:   extractor,
		preferences: preferences,
		history:     history,
		logger:      logger,
	}
}

type analyzeRequest struct {
	Ingredients string  `json:"ingredients"`
	UserContext *string `json:"userContext"`
}

// PostAnalyze runs the full analysis pipeline: prompt build, one upstream
// call, normalization, history write. When the request carries no
// userContext the server derives one from the preference store.
func (c *APIController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userContext := ""
	if req.UserContext != nil {
		userContext = *req.UserContext
	} else {
		userContext = c.preferences.PreferencesForPrompt()
	}

	result, err := c.analyzer.Analyze(r.Context(), req.Ingredients, userContext)
	if err != nil {
		c.respondAnalysisError(w, err)
		return
	}

	entry := models.ScanEntry{
		ProductName:         result.DetectedProductName,
		Ingredients:         req.Ingredients,
		Verdict:             result.Verdict,
		Confidence:          result.Confidence,
		PersonalizedForUser: result.PersonalizedForUser,
		En:                  result.En,
		Hi:                  result.Hi,
		SimpleSummary:       result.SimpleSummaryText(),
	}
	if _, err := c.history.AddScan(entry); err != nil {
		// The analysis itself succeeded; a history write failure should
		// not turn the response into an error.
		c.logger.Error("failed to record scan in history", "error", err)
	}

	respondJSON(w, http.StatusOK, result)
}

type extractRequest struct {
	Image string `json:"image"`
}

// PostExtract runs label OCR on an uploaded image data URL.
func (c *APIController) PostExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := c.extractor.Extract(r.Context(), req.Image)
	if err != nil {
		c.respondExtractionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetHistory returns the scan history newest-first.
func (c *APIController) GetHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"scans": c.history.Scans(),
		"stats": c.history.Stats(),
	})
}

// GetHistoryStats returns the aggregate verdict counts.
func (c *APIController) GetHistoryStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, c.history.Stats())
}

// DeleteScan removes a single history entry.
func (c *APIController) DeleteScan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scan ID")
		return
	}
	if err := c.history.RemoveScan(id); err != nil {
		if errors.Is(err, models.ErrScanNotFound) {
			respondError(w, http.StatusNotFound, "Scan not found")
			return
		}
		c.logger.Error("failed to remove scan", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to remove scan")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// ClearHistory removes all history entries.
func (c *APIController) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := c.history.Clear(); err != nil {
		c.logger.Error("failed to clear history", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

// GetPreferences returns the full preference profile plus derived views.
func (c *APIController) GetPreferences(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"preferences":   c.preferences.Preferences(),
		"activeSummary": c.preferences.ActiveSummary(),
		"hasAny":        c.preferences.HasAnyPreferences(),
	})
}

type flagRequest struct {
	Value bool `json:"value"`
}

// PutPreferenceFlag sets a single boolean flag in one of the four fixed
// categories.
func (c *APIController) PutPreferenceFlag(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category := chi.URLParam(r, "category")
	key := chi.URLParam(r, "key")
	if err := c.preferences.UpdateCategory(category, key, req.Value); err != nil {
		if errors.Is(err, models.ErrUnknownCategory) || errors.Is(err, models.ErrUnknownKey) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.logger.Error("failed to update preference", "category", category, "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}
	respondJSON(w, http.StatusOK, c.preferences.Preferences())
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// PutPreferenceNotes replaces the free-text notes.
func (c *APIController) PutPreferenceNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.preferences.UpdateCustomNotes(req.Notes); err != nil {
		c.logger.Error("failed to update notes", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}
	respondJSON(w, http.StatusOK, c.preferences.Preferences())
}

// PutPreferenceProfile replaces the name/age details.
func (c *APIController) PutPreferenceProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.preferences.UpdateProfile(profile); err != nil {
		c.logger.Error("failed to update profile", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}
	respondJSON(w, http.StatusOK, c.preferences.Preferences())
}

// PostCompleteOnboarding marks the one-time onboarding as done.
func (c *APIController) PostCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := c.preferences.CompleteOnboarding(); err != nil {
		c.logger.Error("failed to complete onboarding", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}
	respondJSON(w, http.StatusOK, c.preferences.Preferences())
}

// DeletePreferences resets the profile to defaults.
func (c *APIController) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	if err := c.preferences.Reset(); err != nil {
		c.logger.Error("failed to reset preferences", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to reset preferences")
		return
	}
	respondJSON(w, http.StatusOK, c.preferences.Preferences())
}

// Health is a liveness check.
func (c *APIController) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondAnalysisError maps the analyzer's error taxonomy to HTTP. The UI
// only ever distinguishes "bad input" from "analysis failed".
func (c *APIController) respondAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyIngredients):
		respondError(w, http.StatusBadRequest, "Ingredients are required")
	case errors.Is(err, models.ErrAPIKeyMissing):
		c.logger.Error("analysis rejected: missing API key")
		respondError(w, http.StatusInternalServerError, "API key not configured")
	case errors.Is(err, models.ErrEmptyResponse):
		c.logger.Error("analysis failed: empty model response")
		respondError(w, http.StatusInternalServerError, "No response from AI")
	default:
		c.logger.Error("analysis failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to analyze ingredients")
	}
}

func (c *APIController) respondExtractionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyImage):
		respondError(w, http.StatusBadRequest, "Image data is required")
	case errors.Is(err, models.ErrAPIKeyMissing):
		c.logger.Error("extraction rejected: missing API key")
		respondError(w, http.StatusInternalServerError, "API key not configured")
	case errors.Is(err, models.ErrEmptyResponse):
		c.logger.Error("extraction failed: empty model response")
		respondError(w, http.StatusInternalServerError, "No response from AI")
	default:
		c.logger.Error("extraction failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to process image")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
