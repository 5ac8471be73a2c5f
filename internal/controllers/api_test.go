package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/techkeshav23/Flux/internal/models"
	"github.com/techkeshav23/Flux/internal/services"
	"github.com/techkeshav23/Flux/internal/store"
)

type testEnv struct {
	api         *httptest.Server
	upstream    *httptest.Server
	preferences *store.PreferenceStore
	history     *store.HistoryStore
	lastPrompt  *string
}

// newTestEnv wires the full API router against a fake upstream that
// replies with modelText and records the last prompt it received.
func newTestEnv(t *testing.T, apiKey, modelText string) *testEnv {
	t.Helper()

	lastPrompt := new(string)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil &&
			len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			*lastPrompt = req.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": modelText}}}},
			},
		})
	}))
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := services.NewGeminiClient(apiKey, 5*time.Second)
	client.BaseURL = upstream.URL

	preferences, err := store.NewPreferenceStore(store.NewMemoryAdapter())
	if err != nil {
		t.Fatalf("NewPreferenceStore: %v", err)
	}
	history, err := store.NewHistoryStore(store.NewMemoryAdapter())
	if err != nil {
		t.Fatalf("NewHistoryStore: %v", err)
	}

	ctrl := NewAPIController(
		services.NewIngredientAnalyzer(client, "", logger),
		services.NewLabelExtractor(client, "", logger),
		preferences,
		history,
		logger,
	)

	r := chi.NewRouter()
	r.Post("/api/analyze", ctrl.PostAnalyze)
	r.Post("/api/extract", ctrl.PostExtract)
	r.Get("/api/history", ctrl.GetHistory)
	r.Delete("/api/history/{id}", ctrl.DeleteScan)
	r.Delete("/api/history", ctrl.ClearHistory)
	r.Put("/api/preferences/{category}/{key}", ctrl.PutPreferenceFlag)

	api := httptest.NewServer(r)
	t.Cleanup(api.Close)

	return &testEnv{
		api:         api,
		upstream:    upstream,
		preferences: preferences,
		history:     history,
		lastPrompt:  lastPrompt,
	}
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestPostAnalyzeEmptyIngredients(t *testing.T) {
	env := newTestEnv(t, "key", `{"verdict":"Safe","confidence":90}`)

	resp, body := postJSON(t, env.api.URL+"/api/analyze", `{"ingredients":"   "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", resp.StatusCode)
	}
	if body["error"] != "Ingredients are required" {
		t.Errorf("error = %q; want %q", body["error"], "Ingredients are required")
	}
}

func TestPostExtractMissingImage(t *testing.T) {
	env := newTestEnv(t, "key", `{"success":true}`)

	resp, body := postJSON(t, env.api.URL+"/api/extract", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", resp.StatusCode)
	}
	if body["error"] != "Image data is required" {
		t.Errorf("error = %q; want %q", body["error"], "Image data is required")
	}
}

func TestPostAnalyzeMissingAPIKey(t *testing.T) {
	env := newTestEnv(t, "", `{"verdict":"Safe","confidence":90}`)

	resp, body := postJSON(t, env.api.URL+"/api/analyze", `{"ingredients":"Water, Sugar"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", resp.StatusCode)
	}
	if body["error"] != "API key not configured" {
		t.Errorf("error = %q; want %q", body["error"], "API key not configured")
	}
}

// Malformed upstream output still yields a 200 with the degraded record.
func TestPostAnalyzeDegradedIsOK(t *testing.T) {
	env := newTestEnv(t, "key", "not json at all")

	resp, body := postJSON(t, env.api.URL+"/api/analyze", `{"ingredients":"Water, Sugar"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if body["verdict"] != "Caution" {
		t.Errorf("verdict = %v; want Caution", body["verdict"])
	}
	if body["confidence"] != float64(50) {
		t.Errorf("confidence = %v; want 50", body["confidence"])
	}
}

func TestPostAnalyzeWritesHistory(t *testing.T) {
	env := newTestEnv(t, "key", `{"verdict":"Avoid","confidence":95,"detectedProductName":"Energy Drink","en":{"simpleSummary":"Too much caffeine."}}`)

	resp, _ := postJSON(t, env.api.URL+"/api/analyze", `{"ingredients":"Caffeine, Taurine, Sugar"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}

	scans := env.history.Scans()
	if len(scans) != 1 {
		t.Fatalf("history length = %d; want 1", len(scans))
	}
	scan := scans[0]
	if scan.ProductName != "Energy Drink" {
		t.Errorf("productName = %q; want Energy Drink", scan.ProductName)
	}
	if scan.Verdict != models.VerdictAvoid {
		t.Errorf("verdict = %q; want Avoid", scan.Verdict)
	}
	if scan.SimpleSummary != "Too much caffeine." {
		t.Errorf("simpleSummary = %q", scan.SimpleSummary)
	}
}

// Without a request userContext the server injects the stored preferences;
// with no preferences set the prompt carries no personalization block.
func TestPostAnalyzePersonalizationFromStore(t *testing.T) {
	env := newTestEnv(t, "key", `{"verdict":"Safe","confidence":90}`)

	marker := "IMPORTANT - USER HEALTH PROFILE:"

	resp, _ := postJSON(t, env.api.URL+"/api/analyze", `{"ingredients":"Water, Sugar, Citric Acid"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if strings.Contains(*env.lastPrompt, marker) {
		t.Error("prompt must not carry the personalization block when no preferences are set")
	}

	if err := env.preferences.UpdateCategory(models.CategoryAllergies, "nuts", true); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	resp, _ = postJSON(t, env.api.URL+"/api/analyze", `{"ingredients":"Peanut Butter"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if !strings.Contains(*env.lastPrompt, marker) {
		t.Error("prompt must carry the personalization block derived from stored preferences")
	}
	if !strings.Contains(*env.lastPrompt, "Allergies: Nuts") {
		t.Errorf("prompt missing stored allergy context: %q", *env.lastPrompt)
	}
}

func TestPutPreferenceFlagValidation(t *testing.T) {
	env := newTestEnv(t, "key", `{}`)

	req, _ := http.NewRequest(http.MethodPut, env.api.URL+"/api/preferences/moods/happy", strings.NewReader(`{"value":true}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400 for unknown category", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPut, env.api.URL+"/api/preferences/dietary/vegan", strings.NewReader(`{"value":true}`))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d; want 200", resp.StatusCode)
	}
	if !env.preferences.Preferences().Dietary["vegan"] {
		t.Error("vegan flag not set through the API")
	}
}

func TestDeleteScanNotFound(t *testing.T) {
	env := newTestEnv(t, "key", `{}`)

	req, _ := http.NewRequest(http.MethodDelete, env.api.URL+"/api/history/12345", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d; want 404", resp.StatusCode)
	}
}
