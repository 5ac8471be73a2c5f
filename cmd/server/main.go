package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/techkeshav23/Flux/internal/config"
	"github.com/techkeshav23/Flux/internal/controllers"
	"github.com/techkeshav23/Flux/internal/middleware"
	"github.com/techkeshav23/Flux/internal/services"
	"github.com/techkeshav23/Flux/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Setup stores ---------------
	prefAdapter, err := store.NewFileAdapter(filepath.Join(cfg.Storage.DataDir, "health_preferences.json"))
	if err != nil {
		return err
	}
	preferences, err := store.NewPreferenceStore(prefAdapter)
	if err != nil {
		return err
	}

	historyAdapter, err := store.NewFileAdapter(filepath.Join(cfg.Storage.DataDir, "scan_history.json"))
	if err != nil {
		return err
	}
	history, err := store.NewHistoryStore(historyAdapter)
	if err != nil {
		return err
	}

	// Setup services ---------------
	gemini := services.NewGeminiClient(cfg.API.GeminiAPIKey, cfg.API.UpstreamTimeout)
	analyzer := services.NewIngredientAnalyzer(gemini, cfg.API.AnalysisModel, logger)
	extractor := services.NewLabelExtractor(gemini, cfg.API.ExtractionModel, logger)

	apiCtrl := controllers.NewAPIController(analyzer, extractor, preferences, history, logger)

	// Setup router and routes ---------------
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	r.Get("/health", apiCtrl.Health)

	r.Route("/api", func(r chi.Router) {
		// The two gateway endpoints each cost an upstream model call.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst))
			r.Post("/analyze", apiCtrl.PostAnalyze)
			r.Post("/extract", apiCtrl.PostExtract)
		})

		r.Get("/history", apiCtrl.GetHistory)
		r.Get("/history/stats", apiCtrl.GetHistoryStats)
		r.Delete("/history/{id}", apiCtrl.DeleteScan)
		r.Delete("/history", apiCtrl.ClearHistory)

		r.Get("/preferences", apiCtrl.GetPreferences)
		r.Put("/preferences/notes", apiCtrl.PutPreferenceNotes)
		r.Put("/preferences/profile", apiCtrl.PutPreferenceProfile)
		r.Put("/preferences/{category}/{key}", apiCtrl.PutPreferenceFlag)
		r.Post("/preferences/onboarding", apiCtrl.PostCompleteOnboarding)
		r.Delete("/preferences", apiCtrl.DeletePreferences)
	})

	// Serve the front end, when one is built into the static dir.
	if info, err := os.Stat(cfg.Server.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("starting server", "address", cfg.Server.Address)
	return srv.ListenAndServe()
}
