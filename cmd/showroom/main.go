package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"uvp-showroom/internal/common/config"
	"uvp-showroom/internal/common/middleware"
	"uvp-showroom/internal/i18n"
	"uvp-showroom/internal/showroom/handlers"
	"uvp-showroom/internal/showroom/proxy"
	"uvp-showroom/internal/showroom/repository"
	"uvp-showroom/internal/showroom/service"
	"uvp-showroom/internal/viewer"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ============================================================
// UVP Showroom
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}

	defaultLang, ok := i18n.ParseLanguage(cfg.DefaultLanguage)
	if !ok {
		config.Exitf("config: unsupported SHOWROOM_DEFAULT_LANG %q", cfg.DefaultLanguage)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		config.Exitf("i18n: %v", err)
	}

	// ============================================================
	// Catalog
	// ============================================================

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = repo.Init(ctx, cfg.ModelBaseURL)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialise catalog: %v", err)
	}

	// ============================================================
	// Sessions
	// ============================================================

	modelClient := &http.Client{Timeout: 5 * time.Minute}
	bundled := viewer.FSLoader{FS: os.DirFS(cfg.PublicDir)}
	modelLoader := viewer.MuxLoader{
		Remote: viewer.HTTPLoader{Client: modelClient},
		Local:  bundled,
	}

	sessions, err := service.NewSessionManager(service.Options{
		Bundle:          bundle,
		DefaultLanguage: defaultLang,
		Loader:          modelLoader,
		SandboxMaxBytes: cfg.SandboxMaxBytes,
	})
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}
	defer sessions.Close()

	h, err := handlers.NewHandler(handlers.Options{
		Catalog:    repo,
		Sessions:   sessions,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    int(cfg.SandboxMaxBytes) + 1<<20,
		AppName:      "UVP Showroom",
		ErrorHandler: h.ErrorHandler,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Routes
	// ============================================================

	h.Register(app, proxy.New(modelClient, repo).WithLocal(bundled), cfg.PublicDir)

	// ============================================================
	// Session Sweeper
	// ============================================================

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessions.Sweep(cfg.SessionIdle)
		}
	}()

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting UVP Showroom on %s (env: %s, lang: %s)", addr, cfg.Environment, defaultLang)
	log.Printf("Serving models from %s", cfg.ModelBaseURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
