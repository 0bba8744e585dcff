package main

import (
	"context"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/config"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/db"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/audit"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/handler"
	repo "github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/repository/postgres"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/service"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Env, cfg.LogFile)
	defer log.Sync()

	ctx := context.Background()

	if err := db.Migrate(ctx, cfg.DBURL); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	accounts := repo.NewAccountRepository(pool)
	recorder := audit.NewRecorder(audit.NewPostgresStore(pool), log)

	tracker := service.NewTracker(recorder, cfg.LoginMaxAttempts, cfg.LockoutDuration)
	recovery := service.NewRecoveryTokenService(cfg.RecoveryTokenSecret, cfg.RecoveryTokenTTL)
	authService := service.NewAuthService(accounts, recorder, tracker, recovery, cfg.MinPasswordAge)

	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layouts/main",
		ErrorHandler: handler.NewErrorHandler(cfg.Env, log),
	})

	store := session.New(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	authHandler := handler.NewAuthHandler(authService, store)
	pageHandler := handler.NewPageHandler()
	middleware := handler.NewMiddleware(store, accounts, recorder)

	app.Static("/", "./public")
	app.Use(handler.RequestAudit(recorder))
	handler.RegisterRoutes(app, authHandler, pageHandler, middleware)

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
