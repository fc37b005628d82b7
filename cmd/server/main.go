package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/verdant-backend/internal/config"
	"github.com/verdantlabs/verdant-backend/internal/database"
	"github.com/verdantlabs/verdant-backend/internal/handler"
	"github.com/verdantlabs/verdant-backend/internal/ledger"
	"github.com/verdantlabs/verdant-backend/internal/queue"
	"github.com/verdantlabs/verdant-backend/internal/repository"
	"github.com/verdantlabs/verdant-backend/internal/router"
	"github.com/verdantlabs/verdant-backend/internal/storage"
	"github.com/verdantlabs/verdant-backend/internal/verifier"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: nil disables rate limiting and the stats cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and stats cache disabled")
	}

	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	uploads := repository.NewUploadRepo(db)
	verifications := repository.NewVerificationRepo(db)
	transactions := repository.NewTransactionRepo(db)
	audits := repository.NewAuditRepo(db)
	analytics := repository.NewAnalyticsRepo(db)

	evidence := storage.NewEvidenceStore(cfg)
	scorer := verifier.New(cfg.AIServiceURL)
	issuer := ledger.New(cfg.LedgerIssuerURL)

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users),
		Project: handler.NewProjectHandler(projects, uploads, verifications, audits, evidence, scorer),
		Admin:   handler.NewAdminHandler(projects, uploads, users, audits, issuer, rdb),
		Cart:    handler.NewCartHandler(projects, transactions, users, analytics),
	}

	e := echo.New()
	router.RegisterRoutes(e, cfg, h, rdb)

	// Consumer keeps its own reconnect loop; it never takes the API down.
	go func() {
		if err := queue.StartPurchaseConsumer(); err != nil {
			log.Printf("purchase consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
