//POST   /api/assets/connect          # Link the main bank account
//POST   /api/assets/connect/sub      # Register a secondary account
//DELETE /api/assets/{userID}         # Disconnect an account
//POST   /api/assets/{userID}/refresh # On-demand sync for one user
//POST   /api/sync/run                # Batch sync for all accounts
//GET    /api/v1/health               # Health check

package api

import (
	"fmt"

	assetAPI "finlink/internal/app/server/api/http/asset"
	healthAPI "finlink/internal/app/server/api/http/health"
	"finlink/internal/app/server/api/http/middleware"
	"finlink/internal/app/server/api/http/middleware/logger"
	syncAPI "finlink/internal/app/server/api/http/sync"
	"finlink/internal/classify"
	"finlink/internal/codef"
	"finlink/internal/config"
	"finlink/internal/crypto"
	"finlink/internal/domain/asset"
	"finlink/internal/domain/sync"
	"finlink/internal/domain/token"
	"finlink/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

// Services is the wired service graph shared by the HTTP API, the scheduler
// and the one-shot CLI commands.
type Services struct {
	Asset *asset.Service
	Sync  *sync.Service
}

// NewServices builds the full dependency graph on top of the storage pool.
func NewServices(cfg *config.Config, storage *postgres.Storage, log *slog.Logger) (*Services, error) {
	cipher := crypto.NewCipher(cfg.Crypto.AESSecretKey, cfg.Crypto.AESPassphrase)

	tokenRepo := postgres.NewTokenRepository(storage.Pool(), log)
	oauthClient := codef.NewOAuthClient(cfg, log)
	tokenService := token.NewService(tokenRepo, oauthClient, log)
	aggregator := codef.NewClient(cfg, tokenService, log)

	classifier, err := classify.NewClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("build classifier client: %w", err)
	}

	assetRepo := postgres.NewAssetRepository(storage.Pool(), cipher, log)
	expenseRepo := postgres.NewExpenseRepository(storage.Pool(), log)

	return &Services{
		Asset: asset.NewService(assetRepo, expenseRepo, aggregator, classifier, log),
		Sync:  sync.NewService(assetRepo, expenseRepo, aggregator, classifier, log),
	}, nil
}

// New builds the *chi.Mux with every operation registered through
// huma.Register.
func New(services *Services, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaCfg := huma.DefaultConfig("Finlink API", "1.0.0")
	API := humachi.New(mux, humaCfg)

	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	assetHandler := assetAPI.NewHandler(services.Asset, services.Sync, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(services.Sync, log, middlewares.GetAllAndClear())

	healthHandler.SetupRoutes(API)
	assetHandler.SetupRoutes(API)
	syncHandler.SetupRoutes(API)

	return mux
}
