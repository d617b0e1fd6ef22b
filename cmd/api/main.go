package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	_ "github.com/jhoicas/almacen-api/docs"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/requests"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/cache"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// backend repositorios y runner transaccional del almacén elegido.
type backend struct {
	txRunner interface {
		inventory.TxRunner
		requests.TxRunner
	}
	stockRepo   repository.StockBalanceRepository
	movRepo     repository.StockMovementRepository
	reqRepo     repository.IssueRequestRepository
	productRepo repository.ProductRepository
	whRepo      repository.WarehouseRepository
	deptRepo    repository.DepartmentRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var be backend
	if cfg.Store.Memory() {
		store := memory.NewStore()
		store.SeedDemo()
		be = backend{
			txRunner:    memory.NewTxRunner(store),
			stockRepo:   memory.NewStockRepository(store),
			movRepo:     memory.NewMovementRepository(store),
			reqRepo:     memory.NewRequestRepository(store),
			productRepo: memory.NewProductRepository(store),
			whRepo:      memory.NewWarehouseRepository(store),
			deptRepo:    memory.NewDepartmentRepository(store),
			close:       func() {},
		}
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema de base de datos")
		}
		be = backend{
			txRunner:    postgres.NewTxRunner(pool, cfg.DB.TxRetries, log.Component("tx")),
			stockRepo:   postgres.NewStockRepository(pool),
			movRepo:     postgres.NewStockMovementRepository(pool),
			reqRepo:     postgres.NewIssueRequestRepository(pool),
			productRepo: postgres.NewProductRepository(pool),
			whRepo:      postgres.NewWarehouseRepository(pool),
			deptRepo:    postgres.NewDepartmentRepository(pool),
			close:       pool.Close,
		}
	}
	defer be.close()

	// Eventos de solicitudes: sin NATS_URL el publicador descarta en silencio.
	var publisher *messaging.NATSPublisher
	if cfg.NATS.URL != "" {
		nc, err := messaging.Connect(cfg.NATS.URL, cfg.App.Name, log.Component("nats"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		defer nc.Drain()
		publisher = messaging.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix)
	} else {
		publisher = messaging.NewNATSPublisher(nil, cfg.NATS.SubjectPrefix)
	}

	lim := buildLimiter(ctx, cfg, log)

	ledgerUC := inventory.NewLedgerUseCase(be.txRunner, be.productRepo, be.whRepo, log.Zerolog())
	queryUC := inventory.NewQueryUseCase(be.stockRepo, be.movRepo, be.productRepo, be.whRepo)
	requestsUC := requests.NewUseCase(be.txRunner, be.reqRepo, be.deptRepo, ledgerUC, publisher, log.Zerolog())
	slipUC := requests.NewSlipUseCase(
		be.reqRepo, be.movRepo, be.deptRepo, be.productRepo, be.whRepo,
		infrapdf.NewIssueSlipGenerator(cfg.App.Name),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledgerUC,
		Query:     queryUC,
		Requests:  requestsUC,
		Slip:      slipUC,
		JWTSecret: cfg.JWT.Secret,
		Limiter:   lim,
		Log:       log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// buildLimiter arma el rate limiter: Redis si hay REDIS_ADDR, si no memoria del proceso.
// RATE_LIMIT vacío lo desactiva.
func buildLimiter(ctx context.Context, cfg *config.Config, log *logger.Logger) *limiter.Limiter {
	if cfg.RateLimit.Rate == "" {
		return nil
	}

	var store limiter.Store = limitermemory.NewStore()
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		store, err = limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   cfg.App.Name + ":ratelimit",
			MaxRetry: 3,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("store Redis del rate limiter")
		}
	}

	lim, err := httpRouter.NewRateLimiter(cfg.RateLimit.Rate, store)
	if err != nil {
		log.Fatal().Err(err).Msg("RATE_LIMIT inválido")
	}
	return lim
}
