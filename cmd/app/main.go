package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"geev-escrow/docs"
	"geev-escrow/internal/account"
	"geev-escrow/internal/common/config"
	"geev-escrow/internal/common/logger"
	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/events"
	activityHTTP "geev-escrow/internal/features/activity/delivery/http"
	activityRepo "geev-escrow/internal/features/activity/repository/redis"
	activityService "geev-escrow/internal/features/activity/service"
	adminHTTP "geev-escrow/internal/features/admin/delivery/http"
	adminService "geev-escrow/internal/features/admin/service"
	custodyHTTP "geev-escrow/internal/features/custody/delivery/http"
	custodyService "geev-escrow/internal/features/custody/service"
	giveawayHTTP "geev-escrow/internal/features/giveaway/delivery/http"
	giveawayService "geev-escrow/internal/features/giveaway/service"
	mutualaidHTTP "geev-escrow/internal/features/mutualaid/delivery/http"
	mutualaidService "geev-escrow/internal/features/mutualaid/service"
	tonproofHTTP "geev-escrow/internal/features/tonproof/handler/http"
	tonproofMiddleware "geev-escrow/internal/features/tonproof/middleware"
	tonproofRepo "geev-escrow/internal/features/tonproof/repository/redis"
	tonproofService "geev-escrow/internal/features/tonproof/service"
	"geev-escrow/internal/platform/ledger"
	"geev-escrow/internal/platform/redis"
	"geev-escrow/internal/storage"
	"geev-escrow/internal/storage/memory"
	redisStore "geev-escrow/internal/storage/redis"
	"geev-escrow/internal/storage/sqlite"
	"geev-escrow/internal/token"
	"geev-escrow/internal/utils/random"
	"geev-escrow/internal/workers"
)

// @title           Geev Escrow API
// @version         1.0
// @description     Escrowed giveaways and mutual-aid requests over TON token custody.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey WalletSession
// @in header
// @name Authorization
// @description Bearer token issued by /auth/verify

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data

// @tag.name giveaways
// @tag.description Розыгрыши: депозит приза, участие, выбор победителя и выплата

// @tag.name requests
// @tag.description Запросы помощи: пожертвования, возвраты и вывод средств

// @tag.name admin
// @tag.description Администрирование контракта

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.ServiceName, cfg.Debug)
	log := logger.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	self, err := account.ParseAddress(cfg.Contract.Address)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid CONTRACT_ADDRESS")
	}

	// Redis обязателен: payload'ы ton_proof, лента активности, поток событий
	redisClient, err := redis.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr()).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis connection established")

	store, err := openStore(cfg, redisClient)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open contract storage")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("Contract storage ready")

	clock := ledger.NewSystemClock()
	host, err := contract.NewHost(contract.Options{
		Store:   store,
		Locker:  newLocker(cfg, redisClient),
		Clock:   clock,
		Entropy: random.Source{},
		Custody: token.Custody,
		Sink:    newSink(cfg, redisClient),
		Self:    self,
		Logger:  logger.Component("contract"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create contract host")
	}

	// Сервисы
	giveawaySvc := giveawayService.NewGiveawayService(host, logger.Component("giveaway"))
	mutualaidSvc := mutualaidService.NewMutualAidService(host, logger.Component("mutualaid"))
	adminSvc := adminService.NewAdminService(host, logger.Component("admin"))
	custodySvc := custodyService.NewCustodyService(host, cfg.FaucetEnabled, logger.Component("custody"))
	activitySvc := activityService.NewActivityService(activityRepo.NewActivityRepository(redisClient), logger.Component("activity"))
	tonproofSvc := tonproofService.NewService(tonproofRepo.NewRepository(redisClient), tonproofService.Config{
		Secret:     []byte(cfg.Auth.JWTSecret),
		Domain:     cfg.Auth.TonProofDomain,
		PayloadTTL: cfg.Auth.TonProofPayload,
		SessionTTL: cfg.Auth.SessionTTL,
	}, logger.Component("tonproof"))

	if cfg.AutoDraw.Enabled {
		expiration := giveawayService.NewExpirationService(giveawaySvc, clock, cfg.AutoDraw.Interval, logger.Component("expiration"))
		expiration.Start()
		defer expiration.Stop()
	}

	// Индексатор читает поток событий только когда события туда пишутся
	if cfg.Events.Sink == config.SinkRedis {
		worker := workers.NewRedisStreamWorker(redisClient, workers.StreamConfig{
			Stream:   redisClient.Key(cfg.Events.Stream),
			Group:    cfg.Events.Group,
			Consumer: cfg.Events.Consumer,
		}, activitySvc, logger.Component("indexer"))
		go worker.Start(ctx)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.ErrorHandler(logger.Component("http")))
	router.Use(middleware.Errors(logger.Component("http")))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.InitDataHeader}
	router.Use(cors.New(corsConfig))

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	setupProbes(router, store, redisClient)

	v1 := router.Group("/api/v1")
	if cfg.Telegram.BotToken != "" {
		v1.Use(middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL, logger.Component("telegram")))
	}
	v1.Use(tonproofMiddleware.Session(tonproofSvc))
	auth := middleware.RequireAuth(logger.Component("auth"))

	tonproofHTTP.NewHandler(tonproofSvc).RegisterRoutes(v1, auth)
	giveawayHTTP.NewGiveawayHandler(giveawaySvc).RegisterRoutes(v1, auth)
	mutualaidHTTP.NewMutualAidHandler(mutualaidSvc).RegisterRoutes(v1, auth)
	adminHTTP.NewAdminHandler(adminSvc).RegisterRoutes(v1, auth)
	custodyHTTP.NewCustodyHandler(custodySvc).RegisterRoutes(v1, auth)
	activityHTTP.NewActivityHandler(activitySvc).RegisterRoutes(v1)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func openStore(cfg *config.Config, client *redis.Client) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StorageSQLite:
		return sqlite.Open(cfg.Storage.SQLitePath)
	default:
		return redisStore.NewStore(client), nil
	}
}

func newLocker(cfg *config.Config, client *redis.Client) contract.Locker {
	if cfg.Contract.Lock == config.LockRedis {
		return redis.NewLocker(client, "contract_host", cfg.Contract.LockTTL)
	}
	return contract.NewLocalLocker()
}

func newSink(cfg *config.Config, client *redis.Client) events.Sink {
	if cfg.Events.Sink == config.SinkRedis {
		return events.NewRedisStream(client, client.Key(cfg.Events.Stream), cfg.Events.MaxLen)
	}
	return events.NewLog(logger.Component("events"))
}

func setupProbes(router *gin.Engine, store storage.Store, client *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "geev-escrow",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "storage unavailable",
				"details": err.Error(),
			})
			return
		}
		if err := client.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "geev-escrow",
		})
	})
}

