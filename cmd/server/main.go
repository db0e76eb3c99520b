package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/config"
	"github.com/fekuna/omnipos-marketplace-service/internal/middleware"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/search"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/router"

	catH "github.com/fekuna/omnipos-marketplace-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/category/usecase"

	formH "github.com/fekuna/omnipos-marketplace-service/internal/formschema/handler"
	formRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/formschema/repository"
	formUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/formschema/usecase"

	prodH "github.com/fekuna/omnipos-marketplace-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/product/usecase"

	recH "github.com/fekuna/omnipos-marketplace-service/internal/recommendation/handler"
	recListenerPkg "github.com/fekuna/omnipos-marketplace-service/internal/recommendation/listener"
	recRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/recommendation/repository"
	recTrackerPkg "github.com/fekuna/omnipos-marketplace-service/internal/recommendation/tracker"
	recUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/recommendation/usecase"

	savedH "github.com/fekuna/omnipos-marketplace-service/internal/savedsearch/handler"
	savedRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/savedsearch/repository"
	savedUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/savedsearch/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if err := postgres.Migrate(db); err != nil {
		appLogger.Fatal("Could not run migrations", zap.Error(err))
	}

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	formRepo := formRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	recRepo := recRepoPkg.NewPGRepository(db)
	savedRepo := savedRepoPkg.NewPGRepository(db)

	// 5. Initialize UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, cfg.Catalog.MaxCategoryDepth, appLogger)
	formUC := formUCPkg.NewFormSchemaUseCase(formRepo, catUC, appLogger)
	recUC := recUCPkg.NewRecommendationUseCase(recRepo, prodRepo, appLogger)
	savedUC := savedUCPkg.NewSavedSearchUseCase(savedRepo, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Optional integrations. Each one is skipped when unconfigured or
	// unreachable and the catalog keeps working without it.
	var prodOpts []prodUCPkg.Option

	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, search cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			prodOpts = append(prodOpts, prodUCPkg.WithCache(redisClient, time.Duration(cfg.Redis.SearchCacheTTL)*time.Second))
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	syncIndex := false
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, text search falls back to the database", zap.Error(err))
		} else {
			esRepo := prodRepoPkg.NewESRepository(esClient, cfg.Elastic.Index)
			if err := esRepo.EnsureIndex(ctx); err != nil {
				appLogger.Warn("Could not create product index", zap.String("index", cfg.Elastic.Index), zap.Error(err))
			}
			prodOpts = append(prodOpts, prodUCPkg.WithTextIndex(esRepo))
			syncIndex = true
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	var views product.ViewTracker = recTrackerPkg.NewDirect(recUC)
	if len(cfg.Kafka.Brokers) > 0 {
		brokerCfg := &broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}
		producer := broker.NewProducer(brokerCfg)
		defer producer.Close()
		consumer := broker.NewConsumer(brokerCfg)
		defer consumer.Close()

		views = recTrackerPkg.NewEventTracker(producer)
		prodOpts = append(prodOpts, prodUCPkg.WithEvents(producer))

		go recListenerPkg.NewViewListener(consumer, recUC, appLogger).Start(ctx)
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	prodOpts = append(prodOpts, prodUCPkg.WithViewTracker(views))

	prodUC := prodUCPkg.NewProductUseCase(prodRepo, catUC, formRepo, appLogger, prodOpts...)
	if syncIndex {
		go runIndexSync(ctx, prodUC, time.Duration(cfg.Elastic.SyncInterval)*time.Second, appLogger)
	}

	// 7. Start HTTP Server
	httpServer := &http.Server{
		Addr: normalizePort(cfg.Server.HTTPPort),
		Handler: router.New(&router.Handlers{
			Categories:      catH.NewCategoryHandler(catUC, appLogger),
			FormSchemas:     formH.NewFormSchemaHandler(formUC, appLogger),
			Products:        prodH.NewProductHandler(prodUC, appLogger),
			Recommendations: recH.NewRecommendationHandler(catUC, recUC, appLogger),
			SavedSearches:   savedH.NewSavedSearchHandler(savedUC, appLogger),
		}, appLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 8. Start gRPC Server
	port := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.ContextInterceptor(appLogger)),
	)

	catH.RegisterCategoryServiceServer(grpcServer, catH.NewCategoryGRPCHandler(catUC, appLogger))
	formH.RegisterSellerPortalServiceServer(grpcServer, formH.NewFormSchemaGRPCHandler(formUC, appLogger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	healthServer.Shutdown()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

// runIndexSync backfills the product index at startup and then rebuilds it
// every interval, which also recovers from failed single-product writes.
func runIndexSync(ctx context.Context, uc product.UseCase, interval time.Duration, appLogger logger.ZapLogger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := uc.SyncTextIndex(ctx); err != nil && ctx.Err() == nil {
			appLogger.Error("product index sync failed, text search stays on the database", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
