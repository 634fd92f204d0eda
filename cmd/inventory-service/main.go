package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/api"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/infrastructure/cache"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/infrastructure/db"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/infrastructure/messaging"
	outboxinfra "github.com/RodolfoDevApp/eventshop-salability-go/internal/infrastructure/outbox"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/platform/observability"
)

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	dbConn, err := sql.Open("pgx", cfg.PgDsn)
	if err != nil {
		logger.Fatal("failed to open postgres", zap.Error(err))
	}
	defer dbConn.Close()

	if err := dbConn.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping postgres", zap.Error(err))
	}
	if err := db.InitializeSchema(ctx, dbConn); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}

	// Repos
	reservationRepo := db.NewPgReservationRepository(dbConn)
	configRepo := db.NewPgStockItemConfigurationRepository(dbConn)
	legacyRepo := db.NewPgLegacyStockItemRepository(dbConn)
	stockRepo := db.NewPgStockRepository(dbConn)
	indexRepo := db.NewPgStockIndexRepository(dbConn)
	productRepo := db.NewPgProductRepository(dbConn)
	skuListProvider := db.NewPgSkuListInStockProvider(dbConn)
	salableProductRepo := db.NewPgSalableProductRepository(dbConn)
	outboxRepo := db.NewPgOutboxRepository(dbConn)

	// Event buses
	buses := messaging.NewEventBuses(cfg.RabbitUri, "inventory")

	// Outbox writer + dispatcher + scheduler
	outboxWriter := application.NewOutboxWriter(outboxRepo)
	dispatcher := outboxinfra.NewDispatcher(
		outboxRepo,
		buses.Producer,
		cfg.OutboxMaxRetry,
		cfg.OutboxBatchSize,
		logger.Named("outbox"),
	)
	scheduler := outboxinfra.NewScheduler(dispatcher, cfg.OutboxIntervalSec, logger.Named("outbox"))
	scheduler.Start(ctx)

	// Salability
	stockItemData := application.NewStockItemDataResolver(cfg.DefaultStockID, productRepo, legacyRepo, indexRepo)
	chain := application.NewIsProductSalableForRequestedQtyChain(
		[]application.SufficientCondition{application.NewManageStockCondition(configRepo)},
		[]application.IsProductSalableForRequestedQty{
			application.NewIsSalableWithReservationsCondition(configRepo, stockItemData, reservationRepo),
		},
	)
	backOrderNotice := application.NewBackOrderNotifyCustomerCondition(configRepo, stockItemData, reservationRepo)
	salabilityCheck := application.NewCheckSalability(chain, backOrderNotice)

	// Indexing + cache invalidation
	responseCache := cache.NewTagCache()
	cacheEvents := application.NewCacheEventManager()
	cacheEvents.Subscribe(application.NewParentProductsCacheListener(productRepo))
	cacheEvents.Subscribe(application.NewOutboxCacheListener(outboxWriter))
	flushCache := application.NewFlushCacheByIDs(cfg.ProductCacheTag, cacheEvents, responseCache, logger.Named("cache"))
	stockIndexer := application.NewStockIndexer(stockRepo, indexRepo, cfg.DefaultStockID, cfg.IndexBatchSize, logger.Named("indexer"))
	sourceItemIndexer := application.NewCacheFlushIndexer(
		application.NewSourceItemIndexer(skuListProvider, indexRepo, cfg.DefaultStockID, logger.Named("indexer")),
		skuListProvider,
		application.NewIsProductSalable(stockItemData),
		productRepo,
		flushCache,
		cfg.DefaultStockID,
		logger.Named("indexer"),
	)

	// Reservation placement
	placeSvc := application.NewPlaceReservationsService(
		chain,
		application.NewIsOrderSourceManageable(stockRepo, configRepo),
		reservationRepo,
		outboxWriter,
		application.NewFlushCacheBySkus(productRepo, flushCache),
		logger.Named("reservations"),
	)

	// Subscriptions
	if err := messaging.RegisterOrderSubscriptions(
		ctx,
		buses.OrdersConsumer,
		application.NewOrderPlacedHandler(placeSvc, logger.Named("orders")),
		application.NewOrderCancelledHandler(placeSvc, logger.Named("orders")),
	); err != nil {
		logger.Fatal("failed to start orders subscriptions", zap.Error(err))
	}

	if err := messaging.RegisterCatalogSubscriptions(
		ctx,
		buses.CatalogConsumer,
		application.NewSourceItemsUpdatedHandler(sourceItemIndexer, logger.Named("catalog")),
	); err != nil {
		logger.Fatal("failed to start catalog subscriptions", zap.Error(err))
	}

	instance, err := os.Hostname()
	if err != nil {
		instance = "local"
	}
	if err := messaging.RegisterCacheSubscriptions(
		ctx,
		messaging.NewCacheConsumer(cfg.RabbitUri, "inventory", instance),
		application.NewCleanCacheByTagsHandler(responseCache, logger.Named("cache")),
	); err != nil {
		logger.Fatal("failed to start cache subscriptions", zap.Error(err))
	}

	// HTTP API
	mux := http.NewServeMux()
	apiServer := api.NewServer(cfg, api.Deps{
		Salability:   salabilityCheck,
		Reservations: reservationRepo,
		Products:     productRepo,
		SourceItems:  sourceItemIndexer,
		Stocks:       stockIndexer,
		Filter:       application.NewSalableProductFilter(cfg.ShowOutOfStock, cfg.DefaultStockID, stockRepo, salableProductRepo),
		Cache:        responseCache,
	}, logger.Named("http"))
	apiServer.RegisterRoutes(mux)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.HttpPort,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP listening", zap.String("port", cfg.HttpPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down salability service", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
}
