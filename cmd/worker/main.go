package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clipstream/internal/config"
	"clipstream/internal/infra/database"
	infraES "clipstream/internal/infra/elasticsearch"
	infraKafka "clipstream/internal/infra/kafka"
	"clipstream/internal/repository"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// Counter reconciliation worker. Consumes relation events and recomputes the
// denormalized counters from the edge tables, repairing any drift left by
// crashes or manual edits. With -sweep it reconciles every profile once and
// exits; with -backfill-index it rebuilds the video search index and exits.
func main() {
	sweep := flag.Bool("sweep", false, "reconcile all profiles once and exit")
	backfill := flag.Bool("backfill-index", false, "rebuild the video search index and exit")
	flag.Parse()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	userRepo := repository.NewUserRepository(database.Get())
	reconcileService := service.NewReconcileService(userRepo)

	if *backfill {
		if err := infraES.Init(&cfg.Elasticsearch); err != nil {
			logger.Fatal("Failed to init elasticsearch", zap.Error(err))
		}
		defer infraES.Close()
		if err := infraES.InitIndexes(); err != nil {
			logger.Fatal("Failed to init elasticsearch indexes", zap.Error(err))
		}

		searchService := service.NewSearchService(repository.NewVideoRepository(database.Get()), userRepo)
		if err := searchService.BackfillVideoIndex(500); err != nil {
			logger.Fatal("Video index backfill failed", zap.Error(err))
		}
		logger.Info("Video index backfill completed")
		return
	}

	if *sweep {
		repaired, err := reconcileService.ReconcileAll(200)
		if err != nil {
			logger.Fatal("Full reconcile failed", zap.Int("repaired", repaired), zap.Error(err))
		}
		logger.Info("Full reconcile completed", zap.Int("repaired", repaired))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	topic := cfg.Kafka.RelationEventsTopic()
	groupID := "clipstream-reconcile-worker"

	logger.Info("Reconcile worker started",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartRelationEventConsumer(ctx, cfg.Kafka.Brokers, topic, groupID, reconcileService.HandleRelationEvent)
}
