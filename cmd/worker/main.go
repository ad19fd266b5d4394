package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidshare/internal/config"
	"vidshare/internal/indexer"
	"vidshare/internal/infra/database"
	infraES "vidshare/internal/infra/elasticsearch"
	infraKafka "vidshare/internal/infra/kafka"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

const groupID = "vidshare-search-indexer"

func main() {
	path := os.Getenv("VIDSHARE_CONFIG")
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if !cfg.Kafka.Enabled {
		logger.Fatal("Search indexer requires kafka.enabled")
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.Init(dbCtx, &cfg.Database)
	dbCancel()
	if err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	ix := indexer.New(infraES.VideoIndexer{}, repository.NewVideoRepository(database.Get()))

	// 索引新建时先把已有视频补齐
	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
	created, err := infraES.EnsureVideosIndex(initCtx)
	initCancel()
	if err != nil {
		logger.Fatal("Failed to ensure videos index", zap.Error(err))
	}
	if created {
		if _, _, err := ix.Backfill(ctx); err != nil {
			logger.Error("Search index backfill failed", zap.Error(err))
		}
	}

	topic := cfg.Kafka.Topic(infraKafka.TopicVideoUploaded)
	logger.Info("Search indexer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartVideoUploadedConsumer(ctx, cfg.Kafka.Brokers, topic, groupID, ix.HandleUploaded)
}
