package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tessera-live/tessera/config"
	"github.com/tessera-live/tessera/internal/app"
	"github.com/tessera-live/tessera/internal/cache"
	"github.com/tessera-live/tessera/internal/handler"
	"github.com/tessera-live/tessera/internal/mq"
	"github.com/tessera-live/tessera/internal/util"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := util.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", zap.Error(err))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	redisCache, err := cache.NewRedisCache(cfg.CacheURL)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}

	mqConn, err := mq.NewMQConn(cfg.MQURL)
	if err != nil {
		logger.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer mqConn.Close()

	a := app.New(cfg, db, redisCache, mqConn, logger, nil)
	defer a.Close()

	if err := a.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := a.Init(); err != nil {
		logger.Fatal("failed to init app", zap.Error(err))
	}

	r := gin.Default()
	handler.NewHandler(a).RegisterRoutes(r)

	logger.Info("server listening", zap.String("addr", cfg.Addr))
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
