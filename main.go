package main

import (
	"github.com/SundayYogurt/logistics_service/config"
	"github.com/SundayYogurt/logistics_service/internal/api"
	"github.com/SundayYogurt/logistics_service/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.Init(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	if err := api.StartServer(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
