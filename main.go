// @title EduMind 后端 API
// @version 1.0
// @description EduMind 自适应学习平台的后端服务器。

// @contact.name API支持

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"edumind_backend/internal/app"
	"edumind_backend/internal/config"
	"edumind_backend/pkg/configwatcher"
	"edumind_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", cfg, application.OnConfigReload)

	application.Run()
}
