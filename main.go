package main

import (
	"farkle-be/internal/api/http"
	"farkle-be/internal/config"
	"farkle-be/internal/logger"
	"farkle-be/internal/service"
	"farkle-be/internal/state"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)

	// 创建固定牌桌并启动调度器
	registry := service.NewRegistry(service.DefaultRoomCodes...)

	hub := service.NewHub(registry)
	go hub.Run()

	// 组装应用状态
	appState := state.NewAppState(cfg, hub)

	// 启动服务器
	http.RunServer(appState)
}
