package state

import (
	"farkle-be/internal/config"
	"farkle-be/internal/service"
)

type AppState struct {
	Cfg *config.AppConfig
	Hub *service.Hub
}

func NewAppState(
	cfg *config.AppConfig,
	hub *service.Hub,
) *AppState {
	return &AppState{
		Cfg: cfg,
		Hub: hub,
	}
}
