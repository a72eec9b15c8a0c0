package handler

import (
	"kinbrio/internal/app/live"
	"kinbrio/internal/app/service"
	"kinbrio/internal/configs"
	"kinbrio/internal/pkg/auth/jwt"
)

type AppDeps struct {
	Config   *configs.AppConfig
	Service  *service.Service
	Sessions *jwt.Manager
	Hub      *live.Hub
}
