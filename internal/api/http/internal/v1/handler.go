package v1

import (
	"github.com/vibe-gaming/auth-service/internal/config"
	"github.com/vibe-gaming/auth-service/internal/service"
	"github.com/vibe-gaming/auth-service/pkg/auth"

	"github.com/gin-gonic/gin"
)

// @title Auth Service API
// @version 1.0
// @description Session issuance, rotation and revocation

// @BasePath /api/v1

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
}

func NewHandler(
	services *service.Services,
	tokenManager auth.TokenManager,
	config *config.Config,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	v1.GET("/ping", h.ping)
	h.initAuthRoutes(v1)
	h.initUsersRoutes(v1)
}
