package v1

import (
	"net/http"

	"github.com/vibe-gaming/auth-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")

	auth.POST("/login", h.login)
	auth.POST("/refresh", h.refresh)
	auth.POST("/logout", h.logout)
	auth.POST("/logout-all", h.userIdentityMiddleware, h.logoutAll)
}

type loginInput struct {
	Username string `json:"username" binding:"required,notblank,max=64"`
	Password string `json:"password" binding:"required,max=72"`
}

type refreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required,notblank,max=128"`
}

type tokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
} // @name TokensResponse

func newTokensResponse(tokens *service.Tokens) tokensResponse {
	return tokensResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int64(tokens.AccessTTL.Seconds()),
	}
}

// @Summary Login
// @Tags Auth
// @Description Verifies credentials and starts a new session. Earlier sessions of the user are dropped.
// @ModuleID login
// @Accept  json
// @Produce  json
// @Param input body loginInput true "credentials"
// @Success 200 {object} tokensResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	tokens, err := h.services.Auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newTokensResponse(tokens))
}

// @Summary Refresh
// @Tags Auth
// @Description Exchanges a refresh token for a new token pair. The presented token is consumed.
// @ModuleID refresh
// @Accept  json
// @Produce  json
// @Param input body refreshTokenInput true "refresh token"
// @Success 200 {object} tokensResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	var input refreshTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	tokens, err := h.services.Auth.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newTokensResponse(tokens))
}

// @Summary Logout
// @Tags Auth
// @Description Revokes the refresh token. Unknown tokens are accepted.
// @ModuleID logout
// @Accept  json
// @Param input body refreshTokenInput true "refresh token"
// @Success 204
// @Failure 400 {object} ValidationErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	var input refreshTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), input.RefreshToken); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Logout everywhere
// @Tags Auth
// @Description Drops every session of the authenticated user
// @ModuleID logoutAll
// @Success 204
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /auth/logout-all [post]
func (h *Handler) logoutAll(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode)
		return
	}

	if err := h.services.Auth.LogoutAll(c.Request.Context(), identity.Username); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
