package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vibe-gaming/auth-service/pkg/auth"
	"github.com/vibe-gaming/auth-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	identityCtx         = "identity"
)

func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	identity, err := h.parseAuthHeader(c)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			logger.Debug("parse auth header failed", zap.Error(err))
		}
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode)
		return
	}

	c.Set(identityCtx, identity)
	c.Next()
}

func (h *Handler) parseAuthHeader(c *gin.Context) (*auth.Identity, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return nil, errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return nil, errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return nil, errors.New("token is empty")
	}

	return h.tokenManager.Parse(headerParts[1])
}

func getIdentity(c *gin.Context) (*auth.Identity, error) {
	v, ok := c.Get(identityCtx)
	if !ok {
		return nil, errors.New("identity not found")
	}

	identity, ok := v.(*auth.Identity)
	if !ok {
		return nil, errors.New("identity is of invalid type")
	}

	return identity, nil
}
