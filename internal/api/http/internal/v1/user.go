package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")

	users.GET("/me", h.userIdentityMiddleware, h.me)
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
} // @name UserResponse

// @Summary Ping
// @Tags Ping
// @ModuleID ping
// @Produce  plain
// @Success 200
// @Router /ping [get]
func (h *Handler) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// @Summary Current user
// @Tags Users
// @Description Returns the user the access token was issued for
// @ModuleID me
// @Produce  json
// @Success 200 {object} userResponse
// @Failure 401 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me [get]
func (h *Handler) me(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode)
		return
	}

	user, err := h.services.Users.GetOneByID(c.Request.Context(), identity.UserID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}
