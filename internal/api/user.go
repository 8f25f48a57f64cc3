package api

import (
	"context"
	"errors"
	"net/http"

	"pingup/backend/internal/models"
	"pingup/backend/internal/service"
	apperrors "pingup/backend/pkg/errors"
	"pingup/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type UserHandler struct {
	users UserGetter
}

func NewUserHandler(u UserGetter) *UserHandler {
	return &UserHandler{users: u}
}

// Me handles GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.Error(apperrors.NewNotFoundError(apperrors.CodeNotFound, "User not found"))
			return
		}
		c.Error(apperrors.NewInternalServerError(apperrors.CodeInternal, "Failed to load user").WithCause(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
