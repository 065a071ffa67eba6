package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/service/auth"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/httputil"
)

type Handler struct {
	service auth.AuthService
}

func NewHandler(service auth.AuthService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/auth")
	{
		sessions.POST("/signin", h.SignIn)
		sessions.POST("/signout", h.SignOut)
	}
}

func (h *Handler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	resp, err := h.service.SignIn(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) SignOut(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		// Nothing to revoke; signing out a guest is a no-op.
		httputil.RespondWithSuccess(c, gin.H{"signed_out": true})
		return
	}

	if err := h.service.SignOut(c.Request.Context(), parts[1]); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"signed_out": true})
}
