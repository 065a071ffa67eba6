package profile

import (
	"github.com/gin-gonic/gin"

	"github.com/mediiq/mediiq-api/internal/middleware"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/service/profile"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/httputil"
)

type Handler struct {
	service profile.ProfileService
}

func NewHandler(service profile.ProfileService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the account profile surface; the router wraps
// it in the signed-in requirement.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	profiles := r.Group("/profile")
	{
		profiles.GET("", h.Get)
		profiles.PUT("", h.Update)
	}
}

// RegisterAdminRoutes mounts the operator surface; the router wraps it
// in the admin key check.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.PUT("/users/:subject/premium", h.SetPremium)
}

func (h *Handler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), middleware.Scope(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	user, err := h.service.Update(c.Request.Context(), middleware.Scope(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

func (h *Handler) SetPremium(c *gin.Context) {
	var req struct {
		Premium bool `json:"premium"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	subject := c.Param("subject")
	if err := h.service.SetPremium(c.Request.Context(), subject, req.Premium); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"subject": subject, "premium": req.Premium})
}
