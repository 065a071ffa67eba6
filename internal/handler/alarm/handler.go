package alarm

import (
	"github.com/gin-gonic/gin"

	"github.com/mediiq/mediiq-api/internal/middleware"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/service/alarm"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/httputil"
)

type Handler struct {
	service alarm.AlarmService
}

func NewHandler(service alarm.AlarmService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alarms := r.Group("/alarm")
	{
		alarms.GET("", h.Current)
		alarms.POST("/dismiss", h.Dismiss)
	}
}

// Current returns the presented alarm for this scope, if any. Clients
// poll it on reconnect to recover a modal they missed.
func (h *Handler) Current(c *gin.Context) {
	presented := h.service.Presented(middleware.Scope(c))
	if presented == nil {
		httputil.RespondWithSuccess(c, gin.H{"presented": false})
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"presented": true, "alarm": presented})
}

func (h *Handler) Dismiss(c *gin.Context) {
	var req model.AlarmDisposition
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.Dismiss(c.Request.Context(), middleware.Scope(c), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"dismissed": true, "action": req.Action})
}
