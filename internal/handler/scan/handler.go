package scan

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/middleware"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/service/scan"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/httputil"
)

type Handler struct {
	service scan.ScanService
}

func NewHandler(service scan.ScanService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	scans := r.Group("/scans")
	{
		scans.POST("/analyze", h.Analyze)
		scans.GET("", h.ListHistory)
		scans.GET("/:id", h.GetHistory)
		scans.DELETE("/:id", h.DeleteHistory)
		scans.DELETE("", h.ClearHistory)
	}
}

func (h *Handler) Analyze(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	record, err := h.service.Analyze(c.Request.Context(),
		middleware.Scope(c), middleware.Premium(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, record)
}

func (h *Handler) ListHistory(c *gin.Context) {
	records, err := h.service.ListHistory(c.Request.Context(), middleware.Scope(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) GetHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid scan ID", err))
		return
	}

	record, err := h.service.GetHistory(c.Request.Context(), middleware.Scope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, record)
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid scan ID", err))
		return
	}

	if err := h.service.DeleteHistory(c.Request.Context(), middleware.Scope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.service.ClearHistory(c.Request.Context(), middleware.Scope(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"cleared": true})
}
