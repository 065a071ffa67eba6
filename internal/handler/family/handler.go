package family

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/middleware"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/service/family"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/httputil"
)

type Handler struct {
	service family.FamilyService
}

func NewHandler(service family.FamilyService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	members := r.Group("/family")
	{
		members.POST("", h.Create)
		members.GET("", h.List)
		members.GET("/:id", h.Get)
		members.PUT("/:id", h.Update)
		members.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateFamilyMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	member, err := h.service.Create(c.Request.Context(), middleware.Scope(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, member)
}

// List ensures the self member exists before listing, so a fresh scope
// always sees at least its own profile.
func (h *Handler) List(c *gin.Context) {
	scope := middleware.Scope(c)
	if _, err := h.service.EnsureSelf(c.Request.Context(), scope, c.GetString(middleware.ContextDisplayName)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	members, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, members)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid member ID", err))
		return
	}

	member, err := h.service.Get(c.Request.Context(), middleware.Scope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid member ID", err))
		return
	}

	var req model.UpdateFamilyMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	member, err := h.service.Update(c.Request.Context(), middleware.Scope(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid member ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.Scope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
