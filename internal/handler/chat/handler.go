package chat

import (
	"github.com/gin-gonic/gin"

	"github.com/mediiq/mediiq-api/internal/middleware"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/service/chat"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/httputil"
)

type Handler struct {
	service chat.ChatService
}

func NewHandler(service chat.ChatService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	chats := r.Group("/chat")
	{
		chats.POST("", h.Send)
		chats.GET("", h.History)
		chats.GET("/quota", h.Quota)
	}
}

func (h *Handler) Send(c *gin.Context) {
	var req model.ChatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	resp, err := h.service.Send(c.Request.Context(),
		middleware.Scope(c), middleware.Premium(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) History(c *gin.Context) {
	messages, err := h.service.History(c.Request.Context(), middleware.Scope(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, messages)
}

func (h *Handler) Quota(c *gin.Context) {
	remaining, err := h.service.Remaining(c.Request.Context(),
		middleware.Scope(c), middleware.Premium(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"remaining": remaining,
		"premium":   middleware.Premium(c),
	})
}
