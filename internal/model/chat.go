package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Scope     string    `db:"scope" json:"-"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ChatSendRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatSendResponse struct {
	Reply     string `json:"reply"`
	Remaining int    `json:"remaining"`
	Premium   bool   `json:"premium"`
}
