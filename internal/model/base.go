package model

import (
	"time"

	"github.com/google/uuid"
)

// GuestScope is the storage namespace used for requests without a session.
const GuestScope = "guest"

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
