package model

import "time"

// User is an account created from a federated sign-in. Subject is the
// identity provider's stable identifier and doubles as the storage scope.
type User struct {
	Base
	Subject        string `db:"subject" json:"subject"`
	DisplayName    string `db:"display_name" json:"display_name"`
	Email          string `db:"email" json:"email"`
	AvatarURL      string `db:"avatar_url" json:"avatar_url"`
	Premium        bool   `db:"premium" json:"premium"`
	CaregiverEmail string `db:"caregiver_email" json:"caregiver_email,omitempty"`
}

type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name"`
	AvatarURL      *string `json:"avatar_url" binding:"omitempty,url"`
	CaregiverEmail *string `json:"caregiver_email" binding:"omitempty,email"`
}

// ChatUsage tracks the non-premium daily chat quota as a local-date plus
// count pair. The date is "YYYY-MM-DD" in the server's local zone.
type ChatUsage struct {
	Scope     string    `db:"scope" json:"scope"`
	Date      string    `db:"date" json:"date"`
	Count     int       `db:"count" json:"count"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
