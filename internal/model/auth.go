package model

import "time"

// SignInRequest carries an identity-provider token obtained by the
// client during federated sign-in.
type SignInRequest struct {
	ProviderToken string `json:"provider_token" binding:"required"`
}

type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Identity is what the external identity provider asserts about a
// verified token.
type Identity struct {
	Subject     string `json:"subject"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
}
