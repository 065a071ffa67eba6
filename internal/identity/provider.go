package identity

import (
	"context"

	"github.com/mediiq/mediiq-api/internal/model"
)

// Provider verifies federated sign-in tokens with the external identity
// service and returns the asserted identity.
type Provider interface {
	Verify(ctx context.Context, providerToken string) (*model.Identity, error)
}
