package analysis

import (
	"context"

	"github.com/mediiq/mediiq-api/internal/model"
)

// Message is one turn in a provider conversation.
type Message struct {
	Role    string
	Content string
}

// Provider is the boundary to the generative analysis service. Prompt
// construction and response parsing stay behind this interface; callers
// treat it as an opaque request/response collaborator.
type Provider interface {
	// AnalyzeMedicine identifies a medicine package image and returns the
	// structured safety record, tailored to the given patient profile.
	AnalyzeMedicine(ctx context.Context, image, mimeType string, profile *model.FamilyMember) (*model.AnalysisResult, error)

	// Chat continues a doctor-assistant conversation and returns the
	// assistant reply.
	Chat(ctx context.Context, history []Message, profile *model.FamilyMember) (string, error)

	// Name returns the provider name.
	Name() string
}
