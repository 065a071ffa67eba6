package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"

	"github.com/mediiq/mediiq-api/internal/config"
	"github.com/mediiq/mediiq-api/internal/model"
)

const analysisSystemPrompt = `You are a medicine identification assistant. Given an image of a medicine package (base64, inline) and a patient profile, reply with a single JSON object and nothing else, with keys: name, description, plain_explanation, uses (array), dosage, side_effects (array), warnings (array), condition_warnings (array). condition_warnings must address the patient profile (age group, pregnancy, breastfeeding). Use the patient's preferred language for plain_explanation.`

const chatSystemPrompt = `You are a cautious virtual doctor assistant. Answer questions about medicines, dosing and interactions in plain language. Recommend seeing a real doctor for anything serious. Tailor advice to the patient profile when one is given.`

// DeepseekProvider implements Provider on the DeepSeek chat-completions API.
type DeepseekProvider struct {
	client deepseek.Client
	model  string
}

func NewDeepseekProvider(cfg config.AnalysisConfig) (*DeepseekProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("analysis API key is required")
	}

	client, err := deepseek.NewClient(cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis client: %w", err)
	}

	m := cfg.Model
	if m == "" {
		m = deepseek.DEEPSEEK_CHAT_MODEL
	}

	return &DeepseekProvider{client: client, model: m}, nil
}

func (p *DeepseekProvider) Name() string { return "deepseek" }

func (p *DeepseekProvider) AnalyzeMedicine(ctx context.Context, image, mimeType string, profile *model.FamilyMember) (*model.AnalysisResult, error) {
	user := fmt.Sprintf("Patient profile: %s\nImage (%s, base64):\n%s",
		profileSummary(profile), mimeType, image)

	content, err := p.complete(ctx, []*request.Message{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: user},
	})
	if err != nil {
		return nil, err
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		return nil, fmt.Errorf("malformed analysis response: %w", err)
	}
	if result.Name == "" {
		return nil, fmt.Errorf("analysis response missing medicine name")
	}
	return &result, nil
}

func (p *DeepseekProvider) Chat(ctx context.Context, history []Message, profile *model.FamilyMember) (string, error) {
	messages := make([]*request.Message, 0, len(history)+1)

	system := chatSystemPrompt
	if profile != nil {
		system += "\nPatient profile: " + profileSummary(profile)
	}
	messages = append(messages, &request.Message{Role: "system", Content: system})

	for _, msg := range history {
		messages = append(messages, &request.Message{Role: msg.Role, Content: msg.Content})
	}

	return p.complete(ctx, messages)
}

func (p *DeepseekProvider) complete(ctx context.Context, messages []*request.Message) (string, error) {
	resp, err := p.client.CallChatCompletionsChat(ctx, &request.ChatCompletionsRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("analysis response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func profileSummary(profile *model.FamilyMember) string {
	if profile == nil {
		return "unknown adult"
	}
	parts := []string{string(profile.AgeGroup)}
	if profile.Gender != "" {
		parts = append(parts, profile.Gender)
	}
	if profile.Pregnant {
		parts = append(parts, "pregnant")
	}
	if profile.Breastfeeding {
		parts = append(parts, "breastfeeding")
	}
	if profile.Language != "" {
		parts = append(parts, "prefers "+profile.Language)
	}
	return strings.Join(parts, ", ")
}

// extractJSON trims markdown fences some models wrap around JSON output.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}
