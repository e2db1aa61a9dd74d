package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mkaradima/support-chat-backend/internal/config"
	"google.golang.org/api/option"
)

// GeminiClient is the production Completion Gateway backed by the Google
// generative AI API.
type GeminiClient struct {
	client            *genai.Client
	modelName         string
	systemInstruction string
	temperature       float32
	maxTokens         int32
}

func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:            client,
		modelName:         cfg.ChatModel,
		systemInstruction: cfg.ReadSupportGuide(),
		temperature:       cfg.ChatTemperature,
		maxTokens:         cfg.ChatMaxTokens,
	}, nil
}

func (c *GeminiClient) Close() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			log.Printf("ERROR [llm] closing GenAI client: %v", err)
		}
	}
}

func (c *GeminiClient) Complete(ctx context.Context, history []Message, userText string) (string, error) {
	model := c.client.GenerativeModel(c.modelName)

	if c.systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(c.systemInstruction)},
		}
	}

	temp := c.temperature
	maxTokens := c.maxTokens
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}

	chatSession := model.StartChat()
	chatSession.History = convertHistory(history)

	resp, err := chatSession.SendMessage(ctx, genai.Text(userText))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrCompletionFailed)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts in response", ErrCompletionFailed)
	}

	return strings.TrimSpace(text.String()), nil
}

// convertHistory maps conversation turns onto the Gemini role names. The
// provider only knows "user" and "model".
func convertHistory(history []Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range history {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}
