package responder

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// GeminiProvider opens dialogues against the Gemini API. Each dialogue
// wraps one genai.ChatSession, which threads prior turns itself.
type GeminiProvider struct {
	model *genai.GenerativeModel
}

// NewGeminiProvider creates a GeminiProvider for the named model.
func NewGeminiProvider(ctx context.Context, modelName, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to create genai client")
	}
	return &GeminiProvider{model: client.GenerativeModel(modelName)}, nil
}

// NewDialogue starts a fresh chat session with empty history.
func (p *GeminiProvider) NewDialogue() interfaces.Dialogue {
	return &geminiDialogue{session: p.model.StartChat()}
}

type geminiDialogue struct {
	session *genai.ChatSession
}

func (d *geminiDialogue) Send(ctx context.Context, prompt string) (string, error) {
	resp, err := d.session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", ragerr.Wrap(err, ragerr.CodeProvider, "gemini generation failed")
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", ragerr.New(ragerr.CodeProvider, "gemini returned an empty completion")
	}
	return sb.String(), nil
}

var _ interfaces.DialogueProvider = (*GeminiProvider)(nil)
