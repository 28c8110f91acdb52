package responder

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// OllamaProvider opens dialogues against a local Ollama server. Each
// dialogue keeps an explicit message history.
type OllamaProvider struct {
	client *ollama.Client
	model  string
}

// NewOllamaProvider creates an OllamaProvider. An empty baseURL
// defaults to "http://localhost:11434".
func NewOllamaProvider(modelName, baseURL string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, ragerr.Wrap(err, ragerr.CodeConfiguration, "invalid ollama base URL")
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &OllamaProvider{
		client: ollama.NewClient(parsedURL, hc),
		model:  modelName,
	}, nil
}

// NewDialogue starts a dialogue with empty history.
func (p *OllamaProvider) NewDialogue() interfaces.Dialogue {
	return &ollamaDialogue{client: p.client, model: p.model}
}

type ollamaDialogue struct {
	client  *ollama.Client
	model   string
	history []ollama.Message
}

func (d *ollamaDialogue) Send(ctx context.Context, prompt string) (string, error) {
	messages := append(d.history, ollama.Message{
		Role:    "user",
		Content: prompt,
	})

	stream := false
	var sb strings.Builder
	err := d.client.Chat(ctx, &ollama.ChatRequest{
		Model:    d.model,
		Messages: messages,
		Stream:   &stream,
	}, func(resp ollama.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", ragerr.Wrap(err, ragerr.CodeProvider, "ollama chat request failed")
	}
	if sb.Len() == 0 {
		return "", ragerr.New(ragerr.CodeProvider, "ollama returned an empty completion")
	}

	answer := sb.String()
	d.history = append(messages, ollama.Message{
		Role:    "assistant",
		Content: answer,
	})
	return answer, nil
}

var _ interfaces.DialogueProvider = (*OllamaProvider)(nil)
