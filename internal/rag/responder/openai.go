package responder

import (
	"context"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
)

// OpenAIProvider opens dialogues against the OpenAI chat completion
// API. The SDK has no server-side session primitive, so each dialogue
// keeps an explicit message history and resends it on every call.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAIProvider for the named model.
func NewOpenAIProvider(modelName, apiKey string) (*OpenAIProvider, error) {
	config := openai.DefaultConfig(apiKey)
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  modelName,
	}, nil
}

// NewDialogue starts a dialogue with empty history.
func (p *OpenAIProvider) NewDialogue() interfaces.Dialogue {
	return &openaiDialogue{client: p.client, model: p.model}
}

type openaiDialogue struct {
	client  *openai.Client
	model   string
	history []openai.ChatCompletionMessage
}

func (d *openaiDialogue) Send(ctx context.Context, prompt string) (string, error) {
	messages := append(d.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    d.model,
		Messages: messages,
	})
	if err != nil {
		// History is left without the failed turn so a retry does not
		// double-count the prompt.
		return "", ragerr.Wrap(err, ragerr.CodeProvider, "openai chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", ragerr.New(ragerr.CodeProvider, "openai returned no choices")
	}

	answer := resp.Choices[0].Message.Content
	d.history = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: answer,
	})
	return answer, nil
}

var _ interfaces.DialogueProvider = (*OpenAIProvider)(nil)
