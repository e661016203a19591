package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/ashevelev/chatweb/pkg/domain"
)

const defaultTemperature = 0.7

type client struct {
	api         *openai.Client
	model       string
	temperature float32
}

func NewClient(token, model string) (*client, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &client{
		api:         openai.NewClient(token),
		model:       model,
		temperature: defaultTemperature,
	}, nil
}

// CreateChatCompletion returns the assistant's reply for the given
// transcript.
func (c *client) CreateChatCompletion(ctx context.Context, messages []domain.Message) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toAPIMessages(messages),
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

// StreamChatCompletion forwards completion deltas to onDelta as they
// arrive. onDelta returning an error aborts the stream.
func (c *client) StreamChatCompletion(ctx context.Context, messages []domain.Message, onDelta func(string) error) error {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toAPIMessages(messages),
		Temperature: c.temperature,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("creating chat completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receiving stream delta: %w", err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}
}

func toAPIMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
