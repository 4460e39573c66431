package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/revuai/revuchat/internal/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI provides an implementation of the LLM interface for interacting with
// OpenAI's language models.
type OpenAI struct {
	model string

	client *goopenai.Client
}

// NewOpenAI creates a new OpenAI instance with the specified API key and model
// name.
func NewOpenAI(apiKey, model string) OpenAI {
	return OpenAI{
		model:  model,
		client: goopenai.NewClient(apiKey),
	}
}

// Chat streams an answer from the OpenAI chat completion API for the given
// system prompt and conversation turns. The context can be used to cancel
// ongoing requests.
func (o OpenAI) Chat(
	ctx context.Context,
	systemPrompt string,
	turns []models.Turn,
) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		msgs := make([]goopenai.ChatCompletionMessage, len(turns))
		for i, turn := range turns {
			msgs[i] = goopenai.ChatCompletionMessage{
				Role:    string(turn.Role),
				Content: turn.Content,
			}
		}
		msgs = slices.Insert(msgs, 0, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})

		req := goopenai.ChatCompletionRequest{
			Model:    o.model,
			Messages: msgs,
			Stream:   true,
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, err := o.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			yield("", fmt.Errorf("error sending request: %w", err))
			return
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if errors.Is(err, context.Canceled) {
					return
				}
				yield("", fmt.Errorf("error receiving response: %w", err))
				return
			}

			if len(response.Choices) == 0 {
				continue
			}

			if content := response.Choices[0].Delta.Content; content != "" {
				if !yield(content, nil) {
					return
				}
			}
		}
	}
}
