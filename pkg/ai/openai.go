package ai

import (
	"bytes"
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nutriclinic/backoffice/pkg/metrics"
)

// Config holds OpenAI client configuration.
type Config struct {
	APIKey             string
	TranscriptionModel string
	CompletionModel    string
}

// OpenAIClient implements Transcriber and Completer against the OpenAI
// API. Decoding randomness is pinned to zero so repeated calls over the
// same audio produce the most-likely transcript.
type OpenAIClient struct {
	client             *openai.Client
	transcriptionModel string
	completionModel    string
	metrics            *metrics.Metrics
}

func NewOpenAIClient(cfg Config, m *metrics.Metrics) *OpenAIClient {
	transcriptionModel := cfg.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = openai.Whisper1
	}
	completionModel := cfg.CompletionModel
	if completionModel == "" {
		completionModel = openai.GPT4o
	}

	return &OpenAIClient{
		client:             openai.NewClient(cfg.APIKey),
		transcriptionModel: transcriptionModel,
		completionModel:    completionModel,
		metrics:            m,
	}
}

func (c *OpenAIClient) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       c.transcriptionModel,
		FilePath:    req.Filename,
		Reader:      bytes.NewReader(req.Audio),
		Language:    req.Language,
		Temperature: 0,
		Format:      openai.AudioResponseFormatJSON,
	})
	c.observe("transcription", start, err)
	if err != nil {
		return "", fmt.Errorf("transcription call failed: %w", err)
	}
	return resp.Text, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       c.completionModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Schema,
				Strict: true,
			},
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	c.observe("completion", start, err)
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.ProviderCalls.WithLabelValues(operation, status).Inc()
	c.metrics.ProviderLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
