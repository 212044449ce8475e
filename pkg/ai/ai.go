package ai

import (
	"context"
	"encoding/json"
)

// TranscribeRequest describes one speech-to-text call. The filename
// carries the container format hint expected by the provider.
type TranscribeRequest struct {
	Audio    []byte
	Filename string
	Language string
}

// Transcriber converts a recorded audio artifact into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (string, error)
}

// SchemaSpec constrains a completion to a strict JSON schema. The
// provider must return a document matching the schema exactly.
type SchemaSpec struct {
	Name   string
	Schema json.RawMessage
}

// CompletionRequest describes one generative text call. A nil Schema
// requests free-form output.
type CompletionRequest struct {
	System string
	User   string
	Schema *SchemaSpec
}

// Completer produces text from a prompt, optionally schema-constrained.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
