package transcription

import (
	"context"

	"github.com/nutriclinic/backoffice/pkg/ai"
	"github.com/nutriclinic/backoffice/pkg/logger"
)

// Recordings arrive as a single webm container blob.
const artifactFilename = "audio.webm"

const dietPlanSystemPrompt = "Usted es nutricionista titulado y dietista profesional. " +
	"Su objetivo es desarrollar un plan de alimentación para el paciente basándose en la siguiente transcripción."

// Result is what the recorder UI consumes. Provider failures land in
// Err with empty text so the operator can re-record; they are never
// surfaced as errors from Transcribe.
type Result struct {
	Text  string `json:"text"`
	Draft string `json:"draft,omitempty"`
	Err   string `json:"error,omitempty"`
}

type Service struct {
	transcriber ai.Transcriber
	completer   ai.Completer
	language    string
	logger      *logger.Logger
}

func NewService(transcriber ai.Transcriber, completer ai.Completer, language string, log *logger.Logger) *Service {
	if language == "" {
		language = "es"
	}
	return &Service{
		transcriber: transcriber,
		completer:   completer,
		language:    language,
		logger:      log,
	}
}

// Transcribe converts a recorded artifact into text and chains a
// diet-plan draft off the transcript. The draft is a convenience
// output: if the narration call fails, the transcript still comes back
// usable. No retries happen here; retry is a fresh user-initiated run.
func (s *Service) Transcribe(ctx context.Context, audio []byte) Result {
	if len(audio) == 0 {
		return Result{Err: "empty audio artifact"}
	}

	text, err := s.transcriber.Transcribe(ctx, ai.TranscribeRequest{
		Audio:    audio,
		Filename: artifactFilename,
		Language: s.language,
	})
	if err != nil {
		s.logger.Error(err, "transcription provider call failed")
		return Result{Err: err.Error()}
	}

	draft, err := s.completer.Complete(ctx, ai.CompletionRequest{
		System: dietPlanSystemPrompt,
		User:   text,
	})
	if err != nil {
		s.logger.Warn("diet plan draft failed, keeping raw transcript", "error", err.Error())
		return Result{Text: text}
	}

	return Result{Text: text, Draft: draft}
}
