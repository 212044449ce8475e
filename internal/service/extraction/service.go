package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/pkg/ai"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/logger"
)

const systemPrompt = `Eres un nutricionista experto que extrae información relevante de una transcripción de una consulta.

El usuario proporcionará una transcripción de texto. Debes extraer dos objetos distintos:
1. 'patient': Información personal básica.
2. 'consultation': Detalles médicos, nutricionales y de estilo de vida.

Si un campo no se menciona en el texto, déjalo como null.
Normaliza la altura a centímetros ("1.75 metros" y "175 cm" son 175).
Para 'gender', intenta inferir 'M' (Male) o 'F' (Female) del contexto si es posible, de lo contrario 'O'.`

// Service turns a free-text transcript into the structured
// patient/consultation pair via a schema-constrained completion.
type Service struct {
	completer ai.Completer
	logger    *logger.Logger
}

func NewService(completer ai.Completer, log *logger.Logger) *Service {
	return &Service{completer: completer, logger: log}
}

// Extract runs the structured extraction. Fails with ExtractionFailed
// when the provider returns no content or content that does not parse
// as the declared schema; the caller still holds the transcript.
func (s *Service) Extract(ctx context.Context, transcript string) (*model.ExtractionResult, error) {
	content, err := s.completer.Complete(ctx, ai.CompletionRequest{
		System: systemPrompt,
		User:   transcript,
		Schema: &ai.SchemaSpec{
			Name:   schemaName,
			Schema: extractionSchema,
		},
	})
	if err != nil {
		return nil, apperrors.ExtractionFailed(err)
	}
	if content == "" {
		return nil, apperrors.ExtractionFailed(errors.New("no content generated"))
	}

	var result model.ExtractionResult
	decoder := json.NewDecoder(bytes.NewReader([]byte(content)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&result); err != nil {
		s.logger.Error(err, "extraction response does not match schema")
		return nil, apperrors.ExtractionFailed(err)
	}

	return &result, nil
}
