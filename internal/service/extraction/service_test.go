package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriclinic/backoffice/pkg/ai"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/logger"
)

type fakeCompleter struct {
	content string
	err     error
	lastReq ai.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	f.lastReq = req
	return f.content, f.err
}

const cannedResponse = `{
	"patient": {
		"name_surnames": "Ana Pérez",
		"mail": null,
		"age": 34,
		"phone": null,
		"gender": "F",
		"height": 175,
		"weight": 65
	},
	"consultation": {
		"objetivo_calorias": 1800,
		"objetivo_descripcion": "pérdida de peso",
		"objetivo_tipo": ["déficit calórico"],
		"objetivo_justificacion": null,
		"resultados_analiticos": null,
		"suplementos": null,
		"alergias_intolerancias": ["lactosa"],
		"cirugias": null,
		"medicacion": null,
		"patologias": null,
		"actividad_fisica_duracion": null,
		"actividad_fisica_tipo": null,
		"actividad_fisica_perfil": null,
		"actividad_diaria": null,
		"horario_dia_normal": null,
		"horas_sueno": 7,
		"cantidad_agua": null,
		"gustos_preferencias": null,
		"alimentos_evitar": null,
		"alimentos_priorizar": null
	}
}`

func TestExtractParsesSchemaConformingResponse(t *testing.T) {
	completer := &fakeCompleter{content: cannedResponse}
	svc := NewService(completer, logger.NewLogger(nil))

	result, err := svc.Extract(context.Background(), "Me llamo Ana Pérez...")
	require.NoError(t, err)

	assert.Equal(t, "Ana Pérez", result.Patient.NameSurnames)
	assert.Nil(t, result.Patient.Mail)
	require.NotNil(t, result.Patient.Age)
	assert.Equal(t, 34, *result.Patient.Age)
	require.NotNil(t, result.Patient.Gender)
	assert.Equal(t, "F", *result.Patient.Gender)
	require.NotNil(t, result.Patient.Height)
	assert.Equal(t, 175.0, *result.Patient.Height)

	require.NotNil(t, result.Consultation.ObjetivoCalorias)
	assert.Equal(t, 1800.0, *result.Consultation.ObjetivoCalorias)
	assert.Equal(t, []string{"déficit calórico"}, result.Consultation.ObjetivoTipo)
	assert.Equal(t, []string{"lactosa"}, result.Consultation.AlergiasIntolerancias)
	assert.Nil(t, result.Consultation.Patologias)
	assert.Nil(t, result.Consultation.CantidadAgua)
}

func TestExtractSendsStrictSchema(t *testing.T) {
	completer := &fakeCompleter{content: cannedResponse}
	svc := NewService(completer, logger.NewLogger(nil))

	_, err := svc.Extract(context.Background(), "transcript")
	require.NoError(t, err)

	require.NotNil(t, completer.lastReq.Schema)
	assert.Equal(t, "extraction_result", completer.lastReq.Schema.Name)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(completer.lastReq.Schema.Schema, &schema))
	assert.Equal(t, false, schema["additionalProperties"])

	props := schema["properties"].(map[string]interface{})
	patient := props["patient"].(map[string]interface{})
	assert.Len(t, patient["properties"], 7)
	assert.Len(t, patient["required"], 7)
	consultation := props["consultation"].(map[string]interface{})
	assert.Len(t, consultation["properties"], 20)
	assert.Len(t, consultation["required"], 20)
}

func TestExtractProviderErrorFailsExtraction(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("provider down")}
	svc := NewService(completer, logger.NewLogger(nil))

	_, err := svc.Extract(context.Background(), "transcript")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrExtractionFailed, apperrors.CodeOf(err))
}

func TestExtractEmptyContentFailsExtraction(t *testing.T) {
	svc := NewService(&fakeCompleter{content: ""}, logger.NewLogger(nil))

	_, err := svc.Extract(context.Background(), "transcript")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrExtractionFailed, apperrors.CodeOf(err))
}

func TestExtractMalformedContentFailsExtraction(t *testing.T) {
	svc := NewService(&fakeCompleter{content: "not json"}, logger.NewLogger(nil))

	_, err := svc.Extract(context.Background(), "transcript")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrExtractionFailed, apperrors.CodeOf(err))
}

func TestExtractRejectsUndeclaredFields(t *testing.T) {
	svc := NewService(&fakeCompleter{content: `{"patient": {"name_surnames": "X", "invented": true}, "consultation": {}}`}, logger.NewLogger(nil))

	_, err := svc.Extract(context.Background(), "transcript")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrExtractionFailed, apperrors.CodeOf(err))
}
