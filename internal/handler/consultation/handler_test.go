package consultation

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriclinic/backoffice/internal/middleware"
	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/service/transcription"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/logger"
)

type fakeTranscriptionSvc struct {
	result transcription.Result
	audio  []byte
}

func (s *fakeTranscriptionSvc) Transcribe(ctx context.Context, audio []byte) transcription.Result {
	s.audio = audio
	return s.result
}

type fakeConsultationSvc struct {
	patientID  uuid.UUID
	err        error
	transcript string
	operatorID uuid.UUID
	existingID *uuid.UUID
}

func (s *fakeConsultationSvc) ResolveAndSave(ctx context.Context, operatorID uuid.UUID, transcript string, existingPatientID *uuid.UUID) (uuid.UUID, error) {
	s.operatorID = operatorID
	s.transcript = transcript
	s.existingID = existingPatientID
	return s.patientID, s.err
}

func (s *fakeConsultationSvc) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	return []*model.Consultation{{ID: uuid.New(), PatientID: patientID}}, nil
}

type noopEmail struct{}

func (noopEmail) SendDietDraft(ctx context.Context, to, patientName, draft string) error { return nil }
func (noopEmail) SendCustom(ctx context.Context, to, subject, body string) error         { return nil }

func setupRouter(h *Handler, operatorID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if operatorID != uuid.Nil {
			c.Set(middleware.ContextOperatorID, operatorID)
		}
		c.Next()
	})
	h.RegisterRoutes(r.Group(""))
	return r
}

func audioRequest(t *testing.T, path string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio", "audio.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("webm-bytes"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestTranscribeReturnsResult(t *testing.T) {
	transcriptions := &fakeTranscriptionSvc{result: transcription.Result{Text: "hola", Draft: "plan"}}
	h := NewHandler(transcriptions, &fakeConsultationSvc{}, noopEmail{}, logger.NewLogger(nil))
	r := setupRouter(h, uuid.New())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, audioRequest(t, "/transcriptions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("webm-bytes"), transcriptions.audio)

	var resp struct {
		Success bool                 `json:"success"`
		Data    transcription.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "hola", resp.Data.Text)
	assert.Equal(t, "plan", resp.Data.Draft)
}

func TestTranscribeMissingAudio(t *testing.T) {
	h := NewHandler(&fakeTranscriptionSvc{}, &fakeConsultationSvc{}, noopEmail{}, logger.NewLogger(nil))
	r := setupRouter(h, uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transcriptions", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveConsultation(t *testing.T) {
	consultations := &fakeConsultationSvc{patientID: uuid.New()}
	h := NewHandler(&fakeTranscriptionSvc{}, consultations, noopEmail{}, logger.NewLogger(nil))
	operator := uuid.New()
	r := setupRouter(h, operator)

	existing := uuid.New()
	body, err := json.Marshal(model.SaveConsultationRequest{
		Transcription: "Me llamo Ana",
		PatientID:     &existing,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/consultations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Me llamo Ana", consultations.transcript)
	assert.Equal(t, operator, consultations.operatorID)
	require.NotNil(t, consultations.existingID)
	assert.Equal(t, existing, *consultations.existingID)
}

func TestSaveConsultationMissingTranscription(t *testing.T) {
	h := NewHandler(&fakeTranscriptionSvc{}, &fakeConsultationSvc{}, noopEmail{}, logger.NewLogger(nil))
	r := setupRouter(h, uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/consultations", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveConsultationUnauthenticated(t *testing.T) {
	consultations := &fakeConsultationSvc{err: apperrors.Unauthenticated()}
	h := NewHandler(&fakeTranscriptionSvc{}, consultations, noopEmail{}, logger.NewLogger(nil))
	r := setupRouter(h, uuid.Nil)

	body := []byte(`{"transcription": "hola"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/consultations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaveVoiceConsultation(t *testing.T) {
	transcriptions := &fakeTranscriptionSvc{result: transcription.Result{Text: "Me llamo Ana", Draft: "plan"}}
	consultations := &fakeConsultationSvc{patientID: uuid.New()}
	h := NewHandler(transcriptions, consultations, noopEmail{}, logger.NewLogger(nil))
	r := setupRouter(h, uuid.New())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, audioRequest(t, "/consultations/voice", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Me llamo Ana", consultations.transcript)

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, consultations.patientID.String(), resp.Data["patient_id"])
	assert.Equal(t, "Me llamo Ana", resp.Data["transcription"])
}

func TestSaveVoiceConsultationTranscriptionFailure(t *testing.T) {
	transcriptions := &fakeTranscriptionSvc{result: transcription.Result{Err: "provider timeout"}}
	consultations := &fakeConsultationSvc{}
	h := NewHandler(transcriptions, consultations, noopEmail{}, logger.NewLogger(nil))
	r := setupRouter(h, uuid.New())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, audioRequest(t, "/consultations/voice", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, consultations.transcript, "nothing should be saved on a failed transcription")
}

func TestListByPatient(t *testing.T) {
	h := NewHandler(&fakeTranscriptionSvc{}, &fakeConsultationSvc{}, noopEmail{}, logger.NewLogger(nil))
	r := setupRouter(h, uuid.New())

	patientID := uuid.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/patients/"+patientID.String()+"/consultations", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []*model.Consultation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, patientID, resp.Data[0].PatientID)
}
