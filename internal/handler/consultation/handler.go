package consultation

import (
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/internal/email"
	"github.com/nutriclinic/backoffice/internal/middleware"
	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/service/transcription"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/httputil"
	"github.com/nutriclinic/backoffice/pkg/logger"
)

// Recorded artifacts top out well under this; a 25MB cap matches the
// transcription provider's own upload limit.
const maxAudioBytes = 25 << 20

type TranscriptionService interface {
	Transcribe(ctx context.Context, audio []byte) transcription.Result
}

type ConsultationService interface {
	ResolveAndSave(ctx context.Context, operatorID uuid.UUID, transcript string, existingPatientID *uuid.UUID) (uuid.UUID, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error)
}

type Handler struct {
	transcriptions TranscriptionService
	consultations  ConsultationService
	emails         email.Service
	logger         *logger.Logger
}

func NewHandler(transcriptions TranscriptionService, consultations ConsultationService, emails email.Service, log *logger.Logger) *Handler {
	return &Handler{
		transcriptions: transcriptions,
		consultations:  consultations,
		emails:         emails,
		logger:         log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/transcriptions", h.Transcribe)

	consultations := r.Group("/consultations")
	{
		consultations.POST("", h.SaveConsultation)
		consultations.POST("/voice", h.SaveVoiceConsultation)
	}

	r.GET("/patients/:id/consultations", h.ListByPatient)
}

// Transcribe accepts a recorded audio artifact and returns the raw
// transcript plus a diet-plan draft. Provider failures come back inside
// the result body so the operator can re-record without losing the
// session.
func (h *Handler) Transcribe(c *gin.Context) {
	audio, err := h.readAudio(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result := h.transcriptions.Transcribe(c.Request.Context(), audio)
	httputil.RespondWithSuccess(c, result)
}

// SaveConsultation runs the reviewed transcript through extraction and
// reconciliation and persists the consultation.
func (h *Handler) SaveConsultation(c *gin.Context) {
	var req model.SaveConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	patientID, err := h.consultations.ResolveAndSave(c.Request.Context(), middleware.OperatorID(c), req.Transcription, req.PatientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, gin.H{"patient_id": patientID})
}

// SaveVoiceConsultation is the one-shot path: audio in, consultation
// out. The transcript is not reviewed by the operator first, so any
// transcription failure aborts the request.
func (h *Handler) SaveVoiceConsultation(c *gin.Context) {
	audio, err := h.readAudio(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var existingID *uuid.UUID
	if raw := c.PostForm("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
			return
		}
		existingID = &id
	}

	result := h.transcriptions.Transcribe(c.Request.Context(), audio)
	if result.Err != "" {
		httputil.RespondWithError(c, apperrors.TranscriptionFailed(errors.New(result.Err)))
		return
	}

	patientID, err := h.consultations.ResolveAndSave(c.Request.Context(), middleware.OperatorID(c), result.Text, existingID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	// Mailing the draft is a courtesy, not part of the save contract.
	if to := c.PostForm("send_draft_to"); to != "" && result.Draft != "" {
		if err := h.emails.SendDietDraft(c.Request.Context(), to, c.PostForm("patient_name"), result.Draft); err != nil {
			h.logger.Error(err, "failed to mail diet draft")
		}
	}

	httputil.RespondWithCreated(c, gin.H{
		"patient_id":    patientID,
		"transcription": result.Text,
		"draft":         result.Draft,
	})
}

func (h *Handler) ListByPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	consultations, err := h.consultations.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, consultations)
}

func (h *Handler) readAudio(c *gin.Context) ([]byte, error) {
	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		return nil, apperrors.BadRequest("missing audio file", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		return nil, apperrors.BadRequest("failed to read audio file", err)
	}
	if len(audio) == 0 {
		return nil, apperrors.BadRequest("empty audio file", nil)
	}
	return audio, nil
}
