package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/repository"
)

type consultationRepository struct {
	db sqlx.ExtContext
}

func NewConsultationRepository(db sqlx.ExtContext) repository.ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) Create(ctx context.Context, c *model.Consultation) error {
	query := `
		INSERT INTO patient_consultations (
			id, patient_id, created_by, audio_transcription, created_at,
			objetivo_calorias, objetivo_descripcion, objetivo_tipo, objetivo_justificacion,
			resultados_analiticos, suplementos, alergias_intolerancias, cirugias, medicacion,
			patologias, actividad_fisica_duracion, actividad_fisica_tipo, actividad_fisica_perfil,
			actividad_diaria, horario_dia_normal, horas_sueno, cantidad_agua,
			gustos_preferencias, alimentos_evitar, alimentos_priorizar
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.PatientID,
		c.CreatedBy,
		c.AudioTranscription,
		c.CreatedAt,
		c.ObjetivoCalorias,
		c.ObjetivoDescripcion,
		c.ObjetivoTipo,
		c.ObjetivoJustificacion,
		c.ResultadosAnaliticos,
		c.Suplementos,
		c.AlergiasIntolerancias,
		c.Cirugias,
		c.Medicacion,
		c.Patologias,
		c.ActividadFisicaDuracion,
		c.ActividadFisicaTipo,
		c.ActividadFisicaPerfil,
		c.ActividadDiaria,
		c.HorarioDiaNormal,
		c.HorasSueno,
		c.CantidadAgua,
		c.GustosPreferencias,
		c.AlimentosEvitar,
		c.AlimentosPriorizar,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	query := `SELECT * FROM patient_consultations WHERE patient_id = $1 ORDER BY created_at DESC`
	var consultations []*model.Consultation
	if err := sqlx.SelectContext(ctx, r.db, &consultations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}
