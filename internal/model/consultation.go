package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Consultation is one immutable record of a recorded clinical voice
// session. The raw transcript is retained verbatim alongside whatever
// structured fields the extraction produced; fields the transcript did
// not mention stay NULL.
type Consultation struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	PatientID          uuid.UUID `db:"patient_id" json:"patient_id"`
	CreatedBy          uuid.UUID `db:"created_by" json:"created_by"`
	AudioTranscription string    `db:"audio_transcription" json:"audio_transcription"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`

	ObjetivoCalorias        *float64       `db:"objetivo_calorias" json:"objetivo_calorias"`
	ObjetivoDescripcion     *string        `db:"objetivo_descripcion" json:"objetivo_descripcion"`
	ObjetivoTipo            pq.StringArray `db:"objetivo_tipo" json:"objetivo_tipo"`
	ObjetivoJustificacion   *string        `db:"objetivo_justificacion" json:"objetivo_justificacion"`
	ResultadosAnaliticos    *string        `db:"resultados_analiticos" json:"resultados_analiticos"`
	Suplementos             *string        `db:"suplementos" json:"suplementos"`
	AlergiasIntolerancias   pq.StringArray `db:"alergias_intolerancias" json:"alergias_intolerancias"`
	Cirugias                *string        `db:"cirugias" json:"cirugias"`
	Medicacion              *string        `db:"medicacion" json:"medicacion"`
	Patologias              pq.StringArray `db:"patologias" json:"patologias"`
	ActividadFisicaDuracion *string        `db:"actividad_fisica_duracion" json:"actividad_fisica_duracion"`
	ActividadFisicaTipo     *string        `db:"actividad_fisica_tipo" json:"actividad_fisica_tipo"`
	ActividadFisicaPerfil   *string        `db:"actividad_fisica_perfil" json:"actividad_fisica_perfil"`
	ActividadDiaria         *string        `db:"actividad_diaria" json:"actividad_diaria"`
	HorarioDiaNormal        *string        `db:"horario_dia_normal" json:"horario_dia_normal"`
	HorasSueno              *float64       `db:"horas_sueno" json:"horas_sueno"`
	CantidadAgua            *string        `db:"cantidad_agua" json:"cantidad_agua"`
	GustosPreferencias      pq.StringArray `db:"gustos_preferencias" json:"gustos_preferencias"`
	AlimentosEvitar         pq.StringArray `db:"alimentos_evitar" json:"alimentos_evitar"`
	AlimentosPriorizar      pq.StringArray `db:"alimentos_priorizar" json:"alimentos_priorizar"`
}

// SaveConsultationRequest submits a reviewed transcript for extraction
// and persistence. PatientID pins the session to a known patient; left
// empty, reconciliation falls back to email match or create.
type SaveConsultationRequest struct {
	Transcription string     `json:"transcription" binding:"required"`
	PatientID     *uuid.UUID `json:"patient_id"`
}
