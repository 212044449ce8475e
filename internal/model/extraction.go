package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientFields is the patient half of an extraction result. Every
// field except the name is nullable; null means "not mentioned in the
// transcript", never "empty".
type PatientFields struct {
	NameSurnames string   `json:"name_surnames"`
	Mail         *string  `json:"mail"`
	Age          *int     `json:"age"`
	Phone        *string  `json:"phone"`
	Gender       *string  `json:"gender"`
	Height       *float64 `json:"height"`
	Weight       *float64 `json:"weight"`
}

// Updates returns only the non-null extracted columns, keyed by column
// name. Used by the partial-update reconciliation path, where null
// must leave stored values untouched.
func (f PatientFields) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if f.NameSurnames != "" {
		updates["name_surnames"] = f.NameSurnames
	}
	if f.Mail != nil {
		updates["mail"] = *f.Mail
	}
	if f.Age != nil {
		updates["age"] = *f.Age
	}
	if f.Phone != nil {
		updates["phone"] = *f.Phone
	}
	if f.Gender != nil {
		updates["gender"] = *f.Gender
	}
	if f.Height != nil {
		updates["height"] = *f.Height
	}
	if f.Weight != nil {
		updates["weight"] = *f.Weight
	}
	return updates
}

// ToPatient builds a new patient row from the extracted fields.
func (f PatientFields) ToPatient(createdBy uuid.UUID, now time.Time) *Patient {
	return &Patient{
		Base: Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		NameSurnames: f.NameSurnames,
		Mail:         f.Mail,
		Age:          f.Age,
		Phone:        f.Phone,
		Gender:       f.Gender,
		Height:       f.Height,
		Weight:       f.Weight,
		CreatedBy:    createdBy,
	}
}

// ConsultationFields is the consultation half of an extraction result.
// Field names mirror the clinic's consultation form.
type ConsultationFields struct {
	ObjetivoCalorias        *float64 `json:"objetivo_calorias"`
	ObjetivoDescripcion     *string  `json:"objetivo_descripcion"`
	ObjetivoTipo            []string `json:"objetivo_tipo"`
	ObjetivoJustificacion   *string  `json:"objetivo_justificacion"`
	ResultadosAnaliticos    *string  `json:"resultados_analiticos"`
	Suplementos             *string  `json:"suplementos"`
	AlergiasIntolerancias   []string `json:"alergias_intolerancias"`
	Cirugias                *string  `json:"cirugias"`
	Medicacion              *string  `json:"medicacion"`
	Patologias              []string `json:"patologias"`
	ActividadFisicaDuracion *string  `json:"actividad_fisica_duracion"`
	ActividadFisicaTipo     *string  `json:"actividad_fisica_tipo"`
	ActividadFisicaPerfil   *string  `json:"actividad_fisica_perfil"`
	ActividadDiaria         *string  `json:"actividad_diaria"`
	HorarioDiaNormal        *string  `json:"horario_dia_normal"`
	HorasSueno              *float64 `json:"horas_sueno"`
	CantidadAgua            *string  `json:"cantidad_agua"`
	GustosPreferencias      []string `json:"gustos_preferencias"`
	AlimentosEvitar         []string `json:"alimentos_evitar"`
	AlimentosPriorizar      []string `json:"alimentos_priorizar"`
}

// ExtractionResult pairs the two structured records derived from one
// transcript. Transient; never persisted as its own entity.
type ExtractionResult struct {
	Patient      PatientFields      `json:"patient"`
	Consultation ConsultationFields `json:"consultation"`
}

// ToConsultation builds the consultation row for a resolved patient,
// keeping the transcript verbatim.
func (f ConsultationFields) ToConsultation(patientID, createdBy uuid.UUID, transcript string, now time.Time) *Consultation {
	return &Consultation{
		ID:                 uuid.New(),
		PatientID:          patientID,
		CreatedBy:          createdBy,
		AudioTranscription: transcript,
		CreatedAt:          now,

		ObjetivoCalorias:        f.ObjetivoCalorias,
		ObjetivoDescripcion:     f.ObjetivoDescripcion,
		ObjetivoTipo:            f.ObjetivoTipo,
		ObjetivoJustificacion:   f.ObjetivoJustificacion,
		ResultadosAnaliticos:    f.ResultadosAnaliticos,
		Suplementos:             f.Suplementos,
		AlergiasIntolerancias:   f.AlergiasIntolerancias,
		Cirugias:                f.Cirugias,
		Medicacion:              f.Medicacion,
		Patologias:              f.Patologias,
		ActividadFisicaDuracion: f.ActividadFisicaDuracion,
		ActividadFisicaTipo:     f.ActividadFisicaTipo,
		ActividadFisicaPerfil:   f.ActividadFisicaPerfil,
		ActividadDiaria:         f.ActividadDiaria,
		HorarioDiaNormal:        f.HorarioDiaNormal,
		HorasSueno:              f.HorasSueno,
		CantidadAgua:            f.CantidadAgua,
		GustosPreferencias:      f.GustosPreferencias,
		AlimentosEvitar:         f.AlimentosEvitar,
		AlimentosPriorizar:      f.AlimentosPriorizar,
	}
}
