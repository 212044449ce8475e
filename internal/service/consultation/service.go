package consultation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/internal/cache"
	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/repository"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/logger"
	"github.com/nutriclinic/backoffice/pkg/metrics"
)

// Extractor is the structured extraction step, isolated behind a
// narrow interface so tests run it on canned JSON.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (*model.ExtractionResult, error)
}

// ViewInvalidator signals that cached views went stale.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, views ...string)
}

// EventEmitter records a domain event for downstream consumers.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// Service is the reconciliation and persistence step of the voice
// pipeline: it turns an extraction result into durable patient and
// consultation rows.
type Service struct {
	store     repository.Store
	extractor Extractor
	views     ViewInvalidator
	events    EventEmitter
	atomic    bool
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(store repository.Store, extractor Extractor, views ViewInvalidator, events EventEmitter, atomic bool, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		views:     views,
		events:    events,
		atomic:    atomic,
		logger:    log,
		metrics:   m,
	}
}

type savedEvent struct {
	PatientID      uuid.UUID `json:"patient_id"`
	ConsultationID uuid.UUID `json:"consultation_id"`
	CreatedBy      uuid.UUID `json:"created_by"`
}

// ResolveAndSave runs extraction over the transcript, resolves the
// patient and persists one consultation row attributed to the
// operator. Patient resolution, in strict priority order:
//
//  1. a supplied patient id is authoritative: non-null extracted
//     fields merge into the stored record, nulls leave it untouched
//  2. otherwise an exact mail match resolves the patient and the
//     stored fields are replaced wholesale with the extracted ones
//  3. otherwise a new patient is created from the extracted fields
//
// When the store is not configured atomic the two writes are
// independent round trips, so a consultation insert failure leaves the
// patient write in place.
func (s *Service) ResolveAndSave(ctx context.Context, operatorID uuid.UUID, transcript string, existingPatientID *uuid.UUID) (uuid.UUID, error) {
	result, err := s.extractor.Extract(ctx, transcript)
	if err != nil {
		s.countRun("extraction_failed")
		return uuid.Nil, err
	}

	if operatorID == uuid.Nil {
		s.countRun("unauthenticated")
		return uuid.Nil, apperrors.Unauthenticated()
	}

	var patientID uuid.UUID
	var consultationID uuid.UUID
	save := func(patients repository.PatientRepository, consultations repository.ConsultationRepository) error {
		id, err := s.resolvePatient(ctx, patients, result.Patient, operatorID, existingPatientID)
		if err != nil {
			return err
		}
		patientID = id

		consultation := result.Consultation.ToConsultation(id, operatorID, transcript, time.Now())
		if err := consultations.Create(ctx, consultation); err != nil {
			msg := "error creating consultation"
			if !s.atomic {
				msg = "error creating consultation (patient write was kept)"
			}
			return apperrors.PersistenceFailed(msg, err)
		}
		consultationID = consultation.ID
		return nil
	}

	if s.atomic {
		err = s.store.WithTx(ctx, save)
	} else {
		err = save(s.store.Patients(), s.store.Consultations())
	}
	if err != nil {
		s.countRun("persistence_failed")
		return uuid.Nil, err
	}

	s.views.Invalidate(ctx, cache.ViewDashboardPatients, cache.ViewDietsPatients)
	if err := s.events.Emit(ctx, model.EventConsultationCreated, savedEvent{
		PatientID:      patientID,
		ConsultationID: consultationID,
		CreatedBy:      operatorID,
	}); err != nil {
		s.logger.Error(err, "failed to emit consultation event")
	}

	s.countRun("success")
	return patientID, nil
}

func (s *Service) resolvePatient(ctx context.Context, patients repository.PatientRepository, fields model.PatientFields, operatorID uuid.UUID, existingPatientID *uuid.UUID) (uuid.UUID, error) {
	// 1: supplied id wins, even over a matching mail. Partial update:
	// only non-null extracted fields overwrite stored values. With
	// nothing to merge the patient write is skipped entirely.
	if existingPatientID != nil {
		updates := fields.Updates()
		if len(updates) > 0 {
			if err := patients.UpdateFields(ctx, *existingPatientID, updates); err != nil {
				return uuid.Nil, apperrors.PersistenceFailed("error updating patient", err)
			}
		}
		s.countOutcome("updated")
		return *existingPatientID, nil
	}

	// 2: exact mail match, full overwrite of all extracted fields.
	if fields.Mail != nil {
		existing, err := patients.GetByEmail(ctx, *fields.Mail)
		if err != nil {
			return uuid.Nil, apperrors.PersistenceFailed("error matching patient by email", err)
		}
		if existing != nil {
			if err := patients.Replace(ctx, existing.ID, fields); err != nil {
				return uuid.Nil, apperrors.PersistenceFailed("error updating patient", err)
			}
			s.countOutcome("matched")
			return existing.ID, nil
		}
	}

	// 3: create. A name with every other field null is still a create,
	// never a no-op.
	patient := fields.ToPatient(operatorID, time.Now())
	err := patients.Create(ctx, patient)
	if errors.Is(err, repository.ErrDuplicateEmail) && fields.Mail != nil {
		// A concurrent run created this mail first and the store
		// enforces uniqueness. Degrade to the mail-match path.
		existing, lookupErr := patients.GetByEmail(ctx, *fields.Mail)
		if lookupErr == nil && existing != nil {
			if replaceErr := patients.Replace(ctx, existing.ID, fields); replaceErr != nil {
				return uuid.Nil, apperrors.PersistenceFailed("error updating patient", replaceErr)
			}
			s.countOutcome("matched")
			return existing.ID, nil
		}
	}
	if err != nil {
		return uuid.Nil, apperrors.PersistenceFailed("error creating patient", err)
	}
	s.countOutcome("created")
	return patient.ID, nil
}

// ListByPatient returns a patient's consultation history, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	consultations, err := s.store.Consultations().ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.PersistenceFailed("error listing consultations", err)
	}
	return consultations, nil
}

func (s *Service) countRun(status string) {
	if s.metrics != nil {
		s.metrics.PipelineRuns.WithLabelValues(status).Inc()
	}
}

func (s *Service) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.PatientsReconciled.WithLabelValues(outcome).Inc()
	}
}
