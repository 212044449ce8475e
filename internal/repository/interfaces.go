package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/internal/model"
)

// ErrDuplicateEmail is returned by PatientRepository.Create when the
// store enforces a uniqueness constraint on mail and it was violated.
var ErrDuplicateEmail = errors.New("patient email already exists")

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	// GetByEmail resolves at most one patient by exact mail match.
	// Returns (nil, nil) when there is no match.
	GetByEmail(ctx context.Context, mail string) (*model.Patient, error)
	// UpdateFields applies a partial update: only the given columns
	// are overwritten. Advances updated_at.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	// Replace overwrites all patient fields from an extraction result,
	// nulls included. Advances updated_at.
	Replace(ctx context.Context, id uuid.UUID, fields model.PatientFields) error
	List(ctx context.Context) ([]*model.Patient, error)
}

type ConsultationRepository interface {
	Create(ctx context.Context, consultation *model.Consultation) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error)
}

type OperatorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Operator, error)
	GetByEmail(ctx context.Context, email string) (*model.Operator, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string, processedAt *time.Time) error
}

// Store bundles the repositories touched by one reconciliation run and
// can replay them inside a single transaction when the pipeline is
// configured atomic.
type Store interface {
	Patients() PatientRepository
	Consultations() ConsultationRepository
	WithTx(ctx context.Context, fn func(patients PatientRepository, consultations ConsultationRepository) error) error
}
