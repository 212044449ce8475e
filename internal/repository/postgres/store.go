package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/nutriclinic/backoffice/internal/repository"
)

// Store wires the patient and consultation repositories over one
// database handle and can rebind both to a transaction.
type Store struct {
	db            *sqlx.DB
	patients      repository.PatientRepository
	consultations repository.ConsultationRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:            db,
		patients:      NewPatientRepository(db),
		consultations: NewConsultationRepository(db),
	}
}

func (s *Store) Patients() repository.PatientRepository {
	return s.patients
}

func (s *Store) Consultations() repository.ConsultationRepository {
	return s.consultations
}

// WithTx executes fn with both repositories bound to a single
// transaction, committing on nil and rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(patients repository.PatientRepository, consultations repository.ConsultationRepository) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewPatientRepository(tx), NewConsultationRepository(tx)); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
