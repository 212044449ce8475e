package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/repository"
)

type patientRepository struct {
	db sqlx.ExtContext
}

func NewPatientRepository(db sqlx.ExtContext) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, name_surnames, mail, age, phone, gender, height, weight, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.NameSurnames,
		patient.Mail,
		patient.Age,
		patient.Phone,
		patient.Gender,
		patient.Height,
		patient.Weight,
		patient.CreatedBy,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := sqlx.GetContext(ctx, r.db, &patient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByEmail(ctx context.Context, mail string) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE mail = $1 LIMIT 1`
	var patient model.Patient
	err := sqlx.GetContext(ctx, r.db, &patient, query, mail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by email: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	// Deterministic column order keeps the statement stable across runs.
	columns := make([]string, 0, len(updates))
	for col := range updates {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	set := ""
	args := make([]interface{}, 0, len(updates)+2)
	for i, col := range columns {
		set += fmt.Sprintf("%s = $%d, ", col, i+1)
		args = append(args, updates[col])
	}
	set += fmt.Sprintf("updated_at = $%d", len(columns)+1)
	args = append(args, time.Now(), id)

	query := fmt.Sprintf("UPDATE patients SET %s WHERE id = $%d", set, len(columns)+2)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Replace(ctx context.Context, id uuid.UUID, fields model.PatientFields) error {
	query := `
		UPDATE patients
		SET name_surnames = $1, mail = $2, age = $3, phone = $4, gender = $5, height = $6, weight = $7, updated_at = $8
		WHERE id = $9
	`
	_, err := r.db.ExecContext(ctx, query,
		fields.NameSurnames,
		fields.Mail,
		fields.Age,
		fields.Phone,
		fields.Gender,
		fields.Height,
		fields.Weight,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to replace patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT * FROM patients ORDER BY updated_at DESC`
	var patients []*model.Patient
	if err := sqlx.SelectContext(ctx, r.db, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
