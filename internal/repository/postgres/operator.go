package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/repository"
)

type operatorRepository struct {
	db *sqlx.DB
}

func NewOperatorRepository(db *sqlx.DB) repository.OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	query := `SELECT * FROM operators WHERE id = $1`
	var operator model.Operator
	if err := r.db.GetContext(ctx, &operator, query, id); err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return &operator, nil
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	query := `SELECT * FROM operators WHERE email = $1`
	var operator model.Operator
	if err := r.db.GetContext(ctx, &operator, query, email); err != nil {
		return nil, fmt.Errorf("failed to get operator by email: %w", err)
	}
	return &operator, nil
}
