package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/pkg/auth"
	"github.com/nutriclinic/backoffice/pkg/security"
)

type fakeOperatorRepo struct {
	byEmail map[string]*model.Operator
	byID    map[uuid.UUID]*model.Operator
}

func (r *fakeOperatorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	op, ok := r.byID[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return op, nil
}

func (r *fakeOperatorRepo) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	op, ok := r.byEmail[email]
	if !ok {
		return nil, errors.New("no rows")
	}
	return op, nil
}

func newTestService(t *testing.T, password string) (*Service, *model.Operator) {
	t.Helper()

	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	operator := &model.Operator{
		Base:         model.Base{ID: uuid.New()},
		Name:         "Dra. Martín",
		Email:        "dra.martin@clinic.example",
		PasswordHash: hash,
	}
	repo := &fakeOperatorRepo{
		byEmail: map[string]*model.Operator{operator.Email: operator},
		byID:    map[uuid.UUID]*model.Operator{operator.ID: operator},
	}
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	return NewService(repo, jwtSvc, hasher), operator
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, operator := newTestService(t, "correct-horse")

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    operator.Email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, operator.ID, resp.Operator.ID)

	claims, err := auth.NewJWTService("test-secret", time.Hour).ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, claims.OperatorID)
	assert.Equal(t, operator.Email, claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, operator := newTestService(t, "correct-horse")

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    operator.Email,
		Password: "battery-staple",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t, "correct-horse")

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@clinic.example",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
