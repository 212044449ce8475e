package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/repository"
	"github.com/nutriclinic/backoffice/pkg/auth"
	"github.com/nutriclinic/backoffice/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	operatorRepo repository.OperatorRepository
	jwtSvc       auth.JWTService
	hasher       security.PasswordHasher
}

func NewService(operatorRepo repository.OperatorRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		operatorRepo: operatorRepo,
		jwtSvc:       jwtSvc,
		hasher:       hasher,
	}
}

// Login checks operator credentials and issues a session token. Unknown
// emails and wrong passwords collapse into the same error.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	operator, err := s.operatorRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(operator.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateToken(operator.ID, operator.Email)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:    token,
		Operator: operator,
	}, nil
}

// CurrentOperator resolves the operator behind a validated token.
func (s *Service) CurrentOperator(ctx context.Context, operatorID uuid.UUID) (*model.Operator, error) {
	return s.operatorRepo.Get(ctx, operatorID)
}
