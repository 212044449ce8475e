package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/internal/cache"
	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/repository"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
)

type PatientService interface {
	CreatePatient(ctx context.Context, operatorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	ListPatients(ctx context.Context, view string) ([]*model.Patient, error)
}

type Service struct {
	repo  repository.PatientRepository
	views *cache.ViewCache
}

func NewService(repo repository.PatientRepository, views *cache.ViewCache) *Service {
	return &Service{
		repo:  repo,
		views: views,
	}
}

func (s *Service) CreatePatient(ctx context.Context, operatorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	if operatorID == uuid.Nil {
		return nil, apperrors.Unauthenticated()
	}

	now := time.Now()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		NameSurnames: req.NameSurnames,
		Mail:         req.Mail,
		Age:          req.Age,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Height:       req.Height,
		Weight:       req.Weight,
		CreatedBy:    operatorID,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.BadRequest("a patient with this email already exists", err)
		}
		return nil, apperrors.PersistenceFailed("error creating patient", err)
	}

	s.views.Invalidate(ctx, cache.ViewDashboardPatients, cache.ViewDietsPatients)
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	return patient, nil
}

// UpdatePatient applies only the fields present in the request, the
// same merge rule the consultation pipeline uses for known patients.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, apperrors.NotFound("patient", err)
	}

	updates := make(map[string]interface{})
	if req.NameSurnames != nil {
		updates["name_surnames"] = *req.NameSurnames
	}
	if req.Mail != nil {
		updates["mail"] = *req.Mail
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Height != nil {
		updates["height"] = *req.Height
	}
	if req.Weight != nil {
		updates["weight"] = *req.Weight
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return nil, apperrors.BadRequest("a patient with this email already exists", err)
			}
			return nil, apperrors.PersistenceFailed("error updating patient", err)
		}
		s.views.Invalidate(ctx, cache.ViewDashboardPatients, cache.ViewDietsPatients)
	}

	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceFailed("error reloading patient", err)
	}
	return patient, nil
}

// ListPatients serves the named dashboard view, falling back to the
// database on a cache miss. Both views render the same patient list
// today; they are invalidated and cached independently so they can
// diverge.
func (s *Service) ListPatients(ctx context.Context, view string) ([]*model.Patient, error) {
	if cached, ok := s.views.Get(view); ok {
		if patients, ok := cached.([]*model.Patient); ok {
			return patients, nil
		}
	}

	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.PersistenceFailed("error listing patients", err)
	}

	s.views.Set(view, patients)
	return patients, nil
}
