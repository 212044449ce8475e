package consultation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriclinic/backoffice/internal/cache"
	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/repository"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/logger"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

type updateCall struct {
	id      uuid.UUID
	updates map[string]interface{}
}

type replaceCall struct {
	id     uuid.UUID
	fields model.PatientFields
}

type fakePatientRepo struct {
	byEmail      map[string]*model.Patient
	createErr    error
	created      []*model.Patient
	updateCalls  []updateCall
	replaceCalls []replaceCall
}

func (r *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, p)
	return nil
}

func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return nil, errors.New("not implemented")
}

func (r *fakePatientRepo) GetByEmail(ctx context.Context, mail string) (*model.Patient, error) {
	return r.byEmail[mail], nil
}

func (r *fakePatientRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.updateCalls = append(r.updateCalls, updateCall{id: id, updates: updates})
	return nil
}

func (r *fakePatientRepo) Replace(ctx context.Context, id uuid.UUID, fields model.PatientFields) error {
	r.replaceCalls = append(r.replaceCalls, replaceCall{id: id, fields: fields})
	return nil
}

func (r *fakePatientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	return nil, nil
}

type fakeConsultationRepo struct {
	createErr error
	created   []*model.Consultation
}

func (r *fakeConsultationRepo) Create(ctx context.Context, c *model.Consultation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, c)
	return nil
}

func (r *fakeConsultationRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	var out []*model.Consultation
	for _, c := range r.created {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeStore struct {
	patients      *fakePatientRepo
	consultations *fakeConsultationRepo
	txCalls       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients:      &fakePatientRepo{byEmail: make(map[string]*model.Patient)},
		consultations: &fakeConsultationRepo{},
	}
}

func (s *fakeStore) Patients() repository.PatientRepository { return s.patients }

func (s *fakeStore) Consultations() repository.ConsultationRepository { return s.consultations }

func (s *fakeStore) WithTx(ctx context.Context, fn func(repository.PatientRepository, repository.ConsultationRepository) error) error {
	s.txCalls++
	return fn(s.patients, s.consultations)
}

type fakeExtractor struct {
	result *model.ExtractionResult
	err    error
}

func (e *fakeExtractor) Extract(ctx context.Context, transcript string) (*model.ExtractionResult, error) {
	return e.result, e.err
}

type fakeViews struct {
	invalidated [][]string
}

func (v *fakeViews) Invalidate(ctx context.Context, views ...string) {
	v.invalidated = append(v.invalidated, views)
}

type fakeEvents struct {
	emitted []string
}

func (e *fakeEvents) Emit(ctx context.Context, eventType string, payload interface{}) error {
	e.emitted = append(e.emitted, eventType)
	return nil
}

func emptyResult(name string) *model.ExtractionResult {
	return &model.ExtractionResult{Patient: model.PatientFields{NameSurnames: name}}
}

func newService(store *fakeStore, extractor Extractor, atomic bool) (*Service, *fakeViews, *fakeEvents) {
	views := &fakeViews{}
	events := &fakeEvents{}
	svc := NewService(store, extractor, views, events, atomic, logger.NewLogger(nil), nil)
	return svc, views, events
}

func TestSaveCreatesPatientAndConsultation(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{result: &model.ExtractionResult{
		Patient: model.PatientFields{NameSurnames: "Ana Pérez", Weight: f64Ptr(65)},
	}}
	svc, views, events := newService(store, extractor, false)
	operator := uuid.New()
	transcript := "Me llamo Ana Pérez, peso 65 kilos"

	patientID, err := svc.ResolveAndSave(context.Background(), operator, transcript, nil)
	require.NoError(t, err)

	require.Len(t, store.patients.created, 1)
	created := store.patients.created[0]
	assert.Equal(t, created.ID, patientID)
	assert.Equal(t, "Ana Pérez", created.NameSurnames)
	require.NotNil(t, created.Weight)
	assert.Equal(t, 65.0, *created.Weight)
	assert.Nil(t, created.Mail)
	assert.Nil(t, created.Age)
	assert.Nil(t, created.Gender)
	assert.Equal(t, operator, created.CreatedBy)

	require.Len(t, store.consultations.created, 1)
	consultation := store.consultations.created[0]
	assert.Equal(t, patientID, consultation.PatientID)
	assert.Equal(t, operator, consultation.CreatedBy)
	assert.Equal(t, transcript, consultation.AudioTranscription)

	require.Len(t, views.invalidated, 1)
	assert.ElementsMatch(t, []string{cache.ViewDashboardPatients, cache.ViewDietsPatients}, views.invalidated[0])
	assert.Equal(t, []string{model.EventConsultationCreated}, events.emitted)
}

func TestExtractionFailureAbortsRun(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{err: apperrors.ExtractionFailed(errors.New("no content"))}
	svc, views, _ := newService(store, extractor, false)

	_, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrExtractionFailed, apperrors.CodeOf(err))
	assert.Empty(t, store.patients.created)
	assert.Empty(t, store.consultations.created)
	assert.Empty(t, views.invalidated)
}

func TestMissingOperatorFailsUnauthenticated(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store, &fakeExtractor{result: emptyResult("X")}, false)

	_, err := svc.ResolveAndSave(context.Background(), uuid.Nil, "transcript", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthenticated, apperrors.CodeOf(err))
	assert.Empty(t, store.patients.created)
	assert.Empty(t, store.consultations.created)
}

func TestExistingIDPartialUpdateMergesNonNullOnly(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{result: &model.ExtractionResult{
		Patient: model.PatientFields{Weight: f64Ptr(70), Mail: nil},
	}}
	svc, _, _ := newService(store, extractor, false)
	existingID := uuid.New()

	patientID, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", &existingID)
	require.NoError(t, err)
	assert.Equal(t, existingID, patientID)

	require.Len(t, store.patients.updateCalls, 1)
	call := store.patients.updateCalls[0]
	assert.Equal(t, existingID, call.id)
	assert.Equal(t, map[string]interface{}{"weight": 70.0}, call.updates)
	assert.Empty(t, store.patients.created)
	assert.Empty(t, store.patients.replaceCalls)
}

func TestExistingIDEmptyUpdateSkipsPatientWrite(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{result: &model.ExtractionResult{}}
	svc, _, _ := newService(store, extractor, false)
	existingID := uuid.New()

	// Two runs with all-null extracted fields: zero patient writes on
	// both, yet two consultation rows for the same patient.
	for i := 0; i < 2; i++ {
		patientID, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", &existingID)
		require.NoError(t, err)
		assert.Equal(t, existingID, patientID)
	}

	assert.Empty(t, store.patients.updateCalls)
	assert.Empty(t, store.patients.created)
	require.Len(t, store.consultations.created, 2)
	assert.Equal(t, existingID, store.consultations.created[0].PatientID)
	assert.Equal(t, existingID, store.consultations.created[1].PatientID)
}

func TestExistingIDTakesPrecedenceOverEmailMatch(t *testing.T) {
	store := newFakeStore()
	other := &model.Patient{Base: model.Base{ID: uuid.New()}}
	store.patients.byEmail["ana@example.com"] = other

	extractor := &fakeExtractor{result: &model.ExtractionResult{
		Patient: model.PatientFields{NameSurnames: "Ana", Mail: strPtr("ana@example.com")},
	}}
	svc, _, _ := newService(store, extractor, false)
	existingID := uuid.New()

	patientID, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", &existingID)
	require.NoError(t, err)
	assert.Equal(t, existingID, patientID)
	assert.NotEqual(t, other.ID, patientID)
	assert.Empty(t, store.patients.replaceCalls)
	require.Len(t, store.patients.updateCalls, 1)
}

func TestEmailMatchAppliesFullOverwrite(t *testing.T) {
	store := newFakeStore()
	stored := &model.Patient{
		Base:         model.Base{ID: uuid.New()},
		NameSurnames: "Ana Pérez",
		Phone:        strPtr("600111222"),
	}
	store.patients.byEmail["ana@example.com"] = stored

	fields := model.PatientFields{
		NameSurnames: "Ana Pérez",
		Mail:         strPtr("ana@example.com"),
		Weight:       f64Ptr(64),
		// Phone is null: the overwrite must null the stored value out.
	}
	svc, _, _ := newService(store, &fakeExtractor{result: &model.ExtractionResult{Patient: fields}}, false)

	patientID, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, patientID)

	require.Len(t, store.patients.replaceCalls, 1)
	call := store.patients.replaceCalls[0]
	assert.Equal(t, stored.ID, call.id)
	assert.Equal(t, fields, call.fields)
	assert.Nil(t, call.fields.Phone)
	assert.Empty(t, store.patients.created)
	assert.Empty(t, store.patients.updateCalls)
}

func TestNoIDNoMatchCreatesNewPatient(t *testing.T) {
	store := newFakeStore()
	fields := model.PatientFields{
		NameSurnames: "Luis Gómez",
		Mail:         strPtr("luis@example.com"),
	}
	svc, _, _ := newService(store, &fakeExtractor{result: &model.ExtractionResult{Patient: fields}}, false)

	patientID, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.NoError(t, err)

	require.Len(t, store.patients.created, 1)
	assert.Equal(t, store.patients.created[0].ID, patientID)
	assert.Empty(t, store.patients.replaceCalls)
}

func TestConsultationInsertFailureKeepsPatientWrite(t *testing.T) {
	store := newFakeStore()
	store.consultations.createErr = errors.New("constraint violation")
	svc, views, _ := newService(store, &fakeExtractor{result: emptyResult("Ana")}, false)

	_, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrPersistenceFailed, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "patient write was kept")

	// Non-atomic: the patient create from earlier in the run stands.
	assert.Len(t, store.patients.created, 1)
	assert.Empty(t, views.invalidated)
}

func TestAtomicModeRunsWritesInTransaction(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newService(store, &fakeExtractor{result: emptyResult("Ana")}, true)

	_, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.txCalls)
	assert.Len(t, store.patients.created, 1)
	assert.Len(t, store.consultations.created, 1)
}

func TestDuplicateEmailOnCreateDegradesToOverwrite(t *testing.T) {
	store := newFakeStore()
	stored := &model.Patient{Base: model.Base{ID: uuid.New()}}
	store.patients.byEmail["ana@example.com"] = stored
	store.patients.createErr = repository.ErrDuplicateEmail

	fields := model.PatientFields{NameSurnames: "Ana", Mail: strPtr("ana@example.com")}
	svc, _, _ := newService(store, &fakeExtractor{result: &model.ExtractionResult{Patient: fields}}, false)

	patientID, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, patientID)
	require.Len(t, store.patients.replaceCalls, 1)
}

func TestPatientCreateErrorSurfacesPersistenceFailed(t *testing.T) {
	store := newFakeStore()
	store.patients.createErr = errors.New("connection reset")
	svc, _, _ := newService(store, &fakeExtractor{result: emptyResult("Ana")}, false)

	_, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrPersistenceFailed, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "error creating patient")
	assert.Empty(t, store.consultations.created)
}

func TestConsultationRowKeepsExtractedFieldsAndNulls(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{result: &model.ExtractionResult{
		Patient: model.PatientFields{NameSurnames: "Ana"},
		Consultation: model.ConsultationFields{
			ObjetivoCalorias:      f64Ptr(1800),
			AlergiasIntolerancias: []string{"lactosa"},
		},
	}}
	svc, _, _ := newService(store, extractor, false)

	_, err := svc.ResolveAndSave(context.Background(), uuid.New(), "transcript", nil)
	require.NoError(t, err)

	require.Len(t, store.consultations.created, 1)
	c := store.consultations.created[0]
	require.NotNil(t, c.ObjetivoCalorias)
	assert.Equal(t, 1800.0, *c.ObjetivoCalorias)
	assert.Equal(t, []string{"lactosa"}, []string(c.AlergiasIntolerancias))
	assert.Nil(t, c.Medicacion)
	assert.Nil(t, c.HorasSueno)
	assert.False(t, c.CreatedAt.IsZero())
	assert.WithinDuration(t, time.Now(), c.CreatedAt, time.Minute)
}
