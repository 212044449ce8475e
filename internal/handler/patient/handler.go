package patient

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/internal/cache"
	"github.com/nutriclinic/backoffice/internal/middleware"
	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/service/patient"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PATCH("/:id", h.UpdatePatient)
	}

	// The diets screen renders the same patient list through its own
	// cached view.
	r.GET("/diets", h.ListDiets)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	created, err := h.service.CreatePatient(c.Request.Context(), middleware.OperatorID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	found, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) ListPatients(c *gin.Context) {
	h.list(c, cache.ViewDashboardPatients)
}

func (h *Handler) ListDiets(c *gin.Context) {
	h.list(c, cache.ViewDietsPatients)
}

func (h *Handler) list(c *gin.Context, view string) {
	patients, err := h.service.ListPatients(c.Request.Context(), view)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}
