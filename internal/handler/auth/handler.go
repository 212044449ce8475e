package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/internal/middleware"
	"github.com/nutriclinic/backoffice/internal/model"
	"github.com/nutriclinic/backoffice/internal/service/auth"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.CurrentOperator)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) CurrentOperator(c *gin.Context) {
	operatorID := middleware.OperatorID(c)
	if operatorID == uuid.Nil {
		httputil.RespondWithError(c, apperrors.Unauthenticated())
		return
	}

	operator, err := h.service.CurrentOperator(c.Request.Context(), operatorID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("operator", err))
		return
	}

	httputil.RespondWithSuccess(c, operator)
}
