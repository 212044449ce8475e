package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutriclinic/backoffice/pkg/auth"
	apperrors "github.com/nutriclinic/backoffice/pkg/errors"
	"github.com/nutriclinic/backoffice/pkg/httputil"
)

const ContextOperatorID = "operator_id"

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate verifies the bearer token and stores the operator id in
// the request context. Every write downstream is attributed to it.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthenticated())
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthenticated())
			c.Abort()
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthenticated())
			c.Abort()
			return
		}

		c.Set(ContextOperatorID, claims.OperatorID)
		c.Next()
	}
}

// OperatorID reads the authenticated operator from the context. Returns
// uuid.Nil when the request never passed Authenticate.
func OperatorID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextOperatorID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
