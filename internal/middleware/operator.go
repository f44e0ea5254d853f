package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/response"
)

// OperatorSource loads operator accounts for basic-auth checks.
type OperatorSource interface {
	GetByEmail(ctx context.Context, email string) (*model.Operator, error)
}

// ContextKeyOperator is the Gin context key for the authenticated operator.
const ContextKeyOperator = "operator"

// RequireOperator guards operator endpoints with HTTP basic auth checked
// against stored bcrypt hashes.
func RequireOperator(operators OperatorSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="operator"`)
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		op, err := operators.GetByEmail(c.Request.Context(), email)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrForbidden)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrForbidden)
			return
		}

		c.Set(ContextKeyOperator, op)
		c.Next()
	}
}
