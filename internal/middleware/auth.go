package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
)

// RequireRoles authenticates the bearer token and admits callers whose role
// is in allowed. The identity is stored under types.ContextUserKey.
func RequireRoles(tokens *auth.TokenIssuer, allowed ...models.Role) gin.HandlerFunc {
	if len(allowed) == 0 {
		allowed = models.AllRoles
	}

	return func(ctx *gin.Context) {
		identity, err := tokens.Authorize(ctx.GetHeader("Authorization"), allowed)
		if err != nil {
			kind := apperr.KindOf(err)
			slog.Debug("Request rejected by guard", "path", ctx.FullPath(), "kind", kind.String())
			ctx.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": apperr.PublicMessage(err)})
			return
		}

		ctx.Set(types.ContextUserKey, identity)
		ctx.Next()
	}
}
