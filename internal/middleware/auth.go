package middleware

import (
	"strings"

	"rentproof_backend/internal/auth"
	"rentproof_backend/internal/logger"
	"rentproof_backend/pkg/apperrors"
	"rentproof_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware - проверка JWT; subject токена становится partyID запроса.
// Browsers cannot set headers on websocket upgrades, so the token may also come
// in the access_token query parameter.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenStr = strings.TrimPrefix(header, "Bearer ")
		} else if q := c.Query("access_token"); q != "" {
			tokenStr = q
		}
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		partyID, err := verifier.ParseToken(tokenStr)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Rejected token", "error", err.Error(), "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(contextkeys.PartyIDKey, partyID)
		c.Request = c.Request.WithContext(logger.WithPartyID(c.Request.Context(), partyID))
		c.Next()
	}
}

