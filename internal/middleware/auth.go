package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/izdhan/examcenter/config"
	"github.com/izdhan/examcenter/internal/dto"
	"github.com/izdhan/examcenter/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	ctxUserIDKey = "userID"
	ctxRoleKey   = "role"
)

type identityClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAuth parses the bearer token and injects the caller's identity into
// the request context. Token issuance lives in the auth service; this only
// verifies and extracts.
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &identityClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			log.Warn().Err(err).Msg("Rejected request with invalid token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid token"})
			return
		}

		ctx.Set(ctxUserIDKey, claims.UserID)
		ctx.Set(ctxRoleKey, model.Role(claims.Role))
		ctx.Next()
	}
}

// Identity returns the authenticated caller stored by RequireAuth.
func Identity(ctx *gin.Context) (uint, model.Role) {
	userID, _ := ctx.Get(ctxUserIDKey)
	role, _ := ctx.Get(ctxRoleKey)
	id, _ := userID.(uint)
	r, _ := role.(model.Role)
	return id, r
}
