package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/agentnet/ant-orchestrator/internal/http/response"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// ContextKeySubject holds the verified token subject on the gin context.
const ContextKeySubject = "auth_subject"

var errMissingToken = errors.New("missing or invalid token")

// AuthMiddleware verifies HS256 bearer tokens against a shared secret.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	parser *jwt.Parser
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthMiddleware{
		log:    log.With("Middleware", "AuthMiddleware"),
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, errMissingToken)
			return
		}
		claims := jwt.RegisteredClaims{}
		_, err := am.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
			return am.secret, nil
		})
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, errMissingToken)
			return
		}
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
