package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"telehealth-portal/internal/delivery/dto"
	"telehealth-portal/pkg/jwt"
	"telehealth-portal/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	RoleIDKey  contextKey = "role_id"
	TokenIDKey contextKey = "token_id"
)

// AccountSource reports an account's current state; nil means the account
// no longer exists.
type AccountSource interface {
	AccountStatus(ctx context.Context, userID uuid.UUID) (*dto.AccountStatus, error)
}

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	sessions   redis.Cmdable
	accounts   AccountSource
	log        *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, sessions redis.Cmdable, accounts AccountSource, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
		accounts:   accounts,
		log:        log,
	}
}

// Authenticate accepts a live access token for an active account and puts
// the caller's identity in the request context. The role stored in context
// is the account's current role, not the one in the token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" || strings.Contains(tokenString, " ") {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		tokenKey := fmt.Sprintf("access_token:%s:%s", claims.UserID.String(), claims.TokenID)
		exists, err := m.sessions.Exists(r.Context(), tokenKey).Result()
		if err != nil {
			m.log.Warnf("Failed to check session %s: %+v", tokenKey, err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if exists == 0 {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		account, err := m.accounts.AccountStatus(r.Context(), claims.UserID)
		if err != nil {
			m.log.Warnf("Failed to load account %s: %+v", claims.UserID, err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if account == nil {
			response.Unauthorized(w, "Account no longer exists")
			return
		}
		if !account.Active {
			response.Forbidden(w, "Account is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, RoleIDKey, account.RoleID)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	roleID, ok := ctx.Value(RoleIDKey).(int)
	return roleID, ok
}
