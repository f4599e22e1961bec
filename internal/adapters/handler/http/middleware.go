package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

type contextKey string

const callerKey contextKey = "caller"

// Auth parses the access token cookie and loads the caller's identity and
// role into the request context. Requests without a valid token get 401.
func Auth(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("access_token")
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing access token"})
				return
			}

			caller, err := parseAccessToken(cookie.Value, jwtSecret)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid access token"})
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTeacher rejects non-teacher callers before the handler runs.
func RequireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing user context"})
			return
		}
		if caller.Role != domain.RoleTeacher {
			writeServiceError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func CallerFromContext(ctx context.Context) (ports.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(ports.Caller)
	return caller, ok
}

func parseAccessToken(raw string, secret []byte) (ports.Caller, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ports.Caller{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ports.Caller{}, fmt.Errorf("unexpected claims type")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ports.Caller{}, fmt.Errorf("missing subject: %w", err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ports.Caller{}, fmt.Errorf("invalid subject: %w", err)
	}

	role, _ := claims["role"].(string)

	return ports.Caller{
		ID:   userID,
		Role: domain.Role(role),
	}, nil
}
