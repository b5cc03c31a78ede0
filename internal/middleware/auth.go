package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/white/sales-tracker/internal/utils"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "email"
	NameKey   contextKey = "name"
	RoleKey   contextKey = "role"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// JWTAuth is a middleware that validates JWT access tokens and places the
// actor identity in the request context.
func JWTAuth(jwtService *utils.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "MISSING_TOKEN",
						Message: "Authorization header is required",
					},
				})
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "INVALID_TOKEN_FORMAT",
						Message: "Authorization header must be in format: Bearer <token>",
					},
				})
				return
			}

			claims, err := jwtService.ValidateAccessToken(parts[1])
			if err != nil {
				respondWithJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error: ErrorDetail{
						Code:    "INVALID_TOKEN",
						Message: "Invalid or expired access token",
					},
				})
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			ctx = context.WithValue(ctx, NameKey, claims.Name)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user's id from the request context.
func GetUserID(r *http.Request) string {
	if v, ok := r.Context().Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// GetUserName returns the authenticated user's name from the request context.
func GetUserName(r *http.Request) string {
	if v, ok := r.Context().Value(NameKey).(string); ok {
		return v
	}
	return ""
}

// GetUserRole returns the authenticated user's role from the request context.
func GetUserRole(r *http.Request) string {
	if v, ok := r.Context().Value(RoleKey).(string); ok {
		return v
	}
	return ""
}
