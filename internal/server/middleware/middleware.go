// Package middleware содержит HTTP middleware dev-бэкенда
package middleware

import (
	"context"
	"net/http"
)

// Middleware оборачивает http.Handler
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware sees the request first
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a copy of ctx carrying the authenticated user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID извлекает ID пользователя, положенный Auth
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
