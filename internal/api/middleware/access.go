// Package middleware HTTP middleware сервиса: определение роли вызывающего, метрики, ограничение частоты запросов.
package middleware

import (
	"net/http"
	"strings"

	"github.com/thesilo/reservations/internal/access"
)

const (
	// HeaderAdminSecret заголовок с секретом персонала
	HeaderAdminSecret = "X-Admin-Secret"

	bearerPrefix = "Bearer "
)

// Access определяет роль вызывающего по секрету персонала и кладет ее в контекст запроса.
// Запрос без секрета или с неверным секретом обрабатывается как гостевой.
func Access(gate *access.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := gate.Authorize(secretFromRequest(r))
			next.ServeHTTP(w, r.WithContext(access.WithCaller(r.Context(), caller)))
		})
	}
}

func secretFromRequest(r *http.Request) string {
	if secret := r.Header.Get(HeaderAdminSecret); secret != "" {
		return secret
	}

	auth := r.Header.Get("Authorization")
	if len(auth) > len(bearerPrefix) && strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):])
	}

	return ""
}
