// Package access определяет роль вызывающей стороны по общему секрету персонала.
package access

import (
	"context"
	"crypto/subtle"
	"strings"
)

// Role роль вызывающей стороны
type Role string

const (
	RoleGuest Role = "guest"
	RoleStaff Role = "staff"
)

// Caller вызывающая сторона запроса
type Caller struct {
	Role Role
}

// Guest вызывающая сторона без прав персонала
func Guest() Caller {
	return Caller{Role: RoleGuest}
}

// Staff вызывающая сторона с правами персонала
func Staff() Caller {
	return Caller{Role: RoleStaff}
}

// IsStaff returns true for staff callers
func (c Caller) IsStaff() bool {
	return c.Role == RoleStaff
}

// Gate сверяет токен с секретом, загруженным один раз при старте
type Gate struct {
	secret []byte
}

// NewGate создает Gate. Пустой секрет не авторизует никого.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(strings.TrimSpace(secret))}
}

// Enabled returns true if a staff secret is configured
func (g *Gate) Enabled() bool {
	return g != nil && len(g.secret) > 0
}

// Authorize возвращает RoleStaff только при точном совпадении токена (сравнение за постоянное время)
func (g *Gate) Authorize(token string) Caller {
	if !g.Enabled() || token == "" {
		return Guest()
	}
	if subtle.ConstantTimeCompare([]byte(token), g.secret) == 1 {
		return Staff()
	}
	return Guest()
}

type callerKey struct{}

// WithCaller сохраняет вызывающую сторону в контексте
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// FromContext возвращает вызывающую сторону из контекста, по умолчанию гость
func FromContext(ctx context.Context) Caller {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	if !ok {
		return Guest()
	}
	return caller
}
