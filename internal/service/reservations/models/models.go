package models

import (
	"strings"
	"time"

	"github.com/thesilo/reservations/internal/domain"
)

// Request модели

// LookupRequest параметры поиска бронирований.
// Гостю нужны Email или Code, остальные фильтры доступны только персоналу.
type LookupRequest struct {
	Email  *string
	Code   *string
	Status *string
	From   *string // YYYY-MM-DD
	To     *string // YYYY-MM-DD
	Search *string
}

// Identity данные, которыми гость подтверждает владение бронированием
type Identity struct {
	Email *string
	Code  *string
}

// IsEmpty returns true if neither email nor code is supplied
func (i Identity) IsEmpty() bool {
	return normalizeEmail(i.Email) == "" && normalizeCode(i.Code) == ""
}

// Matches проверяет, что email (без учета регистра) или код совпадают с бронированием
func (i Identity) Matches(r *domain.Reservation) bool {
	if code := normalizeCode(i.Code); code != "" && code == r.ConfirmationCode {
		return true
	}
	if email := normalizeEmail(i.Email); email != "" && email == strings.ToLower(r.GuestEmail) {
		return true
	}
	return false
}

// NormalizedEmail email в нижнем регистре без пробелов
func (i Identity) NormalizedEmail() string {
	return normalizeEmail(i.Email)
}

// NormalizedCode код в верхнем регистре без пробелов
func (i Identity) NormalizedCode() string {
	return normalizeCode(i.Code)
}

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	Identity
	Reason *string
}

// UpdateStatusRequest запрос на изменение статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID               string `json:"id"`
	ConfirmationCode string `json:"confirmation_code"`

	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`

	PartySize       int    `json:"party_size"`
	ReservationDate string `json:"reservation_date"` // "2026-10-20"
	ReservationTime string `json:"reservation_time"` // "19:00"

	DietaryNotes    *string `json:"dietary_notes"`
	SpecialRequests *string `json:"special_requests"`
	Occasion        *string `json:"occasion"`

	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`
	CancelledAt        *string `json:"cancelled_at"` // ISO 8601

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// StatsResponse счетчики для панели персонала
type StatsResponse struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		ConfirmationCode:   r.ConfirmationCode,
		GuestName:          r.GuestName,
		GuestEmail:         r.GuestEmail,
		GuestPhone:         r.GuestPhone,
		PartySize:          r.PartySize,
		ReservationDate:    r.ReservationDate.Format(domain.DateFormat),
		ReservationTime:    r.ReservationTime.String(),
		DietaryNotes:       r.DietaryNotes,
		SpecialRequests:    r.SpecialRequests,
		Occasion:           r.Occasion,
		Status:             string(r.Status),
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.CancelledAt != nil {
		cancelledStr := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, reservation := range reservations {
		if r := FromDomainReservation(reservation); r != nil {
			resp.Reservations = append(resp.Reservations, *r)
		}
	}

	return resp
}

func normalizeEmail(email *string) string {
	if email == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*email))
}

func normalizeCode(code *string) string {
	if code == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(*code))
}
