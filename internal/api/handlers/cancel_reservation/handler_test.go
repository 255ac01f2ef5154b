package cancel_reservation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thesilo/reservations/internal/access"
	reservationsService "github.com/thesilo/reservations/internal/service/reservations"
	"github.com/thesilo/reservations/internal/service/reservations/models"
	"github.com/thesilo/reservations/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Cancel(ctx context.Context, caller access.Caller, id string, req *models.CancelRequest) (*models.ReservationResponse, error) {
	args := m.Called(ctx, caller, id, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*models.ReservationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func cancelRequest(h *Handler, target string, body io.Reader) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/reservations/{id}", h.Handle).Methods(http.MethodDelete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, target, body))
	return rec
}

func TestHandler_GuestCancelsWithQueryCode(t *testing.T) {
	svc := &mockService{}
	svc.On("Cancel", mock.Anything, access.Guest(), "r1", mock.MatchedBy(func(req *models.CancelRequest) bool {
		return req.NormalizedCode() == "SILOABC" && req.Reason == nil
	})).Return(&models.ReservationResponse{ID: "r1", Status: "cancelled"}, nil)

	rec := cancelRequest(NewHandler(svc, logger.NewNop()), "/api/v1/reservations/r1?code=siloabc", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Reservation cancelled successfully", resp["message"])
	assert.Equal(t, "cancelled", resp["reservation"].(map[string]interface{})["status"])
	svc.AssertExpectations(t)
}

func TestHandler_BodyIdentityAndReason(t *testing.T) {
	svc := &mockService{}
	svc.On("Cancel", mock.Anything, access.Guest(), "r1", mock.MatchedBy(func(req *models.CancelRequest) bool {
		return req.NormalizedEmail() == "jane@x.com" && req.Reason != nil && *req.Reason == "plans changed"
	})).Return(&models.ReservationResponse{ID: "r1", Status: "cancelled"}, nil)

	body := strings.NewReader(`{"email":"jane@x.com","reason":"plans changed"}`)
	rec := cancelRequest(NewHandler(svc, logger.NewNop()), "/api/v1/reservations/r1", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCancelReservationRequest_QueryTakesPrecedence(t *testing.T) {
	bodyEmail, queryEmail := "body@x.com", "query@x.com"
	req := (&CancelReservationRequest{Email: &bodyEmail}).ToServiceRequest(&queryEmail, nil)

	assert.Equal(t, "query@x.com", req.NormalizedEmail())
	assert.Nil(t, req.Code)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing identity", reservationsService.ErrMissingQuery, http.StatusBadRequest},
		{"reason too long", reservationsService.ErrInvalidInput, http.StatusBadRequest},
		{"not found", reservationsService.ErrReservationNotFound, http.StatusNotFound},
		{"mismatch", reservationsService.ErrAccessDenied, http.StatusForbidden},
		{"terminal", reservationsService.ErrTerminalStatus, http.StatusConflict},
		{"store", reservationsService.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Cancel", mock.Anything, mock.Anything, "r1", mock.Anything).Return(nil, tt.err)

			rec := cancelRequest(NewHandler(svc, logger.NewNop()), "/api/v1/reservations/r1?email=jane@x.com", nil)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandler_InvalidBody(t *testing.T) {
	svc := &mockService{}

	rec := cancelRequest(NewHandler(svc, logger.NewNop()), "/api/v1/reservations/r1", strings.NewReader("{"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
