package get_stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thesilo/reservations/internal/access"
	reservationsService "github.com/thesilo/reservations/internal/service/reservations"
	"github.com/thesilo/reservations/internal/service/reservations/models"
	"github.com/thesilo/reservations/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Stats(ctx context.Context, caller access.Caller) (*models.StatsResponse, error) {
	args := m.Called(ctx, caller)
	if resp := args.Get(0); resp != nil {
		return resp.(*models.StatsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func statsRequest(h *Handler, caller access.Caller) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req = req.WithContext(access.WithCaller(req.Context(), caller))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_Staff(t *testing.T) {
	svc := &mockService{}
	svc.On("Stats", mock.Anything, access.Staff()).
		Return(&models.StatsResponse{Total: 5, Today: 1, Upcoming: 2, Pending: 2, Confirmed: 1, Cancelled: 1}, nil)

	rec := statsRequest(NewHandler(svc, logger.NewNop()), access.Staff())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":5,"today":1,"upcoming":2,"pending":2,"confirmed":1,"cancelled":1}`, rec.Body.String())
}

func TestHandler_Errors(t *testing.T) {
	svc := &mockService{}
	svc.On("Stats", mock.Anything, access.Guest()).Return(nil, reservationsService.ErrUnauthorized)
	svc.On("Stats", mock.Anything, access.Staff()).Return(nil, reservationsService.ErrInternal)

	h := NewHandler(svc, logger.NewNop())

	assert.Equal(t, http.StatusUnauthorized, statsRequest(h, access.Guest()).Code)
	assert.Equal(t, http.StatusInternalServerError, statsRequest(h, access.Staff()).Code)
}
