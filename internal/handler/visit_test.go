package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/visit"
)

// MockVisitService mocks the visit.Service interface
type MockVisitService struct {
	mock.Mock
}

func (m *MockVisitService) Log(ctx context.Context, req visit.Request) (*domain.VisitResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VisitResult), args.Error(1)
}

func (m *MockVisitService) Status(ctx context.Context, playerID, spotID string) (*domain.LogStatus, error) {
	args := m.Called(ctx, playerID, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LogStatus), args.Error(1)
}

func (m *MockVisitService) PlayerHistory(ctx context.Context, playerID string, limit int) ([]domain.Visit, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Visit), args.Error(1)
}

func (m *MockVisitService) SpotHistory(ctx context.Context, spotID string, limit int) ([]domain.Visit, error) {
	args := m.Called(ctx, spotID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Visit), args.Error(1)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandleLogVisit(t *testing.T) {
	t.Run("accepted visit returns result", func(t *testing.T) {
		svc := &MockVisitService{}
		svc.On("Log", mock.Anything, mock.MatchedBy(func(req visit.Request) bool {
			return req.PlayerID == "p1" && req.SpotID == "s1" && !req.Auto
		})).Return(&domain.VisitResult{
			XPGained:    16,
			ClaimPoints: 5,
			TotalXP:     16,
			Level:       1,
		}, nil)

		w := postJSON(t, HandleLogVisit(svc), "/api/v1/visit", LogVisitRequest{
			PlayerID: "p1", SpotID: "s1", Latitude: 52.52, Longitude: 13.405,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"xp_gained":16`)
		svc.AssertExpectations(t)
	})

	t.Run("cooldown rejection maps to 429", func(t *testing.T) {
		svc := &MockVisitService{}
		svc.On("Log", mock.Anything, mock.Anything).
			Return(nil, domain.ErrCooldownActive{Remaining: 90 * time.Second})

		w := postJSON(t, HandleLogVisit(svc), "/api/v1/visit", LogVisitRequest{
			PlayerID: "p1", SpotID: "s1", Latitude: 52.52, Longitude: 13.405,
		})

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "cooldown active")
	})

	t.Run("out of range rejection maps to 409", func(t *testing.T) {
		svc := &MockVisitService{}
		svc.On("Log", mock.Anything, mock.Anything).
			Return(nil, domain.ErrOutOfRange{Distance: 250, Max: 20})

		w := postJSON(t, HandleLogVisit(svc), "/api/v1/visit", LogVisitRequest{
			PlayerID: "p1", SpotID: "s1", Latitude: 52.52, Longitude: 13.405,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "too far away")
	})

	t.Run("missing player id fails validation", func(t *testing.T) {
		svc := &MockVisitService{}

		w := postJSON(t, HandleLogVisit(svc), "/api/v1/visit", LogVisitRequest{
			SpotID: "s1", Latitude: 52.52, Longitude: 13.405,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Log")
	})

	t.Run("latitude outside range fails validation", func(t *testing.T) {
		svc := &MockVisitService{}

		w := postJSON(t, HandleLogVisit(svc), "/api/v1/visit", LogVisitRequest{
			PlayerID: "p1", SpotID: "s1", Latitude: 91, Longitude: 0,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Log")
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &MockVisitService{}
		req := httptest.NewRequest("POST", "/api/v1/visit", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()

		HandleLogVisit(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleVisitStatus(t *testing.T) {
	t.Run("reports cooldown state", func(t *testing.T) {
		svc := &MockVisitService{}
		svc.On("Status", mock.Anything, "p1", "s1").Return(&domain.LogStatus{
			CanAuto:               false,
			AutoCooldownRemaining: 120,
			CanManual:             true,
			LastLogType:           domain.LogTypeAuto,
		}, nil)

		req := httptest.NewRequest("GET", "/api/v1/visit/status?player_id=p1&spot_id=s1", nil)
		w := httptest.NewRecorder()
		HandleVisitStatus(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"auto_cooldown_remaining_s":120`)
		assert.Contains(t, w.Body.String(), `"can_manual":true`)
	})

	t.Run("missing spot id", func(t *testing.T) {
		svc := &MockVisitService{}
		req := httptest.NewRequest("GET", "/api/v1/visit/status?player_id=p1", nil)
		w := httptest.NewRecorder()
		HandleVisitStatus(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandlePlayerVisits(t *testing.T) {
	t.Run("passes limit through", func(t *testing.T) {
		svc := &MockVisitService{}
		svc.On("PlayerHistory", mock.Anything, "p1", 5).Return([]domain.Visit{
			{ID: "v1", PlayerID: "p1", SpotID: "s1", XPGained: 16},
		}, nil)

		req := httptest.NewRequest("GET", "/api/v1/visit/history?player_id=p1&limit=5", nil)
		w := httptest.NewRecorder()
		HandlePlayerVisits(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"v1"`)
		svc.AssertExpectations(t)
	})

	t.Run("rejects negative limit", func(t *testing.T) {
		svc := &MockVisitService{}
		req := httptest.NewRequest("GET", "/api/v1/visit/history?player_id=p1&limit=-1", nil)
		w := httptest.NewRecorder()
		HandlePlayerVisits(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidLimit)
	})
}
