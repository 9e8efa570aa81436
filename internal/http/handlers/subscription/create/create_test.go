package create

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateOrReplace(ctx context.Context, owner string, plan models.Plan, referenceDate time.Time) (*models.Subscription, error) {
	args := m.Called(ctx, owner, plan, referenceDate)
	if sub := args.Get(0); sub != nil {
		return sub.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandler_ServeHTTP(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		Owner:     "alice",
		Plan:      models.PlanMonthly,
		StartDate: start,
		EndDate:   start.Add(models.PlanMonthly.Duration()),
		Active:    true,
	}

	tests := []struct {
		name       string
		body       string
		username   string
		mockSetup  func(m *MockService)
		wantStatus int
	}{
		{
			name:     "успешное оформление подписки",
			body:     `{"plan":"monthly","reference_date":"2024-01-01"}`,
			username: "alice",
			mockSetup: func(m *MockService) {
				m.On("CreateOrReplace", mock.Anything, "alice", models.PlanMonthly, start).
					Return(sub, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "некорректный JSON",
			body:       `{"plan":`,
			username:   "alice",
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "недопустимый план",
			body:       `{"plan":"weekly","reference_date":"2024-01-01"}`,
			username:   "alice",
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "некорректная опорная дата",
			body:       `{"plan":"monthly","reference_date":"01.01.2024"}`,
			username:   "alice",
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "пользователь не авторизован",
			body:       `{"plan":"monthly","reference_date":"2024-01-01"}`,
			username:   "",
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "хранилище недоступно",
			body:     `{"plan":"monthly","reference_date":"2024-01-01"}`,
			username: "alice",
			mockSetup: func(m *MockService) {
				m.On("CreateOrReplace", mock.Anything, "alice", models.PlanMonthly, start).
					Return(nil, models.ErrStorageUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.mockSetup(service)
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
			handler := New(logger, service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.username != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.User, tt.username)
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			service.AssertExpectations(t)

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Status string              `json:"status"`
					Data   models.Subscription `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, models.PlanMonthly, resp.Data.Plan)
				assert.True(t, resp.Data.Active)
			}
		})
	}
}
