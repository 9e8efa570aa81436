package logout

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Logout(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		mockSetup  func(m *MockService)
		wantStatus int
	}{
		{
			name:     "успешный выход",
			username: "alice",
			mockSetup: func(m *MockService) {
				m.On("Logout", mock.Anything, "alice").Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "пользователь не авторизован",
			username:   "",
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "сбой реестра сессий",
			username: "alice",
			mockSetup: func(m *MockService) {
				m.On("Logout", mock.Anything, "alice").Return(assert.AnError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			tt.mockSetup(service)
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
			handler := New(logger, service)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
			if tt.username != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.User, tt.username)
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			service.AssertExpectations(t)
		})
	}
}
