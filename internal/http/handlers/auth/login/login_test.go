package login

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, username, rawPassword string) (string, string, error) {
	args := m.Called(ctx, username, rawPassword)
	return args.String(0), args.String(1), args.Error(2)
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(m *MockService)
		wantStatus int
		wantToken  string
	}{
		{
			name: "успешный вход",
			body: `{"username":"alice","password":"secret123"}`,
			mockSetup: func(m *MockService) {
				m.On("Login", mock.Anything, "alice", "secret123").
					Return("jwt-token", models.RoleUser, nil)
			},
			wantStatus: http.StatusOK,
			wantToken:  "jwt-token",
		},
		{
			name:       "некорректный JSON",
			body:       `{"username":`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "пустой пароль",
			body:       `{"username":"alice","password":""}`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "неверные учетные данные",
			body: `{"username":"alice","password":"wrongpass"}`,
			mockSetup: func(m *MockService) {
				m.On("Login", mock.Anything, "alice", "wrongpass").
					Return("", "", models.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "учетная запись не подтверждена",
			body: `{"username":"alice","password":"secret123"}`,
			mockSetup: func(m *MockService) {
				m.On("Login", mock.Anything, "alice", "secret123").
					Return("", "", models.ErrPendingVerification)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "хранилище недоступно",
			body: `{"username":"alice","password":"secret123"}`,
			mockSetup: func(m *MockService) {
				m.On("Login", mock.Anything, "alice", "secret123").
					Return("", "", models.ErrStorageUnavailable)
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

			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			service.AssertExpectations(t)

			if tt.wantToken != "" {
				var resp struct {
					Status string            `json:"status"`
					Data   map[string]string `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantToken, resp.Data["token"])
			}
		})
	}
}
