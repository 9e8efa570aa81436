package register

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

func (m *MockService) Register(ctx context.Context, username, rawPassword, role string, contactAddress *string) error {
	args := m.Called(ctx, username, rawPassword, role, contactAddress)
	return args.Error(0)
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(m *MockService)
		wantStatus int
	}{
		{
			name: "успешная регистрация без контактного адреса",
			body: `{"username":"alice","password":"secret123"}`,
			mockSetup: func(m *MockService) {
				m.On("Register", mock.Anything, "alice", "secret123", models.RoleUser, (*string)(nil)).
					Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "успешная регистрация с контактным адресом",
			body: `{"username":"bob","password":"secret123","contact_address":"bob@example.com"}`,
			mockSetup: func(m *MockService) {
				m.On("Register", mock.Anything, "bob", "secret123", models.RoleUser, mock.AnythingOfType("*string")).
					Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "некорректный JSON",
			body:       `{"username":`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "короткое имя пользователя",
			body:       `{"username":"al","password":"secret123"}`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "короткий пароль",
			body:       `{"username":"alice","password":"123"}`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "недопустимая роль",
			body:       `{"username":"alice","password":"secret123","role":"superuser"}`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "имя пользователя занято",
			body: `{"username":"alice","password":"secret123"}`,
			mockSetup: func(m *MockService) {
				m.On("Register", mock.Anything, "alice", "secret123", models.RoleUser, (*string)(nil)).
					Return(models.ErrAlreadyExists)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "хранилище недоступно",
			body: `{"username":"alice","password":"secret123"}`,
			mockSetup: func(m *MockService) {
				m.On("Register", mock.Anything, "alice", "secret123", models.RoleUser, (*string)(nil)).
					Return(models.ErrStorageUnavailable)
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

			req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			service.AssertExpectations(t)

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Status string         `json:"status"`
					Data   map[string]any `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "OK", resp.Status)
			}
		})
	}
}
