package verify

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Verify(ctx context.Context, username, code string) error {
	args := m.Called(ctx, username, code)
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
			name: "успешное подтверждение",
			body: `{"username":"alice","code":"123456"}`,
			mockSetup: func(m *MockService) {
				m.On("Verify", mock.Anything, "alice", "123456").Return(nil)
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
			name:       "код неверной длины",
			body:       `{"username":"alice","code":"123"}`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "код с буквами",
			body:       `{"username":"alice","code":"12a456"}`,
			mockSetup:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "неверный код",
			body: `{"username":"alice","code":"654321"}`,
			mockSetup: func(m *MockService) {
				m.On("Verify", mock.Anything, "alice", "654321").Return(models.ErrInvalidCode)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "хранилище недоступно",
			body: `{"username":"alice","code":"123456"}`,
			mockSetup: func(m *MockService) {
				m.On("Verify", mock.Anything, "alice", "123456").Return(models.ErrStorageUnavailable)
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

			req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			service.AssertExpectations(t)
		})
	}
}
