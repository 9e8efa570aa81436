package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ListExpiringWithin(ctx context.Context, days int, referenceDate time.Time) ([]models.Subscription, error) {
	args := m.Called(ctx, days, referenceDate)
	if subs := args.Get(0); subs != nil {
		return subs.([]models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) List(ctx context.Context) ([]models.Identity, error) {
	args := m.Called(ctx)
	if identities := args.Get(0); identities != nil {
		return identities.([]models.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(ledger Ledger, directory Directory) *SchedulerService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewSchedulerService(ledger, directory, logger)
}

func strptr(s string) *string { return &s }

func TestSchedulerService_ContactsByUsername(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("List", mock.Anything).Return([]models.Identity{
		{Username: "alice", ContactAddress: strptr("alice@example.com")},
		{Username: "bob"},
		{Username: "carol", ContactAddress: strptr("carol@example.com")},
	}, nil)
	svc := newTestService(new(MockLedger), directory)

	contacts, err := svc.contactsByUsername(context.Background())
	require.NoError(t, err)

	// Пользователи без контактного адреса в карту не попадают
	assert.Equal(t, map[string]string{
		"alice": "alice@example.com",
		"carol": "carol@example.com",
	}, contacts)
}

func TestSchedulerService_ContactsByUsername_DirectoryError(t *testing.T) {
	directory := new(MockDirectory)
	directory.On("List", mock.Anything).Return(nil, models.ErrStorageUnavailable)
	svc := newTestService(new(MockLedger), directory)

	_, err := svc.contactsByUsername(context.Background())
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestSchedulerService_Run_LedgerError(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("ListExpiringWithin", mock.Anything, reminderWindowDays, mock.AnythingOfType("time.Time")).
		Return(nil, models.ErrStorageUnavailable)
	svc := newTestService(ledger, new(MockDirectory))

	// Ошибка реестра логируется, цикл не падает и до публикации не доходит
	svc.runFindExpiringSubscriptions(context.Background(), nil)
	ledger.AssertExpectations(t)
}

func TestSchedulerService_Run_NoExpiringSubscriptions(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("ListExpiringWithin", mock.Anything, reminderWindowDays, mock.AnythingOfType("time.Time")).
		Return([]models.Subscription{}, nil)
	directory := new(MockDirectory)
	svc := newTestService(ledger, directory)

	svc.runFindExpiringSubscriptions(context.Background(), nil)
	ledger.AssertExpectations(t)
	// Справочник не читается, если напоминать не о чем
	directory.AssertNotCalled(t, "List", mock.Anything)
}
