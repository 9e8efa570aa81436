package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/memstore"
)

func newTestService(store *memstore.Store) *LedgerService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewLedgerService(store, logger)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLedgerService_CreateOrReplace_Durations(t *testing.T) {
	tests := []struct {
		name     string
		plan     models.Plan
		wantDays int
	}{
		{
			name:     "месячный план дает ровно 30 дней",
			plan:     models.PlanMonthly,
			wantDays: 30,
		},
		{
			name:     "годовой план дает ровно 365 дней",
			plan:     models.PlanYearly,
			wantDays: 365,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(memstore.New())
			ref := date(2024, 1, 1)

			sub, err := svc.CreateOrReplace(context.Background(), "alice", tt.plan, ref)
			require.NoError(t, err)

			assert.Equal(t, ref, sub.StartDate)
			assert.Equal(t, float64(tt.wantDays), sub.EndDate.Sub(sub.StartDate).Hours()/24)
			assert.True(t, sub.Active)
			assert.True(t, sub.EndDate.After(sub.StartDate))
		})
	}
}

func TestLedgerService_CreateOrReplace_ReplacesExisting(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateOrReplace(ctx, "alice", models.PlanMonthly, date(2024, 1, 1))
	require.NoError(t, err)
	_, err = svc.CreateOrReplace(ctx, "alice", models.PlanYearly, date(2024, 2, 1))
	require.NoError(t, err)

	// Запись замещается, дубликат не создается
	subs, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, models.PlanYearly, subs[0].Plan)
	assert.Equal(t, date(2024, 2, 1), subs[0].StartDate)
}

func TestLedgerService_CreateOrReplace_UnknownPlan(t *testing.T) {
	svc := newTestService(memstore.New())

	_, err := svc.CreateOrReplace(context.Background(), "alice", models.Plan("weekly"), date(2024, 1, 1))
	require.Error(t, err)
}

func TestLedgerService_RenewOrChangePlan(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, svc *LedgerService)
		owner   string
		plan    models.Plan
		ref     time.Time
		wantErr error
	}{
		{
			name: "успешное продление с сменой плана",
			setup: func(t *testing.T, svc *LedgerService) {
				_, err := svc.CreateOrReplace(context.Background(), "alice", models.PlanMonthly, date(2024, 1, 1))
				require.NoError(t, err)
			},
			owner: "alice",
			plan:  models.PlanYearly,
			ref:   date(2024, 1, 15),
		},
		{
			name:    "продление без существующей подписки дает ошибку",
			setup:   func(_ *testing.T, _ *LedgerService) {},
			owner:   "bob",
			plan:    models.PlanMonthly,
			ref:     date(2024, 1, 15),
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(memstore.New())
			tt.setup(t, svc)

			sub, err := svc.RenewOrChangePlan(context.Background(), tt.owner, tt.plan, tt.ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.plan, sub.Plan)
			assert.Equal(t, tt.ref, sub.StartDate)
			assert.Equal(t, tt.ref.Add(tt.plan.Duration()), sub.EndDate)
			assert.True(t, sub.Active)
		})
	}
}

func TestLedgerService_Cancel_FreezesEndDateAndIdempotent(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()

	sub, err := svc.CreateOrReplace(ctx, "alice", models.PlanMonthly, date(2024, 1, 1))
	require.NoError(t, err)
	wantEnd := sub.EndDate
	assert.Equal(t, date(2024, 1, 31), wantEnd)

	require.NoError(t, svc.Cancel(ctx, "alice"))
	require.NoError(t, svc.Cancel(ctx, "alice"))

	// Повторная отмена дает тот же результат: неактивна, дата заморожена
	subs, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Active)
	assert.Equal(t, wantEnd, subs[0].EndDate)
}

func TestLedgerService_Cancel_NotFound(t *testing.T) {
	svc := newTestService(memstore.New())

	err := svc.Cancel(context.Background(), "ghost")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestLedgerService_Status_LifecycleScenario(t *testing.T) {
	svc := newTestService(memstore.New())
	ctx := context.Background()

	sub, err := svc.CreateOrReplace(ctx, "alice", models.PlanMonthly, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1), sub.StartDate)
	assert.Equal(t, date(2024, 1, 31), sub.EndDate)
	assert.True(t, sub.Active)

	require.NoError(t, svc.Cancel(ctx, "alice"))

	view, err := svc.Status(ctx, "alice", date(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 31), view.EndDate)
	assert.False(t, view.Active)
	assert.True(t, view.IsExpired)

	// На дату окончания подписка еще не истекла
	view, err = svc.Status(ctx, "alice", date(2024, 1, 31))
	require.NoError(t, err)
	assert.False(t, view.IsExpired)
}

func TestLedgerService_Status_NotFound(t *testing.T) {
	svc := newTestService(memstore.New())

	_, err := svc.Status(context.Background(), "ghost", date(2024, 1, 1))
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestLedgerService_ListExpiringWithin(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateOrReplace(ctx, "alice", models.PlanMonthly, date(2024, 1, 1))
	require.NoError(t, err)
	require.NoError(t, store.SaveLedger(ctx, []models.Subscription{
		{Owner: "alice", Plan: models.PlanMonthly, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 31), Active: true},
		{Owner: "bob", Plan: models.PlanYearly, StartDate: date(2024, 1, 1), EndDate: date(2024, 3, 1), Active: true},
		{Owner: "carol", Plan: models.PlanMonthly, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 28), Active: false},
	}))

	got, err := svc.ListExpiringWithin(ctx, 7, date(2024, 1, 25))
	require.NoError(t, err)

	// Только alice: bob истекает позже окна, carol неактивна
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Owner)
}

func TestLedgerService_DeleteForOwner_Idempotent(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateOrReplace(ctx, "alice", models.PlanMonthly, date(2024, 1, 1))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteForOwner(ctx, "alice"))
	// Повторное удаление и удаление несуществующего владельца безвредны
	require.NoError(t, svc.DeleteForOwner(ctx, "alice"))
	require.NoError(t, svc.DeleteForOwner(ctx, "ghost"))

	subs, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestLedgerService_TransactionLog_AppendsOnEveryMutation(t *testing.T) {
	svc := newTestService(memstore.New())
	ctx := context.Background()

	_, err := svc.CreateOrReplace(ctx, "alice", models.PlanMonthly, date(2024, 1, 1))
	require.NoError(t, err)
	_, err = svc.RenewOrChangePlan(ctx, "alice", models.PlanYearly, date(2024, 1, 15))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, "alice"))
	require.NoError(t, svc.DeleteForOwner(ctx, "alice"))

	entries, err := svc.TransactionLog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	actions := []string{entries[0].Action, entries[1].Action, entries[2].Action, entries[3].Action}
	assert.Equal(t, []string{models.ActionCreate, models.ActionRenew, models.ActionCancel, models.ActionDelete}, actions)
	// Идентификаторы монотонно растут
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].ID, entries[i-1].ID)
	}
}

func TestLedgerService_Stats(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, store.SaveLedger(ctx, []models.Subscription{
		{Owner: "alice", Plan: models.PlanMonthly, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 31), Active: true},
		{Owner: "bob", Plan: models.PlanYearly, StartDate: date(2023, 1, 1), EndDate: date(2024, 1, 1), Active: true},
		{Owner: "carol", Plan: models.PlanMonthly, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 31), Active: false},
	}))

	stats, err := svc.Stats(ctx, date(2024, 1, 15))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 2, stats.ByPlan[models.PlanMonthly])
	assert.Equal(t, 1, stats.ByPlan[models.PlanYearly])
}

func TestLedgerService_StorageUnavailable(t *testing.T) {
	store := memstore.New()
	store.FailWith = models.ErrStorageUnavailable
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateOrReplace(ctx, "alice", models.PlanMonthly, date(2024, 1, 1))
	require.ErrorIs(t, err, models.ErrStorageUnavailable)

	_, err = svc.Status(ctx, "alice", date(2024, 1, 1))
	require.ErrorIs(t, err, models.ErrStorageUnavailable)

	err = svc.Cancel(ctx, "alice")
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}
