// Package services содержит бизнес-логику реестра подписок: жизненный цикл
// создание/продление/отмена, выборки по сроку истечения и журнал операций.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// LedgerStore определяет порт персистентности реестра подписок.
// Реестр читается и сохраняется целиком, журнал только пополняется.
type LedgerStore interface {
	// LoadLedger возвращает все записи подписок.
	LoadLedger(ctx context.Context) ([]models.Subscription, error)
	// SaveLedger замещает реестр целиком.
	SaveLedger(ctx context.Context, subs []models.Subscription) error
	// AppendLog добавляет запись в журнал операций.
	AppendLog(ctx context.Context, entry models.TransactionLogEntry) error
	// ListLog возвращает журнал операций в порядке возрастания ID.
	ListLog(ctx context.Context) ([]models.TransactionLogEntry, error)
}

// LedgerService реализует жизненный цикл подписок.
// Мьютекс сериализует циклы чтение-изменение-запись реестра,
// иначе параллельные вызовы теряли бы обновления друг друга.
type LedgerService struct {
	store LedgerStore
	log   *slog.Logger
	mu    sync.Mutex
	now   func() time.Time
}

// NewLedgerService создает новый экземпляр LedgerService.
func NewLedgerService(store LedgerStore, log *slog.Logger) *LedgerService {
	return &LedgerService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// CreateOrReplace создает подписку владельца либо замещает существующую.
// StartDate равен опорной дате, EndDate вычисляется из длительности плана
// (30 дней для месячного, 365 для годового), подписка активна.
func (s *LedgerService) CreateOrReplace(ctx context.Context, owner string, plan models.Plan, referenceDate time.Time) (*models.Subscription, error) {
	const op = "ledger.CreateOrReplace"
	if !plan.Valid() {
		return nil, fmt.Errorf("%s: unknown plan %q", op, plan)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub := models.Subscription{
		Owner:     owner,
		Plan:      plan,
		StartDate: referenceDate,
		EndDate:   referenceDate.Add(plan.Duration()),
		Active:    true,
	}
	replaced := false
	for i := range subs {
		if subs[i].Owner == owner {
			subs[i] = sub
			replaced = true
			break
		}
	}
	if !replaced {
		subs = append(subs, sub)
	}

	details := fmt.Sprintf("plan=%s start=%s end=%s", plan,
		sub.StartDate.Format(time.DateOnly), sub.EndDate.Format(time.DateOnly))
	if err = s.appendAndSave(ctx, subs, owner, models.ActionCreate, details); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription created", slog.String("owner", owner), slog.String("plan", string(plan)))
	return &sub, nil
}

// RenewOrChangePlan продлевает подписку либо меняет план с тем же
// пересчетом дат, что и при создании. Запись должна существовать:
// при её отсутствии возвращается models.ErrNotFound, upsert не выполняется.
func (s *LedgerService) RenewOrChangePlan(ctx context.Context, owner string, newPlan models.Plan, referenceDate time.Time) (*models.Subscription, error) {
	const op = "ledger.RenewOrChangePlan"
	if !newPlan.Valid() {
		return nil, fmt.Errorf("%s: unknown plan %q", op, newPlan)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range subs {
		if subs[i].Owner != owner {
			continue
		}
		subs[i].Plan = newPlan
		subs[i].StartDate = referenceDate
		subs[i].EndDate = referenceDate.Add(newPlan.Duration())
		subs[i].Active = true
		sub := subs[i]

		details := fmt.Sprintf("plan=%s start=%s end=%s", newPlan,
			sub.StartDate.Format(time.DateOnly), sub.EndDate.Format(time.DateOnly))
		if err = s.appendAndSave(ctx, subs, owner, models.ActionRenew, details); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription renewed", slog.String("owner", owner), slog.String("plan", string(newPlan)))
		return &sub, nil
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// Cancel деактивирует подписку владельца. EndDate не пересчитывается:
// дата окончания замораживается на последнем вычисленном значении,
// поэтому повторная отмена дает тот же результат, что и первая.
func (s *LedgerService) Cancel(ctx context.Context, owner string) error {
	const op = "ledger.Cancel"
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i := range subs {
		if subs[i].Owner != owner {
			continue
		}
		subs[i].Active = false
		details := fmt.Sprintf("end=%s", subs[i].EndDate.Format(time.DateOnly))
		if err = s.appendAndSave(ctx, subs, owner, models.ActionCancel, details); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription cancelled", slog.String("owner", owner))
		return nil
	}
	return fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// Status возвращает состояние подписки владельца на опорную дату.
func (s *LedgerService) Status(ctx context.Context, owner string, referenceDate time.Time) (*models.SubscriptionView, error) {
	const op = "ledger.Status"
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range subs {
		if subs[i].Owner != owner {
			continue
		}
		return &models.SubscriptionView{
			Plan:      subs[i].Plan,
			StartDate: subs[i].StartDate,
			EndDate:   subs[i].EndDate,
			Active:    subs[i].Active,
			IsExpired: subs[i].Expired(referenceDate),
		}, nil
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// ListExpiringWithin возвращает активные подписки, у которых до даты
// окончания осталось не больше days дней от опорной даты (включительно).
// Порядок записей соответствует порядку итерации хранилища.
func (s *LedgerService) ListExpiringWithin(ctx context.Context, days int, referenceDate time.Time) ([]models.Subscription, error) {
	const op = "ledger.ListExpiringWithin"
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	limit := time.Duration(days) * 24 * time.Hour
	var result []models.Subscription
	for _, sub := range subs {
		if !sub.Active {
			continue
		}
		if sub.EndDate.Sub(referenceDate) <= limit {
			result = append(result, sub)
		}
	}
	return result, nil
}

// DeleteForOwner удаляет подписку владельца, если она есть.
// Вспомогательная операция каскадного удаления: отсутствие записи
// не является ошибкой, повторный вызов безвреден.
func (s *LedgerService) DeleteForOwner(ctx context.Context, owner string) error {
	const op = "ledger.DeleteForOwner"
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	kept := subs[:0]
	found := false
	for _, sub := range subs {
		if sub.Owner == owner {
			found = true
			continue
		}
		kept = append(kept, sub)
	}
	if !found {
		return nil
	}
	if err = s.appendAndSave(ctx, kept, owner, models.ActionDelete, "cascade"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription removed", slog.String("owner", owner))
	return nil
}

// TransactionLog возвращает журнал операций целиком.
func (s *LedgerService) TransactionLog(ctx context.Context) ([]models.TransactionLogEntry, error) {
	const op = "ledger.TransactionLog"
	entries, err := s.store.ListLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// Stats агрегирует реестр: количество записей по планам и по состояниям
// активна/отменена/истекла на опорную дату.
func (s *LedgerService) Stats(ctx context.Context, referenceDate time.Time) (*models.LedgerStats, error) {
	const op = "ledger.Stats"
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats := &models.LedgerStats{ByPlan: make(map[models.Plan]int)}
	for _, sub := range subs {
		stats.Total++
		stats.ByPlan[sub.Plan]++
		switch {
		case !sub.Active:
			stats.Cancelled++
		case sub.Expired(referenceDate):
			stats.Expired++
		default:
			stats.Active++
		}
	}
	return stats, nil
}

// appendAndSave фиксирует операцию в журнале и сохраняет реестр целиком.
func (s *LedgerService) appendAndSave(ctx context.Context, subs []models.Subscription, owner, action, details string) error {
	entry := models.TransactionLogEntry{
		Username:  owner,
		Action:    action,
		Timestamp: s.now().UTC(),
		Details:   details,
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		return err
	}
	return s.store.SaveLedger(ctx, subs)
}
