// Package services содержит планировщик напоминаний: периодически ищет
// подписки с подходящим сроком окончания и публикует уведомления в брокер.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	librabbitmq "github.com/magabrotheeeer/subscription-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/rabbitmq"
)

// Ledger описывает контракт выборки подписок с истекающим сроком.
type Ledger interface {
	ListExpiringWithin(ctx context.Context, days int, referenceDate time.Time) ([]models.Subscription, error)
}

// Directory описывает контракт чтения справочника для поиска контактов.
type Directory interface {
	List(ctx context.Context) ([]models.Identity, error)
}

// Количество дней до окончания подписки, за которое отправляется напоминание.
const reminderWindowDays = 7

// SchedulerService периодически публикует напоминания об истечении подписок.
type SchedulerService struct {
	ledger    Ledger
	directory Directory
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(ledger Ledger, directory Directory, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		ledger:    ledger,
		directory: directory,
		log:       log,
	}
}

// FindExpiringSubscriptions запускает цикл поиска с периодом 24 часа.
func (s *SchedulerService) FindExpiringSubscriptions(ctx context.Context, channel *amqp.Channel) {
	s.runFindExpiringSubscriptions(ctx, channel)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runFindExpiringSubscriptions(ctx, channel)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SchedulerService) runFindExpiringSubscriptions(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting service to find expiring subscriptions")
	subs, err := s.ledger.ListExpiringWithin(ctx, reminderWindowDays, time.Now().UTC())
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(subs) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(subs))

	contacts, err := s.contactsByUsername(ctx)
	if err != nil {
		s.log.Error("failed to load directory", sl.Err(err))
		return
	}
	for _, sub := range subs {
		address, ok := contacts[sub.Owner]
		if !ok {
			// Без контактного адреса напоминание доставить некуда.
			continue
		}
		notice := models.ExpiryNotice{
			Username:       sub.Owner,
			ContactAddress: address,
			Plan:           sub.Plan,
			EndDate:        sub.EndDate,
		}
		err = librabbitmq.PublishMessage(channel, rabbitmq.Exchange, rabbitmq.KeyExpiring, notice)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}

func (s *SchedulerService) contactsByUsername(ctx context.Context) (map[string]string, error) {
	identities, err := s.directory.List(ctx)
	if err != nil {
		return nil, err
	}
	contacts := make(map[string]string, len(identities))
	for _, ident := range identities {
		if ident.ContactAddress != nil {
			contacts[ident.Username] = *ident.ContactAddress
		}
	}
	return contacts, nil
}
