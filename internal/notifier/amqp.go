// Package notifier реализует порт доставки кодов подтверждения
// через брокер уведомлений. Код публикуется в очередь, письмо
// отправляет отдельный сервис notification-sender.
package notifier

import (
	"fmt"

	"github.com/streadway/amqp"

	librabbitmq "github.com/magabrotheeeer/subscription-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/rabbitmq"
)

// AmqpNotifier публикует коды подтверждения в RabbitMQ.
type AmqpNotifier struct {
	ch *amqp.Channel
}

// New создает новый AmqpNotifier поверх открытого канала.
func New(ch *amqp.Channel) *AmqpNotifier {
	return &AmqpNotifier{ch: ch}
}

// SendVerificationCode публикует код подтверждения для доставки.
// Подтверждения получения нет: доставка fire-and-forget.
func (n *AmqpNotifier) SendVerificationCode(contactAddress, code string) error {
	const op = "notifier.SendVerificationCode"
	notice := models.VerificationNotice{
		ContactAddress: contactAddress,
		Code:           code,
	}
	if err := librabbitmq.PublishMessage(n.ch, rabbitmq.Exchange, rabbitmq.KeyVerification, notice); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
