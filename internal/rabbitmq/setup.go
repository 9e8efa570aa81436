package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange имя обменника уведомлений.
const Exchange = "notifications"

// Маршрутизация сообщений внутри обменника.
const (
	QueueVerification = "notifications.verification"
	KeyVerification   = "verification"
	QueueExpiring     = "notifications.expiring"
	KeyExpiring       = "expiring"
)

// SetupChannel открывает канал и объявляет обменник с очередями
// кодов подтверждения и напоминаний об истечении подписки.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bindings := []struct {
		queue string
		key   string
	}{
		{QueueVerification, KeyVerification},
		{QueueExpiring, KeyExpiring},
	}
	for _, b := range bindings {
		_, err = ch.QueueDeclare(
			b.queue,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, b.queue, err)
		}
		err = ch.QueueBind(b.queue, b.key, Exchange, false, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, b.queue, err)
		}
	}
	return ch, nil
}
