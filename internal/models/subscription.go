package models

import "time"

// Plan тип тарифного плана подписки.
type Plan string

// Поддерживаемые тарифные планы.
const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

// Duration возвращает длительность оплаченного периода для плана:
// 30 дней для месячного и 365 дней для годового.
func (p Plan) Duration() time.Duration {
	if p == PlanYearly {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// Valid проверяет, что план принадлежит множеству поддерживаемых.
func (p Plan) Valid() bool {
	return p == PlanMonthly || p == PlanYearly
}

// Subscription представляет запись подписки пользователя.
// На одного владельца приходится не более одной записи.
// Инвариант: EndDate строго позже StartDate.
type Subscription struct {
	Owner     string    // Имя пользователя-владельца, ссылка на Identity.Username
	Plan      Plan      // Тарифный план
	StartDate time.Time // Дата начала оплаченного периода
	EndDate   time.Time // Дата окончания оплаченного периода
	Active    bool      // Флаг активности; false после отмены
}

// Expired сообщает, истекла ли подписка на указанную дату.
// Свойство вычисляемое и в хранилище не сохраняется.
func (s *Subscription) Expired(ref time.Time) bool {
	return ref.After(s.EndDate)
}

// SubscriptionView агрегирует данные подписки для выдачи наружу.
type SubscriptionView struct {
	Plan      Plan      `json:"plan"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Active    bool      `json:"active"`
	IsExpired bool      `json:"is_expired"`
}

// DummySubscription используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Subscription. Дата приходит строкой,
// чтобы её можно было валидировать и парсить вручную.
type DummySubscription struct {
	Plan          string `json:"plan" validate:"required,oneof=monthly yearly"` // Тарифный план
	ReferenceDate string `json:"reference_date" validate:"required"`           // Опорная дата в формате 2006-01-02
}
