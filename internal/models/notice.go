package models

import "time"

// VerificationNotice сообщение с кодом подтверждения для доставки пользователю.
type VerificationNotice struct {
	ContactAddress string `json:"contact_address"`
	Code           string `json:"code"`
}

// ExpiryNotice сообщение-напоминание о скором окончании подписки.
type ExpiryNotice struct {
	Username       string    `json:"username"`
	ContactAddress string    `json:"contact_address"`
	Plan           Plan      `json:"plan"`
	EndDate        time.Time `json:"end_date"`
}

// LedgerStats агрегированная статистика по реестру подписок.
type LedgerStats struct {
	Total     int          `json:"total"`
	Active    int          `json:"active"`
	Cancelled int          `json:"cancelled"`
	Expired   int          `json:"expired"`
	ByPlan    map[Plan]int `json:"by_plan"`
}
