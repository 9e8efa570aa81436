package models

import "time"

// Действия, фиксируемые в журнале операций.
const (
	ActionCreate = "create"
	ActionRenew  = "renew"
	ActionCancel = "cancel"
	ActionDelete = "delete"
)

// TransactionLogEntry одна запись журнала операций над подписками.
// Журнал только пополняется: записи никогда не изменяются и не удаляются.
// ID монотонно возрастает и назначается хранилищем.
type TransactionLogEntry struct {
	ID        int64     `json:"id"`        // Монотонный идентификатор записи
	Username  string    `json:"username"`  // Имя пользователя, к которому относится операция
	Action    string    `json:"action"`    // Тип операции: create, renew, cancel, delete
	Timestamp time.Time `json:"timestamp"` // Момент выполнения операции
	Details   string    `json:"details"`   // Текстовое описание операции
}
