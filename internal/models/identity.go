// Package models содержит доменные структуры сервиса управления подписками:
// учетные записи пользователей, записи подписок и журнал операций.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

// Роли пользователей системы.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity представляет зарегистрированную учетную запись.
// Username является уникальным бизнес-ключом справочника.
// PendingCode хранит 6-значный код подтверждения; nil означает,
// что подтверждение пройдено либо не требовалось.
type Identity struct {
	UID            string  // Уникальный идентификатор записи
	Username       string  // Имя пользователя (уникальное)
	PasswordHash   string  // bcrypt-хэш пароля
	Role           string  // Роль пользователя, admin или user
	ContactAddress *string // Контактный адрес для доставки кода, может отсутствовать
	PendingCode    *string // Ожидающий код подтверждения, 6 цифр
}

// Verified сообщает, завершено ли подтверждение учетной записи.
func (i *Identity) Verified() bool {
	return i.PendingCode == nil
}
