package models

import "errors"

// Ошибки доменного уровня. Все они являются восстановимыми исходами,
// которые возвращаются вызывающей стороне, а не фатальными сбоями.
var (
	// ErrAlreadyExists учетная запись с таким именем уже существует
	ErrAlreadyExists = errors.New("identity already exists")

	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCode код подтверждения не совпал или не ожидается
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrInvalidCredentials неверная пара имя/пароль
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPendingVerification учетная запись ещё не подтверждена
	ErrPendingVerification = errors.New("verification pending")

	// ErrStorageUnavailable хранилище недоступно; пустая коллекция
	// вместо ошибки не подставляется, чтобы не маскировать потерю данных
	ErrStorageUnavailable = errors.New("storage unavailable")
)
