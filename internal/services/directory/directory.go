// Package services содержит бизнес-логику справочника учетных записей:
// регистрацию, подтверждение, проверку учетных данных и удаление.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/otp"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/password"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// DirectoryStore определяет порт персистентности справочника.
// Коллекция читается и сохраняется целиком.
type DirectoryStore interface {
	// LoadDirectory возвращает все учетные записи.
	LoadDirectory(ctx context.Context) ([]models.Identity, error)
	// SaveDirectory замещает справочник целиком.
	SaveDirectory(ctx context.Context, identities []models.Identity) error
}

// Notifier определяет порт доставки кодов подтверждения.
// Доставка fire-and-forget, подтверждения получения нет.
type Notifier interface {
	SendVerificationCode(contactAddress, code string) error
}

// DirectoryService реализует операции над справочником учетных записей.
// Мьютекс сериализует каждый цикл чтение-изменение-запись: порт работает
// с целой коллекцией, и без сериализации параллельные вызовы теряли бы
// обновления друг друга.
type DirectoryService struct {
	store    DirectoryStore
	notifier Notifier
	log      *slog.Logger
	mu       sync.Mutex
}

// NewDirectoryService создает новый экземпляр DirectoryService.
func NewDirectoryService(store DirectoryStore, notifier Notifier, log *slog.Logger) *DirectoryService {
	return &DirectoryService{
		store:    store,
		notifier: notifier,
		log:      log,
	}
}

// Register создает новую учетную запись с bcrypt-хэшем пароля.
// Возвращает models.ErrAlreadyExists, если имя занято. Если указан
// контактный адрес, генерирует 6-значный код подтверждения и передает
// его нотификатору; до успешного Verify вход такой записи закрыт.
func (s *DirectoryService) Register(ctx context.Context, username, rawPassword, role string, contactAddress *string) error {
	const op = "directory.Register"
	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.store.LoadDirectory(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, ident := range identities {
		if ident.Username == username {
			return fmt.Errorf("%s: %w", op, models.ErrAlreadyExists)
		}
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ident := models.Identity{
		UID:            uuid.New().String(),
		Username:       username,
		PasswordHash:   hashed,
		Role:           role,
		ContactAddress: contactAddress,
	}

	var code string
	if contactAddress != nil {
		code, err = otp.Generate()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		ident.PendingCode = &code
	}

	identities = append(identities, ident)
	if err = s.store.SaveDirectory(ctx, identities); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("registered new identity", slog.String("username", username), slog.String("role", role))

	if contactAddress != nil {
		// Доставка кода не влияет на исход регистрации.
		if err = s.notifier.SendVerificationCode(*contactAddress, code); err != nil {
			s.log.Warn("failed to send verification code", sl.Err(err))
		}
	}
	return nil
}

// Verify сверяет код подтверждения и очищает его при совпадении.
// Несуществующая запись, отсутствие ожидающего кода и несовпадение
// дают один и тот же исход models.ErrInvalidCode.
func (s *DirectoryService) Verify(ctx context.Context, username, code string) error {
	const op = "directory.Verify"
	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.store.LoadDirectory(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for i, ident := range identities {
		if ident.Username != username {
			continue
		}
		if ident.PendingCode == nil || *ident.PendingCode != code {
			return fmt.Errorf("%s: %w", op, models.ErrInvalidCode)
		}
		identities[i].PendingCode = nil
		if err = s.store.SaveDirectory(ctx, identities); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("identity verified", slog.String("username", username))
		return nil
	}
	return fmt.Errorf("%s: %w", op, models.ErrInvalidCode)
}

// Authenticate проверяет пару имя/пароль и возвращает роль.
// Неизвестное имя и неверный пароль неразличимы для вызывающего.
// Запись с неснятым кодом подтверждения дает models.ErrPendingVerification.
func (s *DirectoryService) Authenticate(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "directory.Authenticate"
	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.store.LoadDirectory(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	for _, ident := range identities {
		if ident.Username != username {
			continue
		}
		if err = password.CompareHash(ident.PasswordHash, rawPassword); err != nil {
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		if !ident.Verified() {
			return "", fmt.Errorf("%s: %w", op, models.ErrPendingVerification)
		}
		return ident.Role, nil
	}
	return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
}

// Delete удаляет учетную запись по имени. Операция административная,
// контроль роли выполняется на транспортном уровне.
func (s *DirectoryService) Delete(ctx context.Context, username string) error {
	const op = "directory.Delete"
	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.store.LoadDirectory(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	kept := identities[:0]
	found := false
	for _, ident := range identities {
		if ident.Username == username {
			found = true
			continue
		}
		kept = append(kept, ident)
	}
	if !found {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err = s.store.SaveDirectory(ctx, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("identity deleted", slog.String("username", username))
	return nil
}

// List возвращает все учетные записи справочника.
func (s *DirectoryService) List(ctx context.Context) ([]models.Identity, error) {
	const op = "directory.List"
	s.mu.Lock()
	defer s.mu.Unlock()

	identities, err := s.store.LoadDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return identities, nil
}
