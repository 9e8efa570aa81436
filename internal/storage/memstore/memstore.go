// Package memstore реализует порт персистентности в памяти.
// Используется в юнит-тестах сервисов вместо PostgreSQL: контракт
// тот же — коллекции читаются и сохраняются целиком, журнал только
// пополняется, идентификаторы записей журнала монотонно растут.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Store хранит коллекции в памяти.
type Store struct {
	mu         sync.Mutex
	identities []models.Identity
	subs       []models.Subscription
	translog   []models.TransactionLogEntry
	nextLogID  int64

	// FailWith, если не nil, возвращается из всех операций.
	// Позволяет тестам имитировать недоступность хранилища.
	FailWith error
}

// New создает пустое хранилище.
func New() *Store {
	return &Store{nextLogID: 1}
}

// LoadDirectory возвращает копию справочника учетных записей.
func (s *Store) LoadDirectory(_ context.Context) ([]models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := make([]models.Identity, len(s.identities))
	copy(out, s.identities)
	return out, nil
}

// SaveDirectory замещает справочник целиком.
func (s *Store) SaveDirectory(_ context.Context, identities []models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.identities = make([]models.Identity, len(identities))
	copy(s.identities, identities)
	return nil
}

// LoadLedger возвращает копию реестра подписок.
func (s *Store) LoadLedger(_ context.Context) ([]models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := make([]models.Subscription, len(s.subs))
	copy(out, s.subs)
	return out, nil
}

// SaveLedger замещает реестр подписок целиком.
func (s *Store) SaveLedger(_ context.Context, subs []models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.subs = make([]models.Subscription, len(subs))
	copy(s.subs, subs)
	return nil
}

// AppendLog добавляет запись журнала, назначая монотонный ID.
func (s *Store) AppendLog(_ context.Context, entry models.TransactionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	entry.ID = s.nextLogID
	s.nextLogID++
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.translog = append(s.translog, entry)
	return nil
}

// ListLog возвращает копию журнала операций.
func (s *Store) ListLog(_ context.Context) ([]models.TransactionLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := make([]models.TransactionLogEntry, len(s.translog))
	copy(out, s.translog)
	return out, nil
}
