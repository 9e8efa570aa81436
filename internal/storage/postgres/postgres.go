// Package postgres реализует порт персистентности на основе PostgreSQL.
//
// Контракт порта пококоллекционный: справочник учетных записей и реестр
// подписок читаются и перезаписываются целиком, журнал операций только
// пополняется. Ошибки базы оборачиваются в models.ErrStorageUnavailable,
// чтобы недоступность хранилища была явным исходом, а не пустой коллекцией.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}

	return &Storage{DB: db}, nil
}

// LoadDirectory читает справочник учетных записей целиком.
func (s *Storage) LoadDirectory(ctx context.Context) ([]models.Identity, error) {
	const op = "storage.LoadDirectory"

	query := `SELECT uid, username, password_hash, role, contact_address, pending_code
			  FROM identities
			  ORDER BY username`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Identity
	for rows.Next() {
		var ident models.Identity
		var contactAddress, pendingCode sql.NullString
		if err = rows.Scan(&ident.UID, &ident.Username, &ident.PasswordHash,
			&ident.Role, &contactAddress, &pendingCode); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
		}
		if contactAddress.Valid {
			ident.ContactAddress = &contactAddress.String
		}
		if pendingCode.Valid {
			ident.PendingCode = &pendingCode.String
		}
		result = append(result, ident)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return result, nil
}

// SaveDirectory перезаписывает справочник учетных записей целиком
// в одной транзакции, чтобы частично записанное состояние не было
// наблюдаемо последующими чтениями.
func (s *Storage) SaveDirectory(ctx context.Context, identities []models.Identity) error {
	const op = "storage.SaveDirectory"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM identities`); err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	query := `INSERT INTO identities (uid, username, password_hash, role, contact_address, pending_code)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	for _, ident := range identities {
		if _, err = tx.ExecContext(ctx, query,
			ident.UID, ident.Username, ident.PasswordHash, ident.Role,
			ident.ContactAddress, ident.PendingCode); err != nil {
			return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return nil
}

// LoadLedger читает реестр подписок целиком.
func (s *Storage) LoadLedger(ctx context.Context) ([]models.Subscription, error) {
	const op = "storage.LoadLedger"

	query := `SELECT owner, plan, start_date, end_date, is_active
			  FROM subscriptions
			  ORDER BY owner`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err = rows.Scan(&sub.Owner, &sub.Plan, &sub.StartDate,
			&sub.EndDate, &sub.Active); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return result, nil
}

// SaveLedger перезаписывает реестр подписок целиком в одной транзакции.
func (s *Storage) SaveLedger(ctx context.Context, subs []models.Subscription) error {
	const op = "storage.SaveLedger"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM subscriptions`); err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	query := `INSERT INTO subscriptions (owner, plan, start_date, end_date, is_active)
			  VALUES ($1, $2, $3, $4, $5)`
	for _, sub := range subs {
		if _, err = tx.ExecContext(ctx, query,
			sub.Owner, sub.Plan, sub.StartDate, sub.EndDate, sub.Active); err != nil {
			return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return nil
}

// AppendLog добавляет одну запись в журнал операций.
// Идентификатор назначается последовательностью BIGSERIAL и монотонно растет.
func (s *Storage) AppendLog(ctx context.Context, entry models.TransactionLogEntry) error {
	const op = "storage.AppendLog"

	query := `INSERT INTO transaction_log (username, action, created_at, details)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query,
		entry.Username, entry.Action, entry.Timestamp, entry.Details); err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return nil
}

// ListLog возвращает журнал операций в порядке возрастания ID.
func (s *Storage) ListLog(ctx context.Context) ([]models.TransactionLogEntry, error) {
	const op = "storage.ListLog"

	query := `SELECT id, username, action, created_at, details
			  FROM transaction_log
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.TransactionLogEntry
	for rows.Next() {
		var entry models.TransactionLogEntry
		if err = rows.Scan(&entry.ID, &entry.Username, &entry.Action,
			&entry.Timestamp, &entry.Details); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
		}
		result = append(result, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
	}
	return result, nil
}
