// Package services содержит тонкий сеансовый слой: проверку учетных данных
// через справочник, выпуск JWT и реестр активных сессий в Redis,
// благодаря которому logout действительно отзывает токен.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Directory описывает контракт проверки учетных данных.
type Directory interface {
	// Authenticate возвращает роль пользователя при верной паре имя/пароль.
	Authenticate(ctx context.Context, username, rawPassword string) (string, error)
}

// SessionStore описывает реестр активных сессий.
type SessionStore interface {
	// Get пытается получить значение по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение по ключу.
	Invalidate(key string) error
}

// Session данные аутентифицированного пользователя.
type Session struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SessionService переводит проверку учетных данных в аутентифицированную
// сессию с ролью. Состояния: аноним -> проверка (синхронно) ->
// аутентифицирован; выход только по явному logout.
type SessionService struct {
	directory Directory
	jwtMaker  jwt.Maker
	sessions  SessionStore
	tokenTTL  time.Duration
	log       *slog.Logger
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(directory Directory, jwtMaker jwt.Maker, sessions SessionStore, tokenTTL time.Duration, log *slog.Logger) *SessionService {
	return &SessionService{
		directory: directory,
		jwtMaker:  jwtMaker,
		sessions:  sessions,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

func sessionKey(username string) string {
	return "session:" + username
}

// Login проверяет учетные данные и выпускает JWT.
// Ошибка проверки возвращает вызывающего в анонимное состояние:
// повторных попыток сервис не предпринимает.
func (s *SessionService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	role, err = s.directory.Authenticate(ctx, username, rawPassword)
	if err != nil {
		return "", "", err
	}
	token, err = s.jwtMaker.GenerateToken(username, role)
	if err != nil {
		return "", "", err
	}
	if err = s.sessions.Set(sessionKey(username), token, s.tokenTTL); err != nil {
		return "", "", err
	}
	s.log.Info("session opened", slog.String("username", username), slog.String("role", role))
	return token, role, nil
}

// Logout закрывает сессию пользователя. Токен, не числящийся в реестре,
// перестает проходить Validate.
func (s *SessionService) Logout(_ context.Context, username string) error {
	if err := s.sessions.Invalidate(sessionKey(username)); err != nil {
		s.log.Error("failed to invalidate session", sl.Err(err))
		return err
	}
	s.log.Info("session closed", slog.String("username", username))
	return nil
}

// Validate проверяет подпись токена и его присутствие в реестре сессий.
func (s *SessionService) Validate(_ context.Context, token string) (*Session, error) {
	const op = "session.Validate"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var stored string
	found, err := s.sessions.Get(sessionKey(claims.Username), &stored)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found || stored != token {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	return &Session{Username: claims.Username, Role: claims.Role}, nil
}
