// Package removeuser реализует административный HTTP-обработчик удаления
// учетной записи. Удаление каскадное: вместе с учетной записью удаляется
// её подписка, если она есть.
package removeuser

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Directory описывает интерфейс удаления учетной записи.
type Directory interface {
	Delete(ctx context.Context, username string) error
}

// Ledger описывает интерфейс каскадного удаления подписки.
type Ledger interface {
	DeleteForOwner(ctx context.Context, owner string) error
}

// Handler управляет HTTP-запросами удаления учетных записей.
type Handler struct {
	log       *slog.Logger
	directory Directory
	ledger    Ledger
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, directory Directory, ledger Ledger) *Handler {
	return &Handler{
		log:       log,
		directory: directory,
		ledger:    ledger,
	}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Description Удаляет учетную запись и каскадно её подписку.
// @Tags Admin
// @Produce  json
// @Param username path string true "Имя пользователя"
// @Success 200 {object} response.Response "Пользователь удален"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /admin/users/{username} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.removeuser"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := chi.URLParam(r, "username")
	if username == "" {
		log.Error("username not found in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode username from url"))
		return
	}

	err := h.directory.Delete(r.Context(), username)
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Error("user not found", slog.String("username", username))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, models.ErrStorageUnavailable):
		log.Error("storage unavailable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("storage unavailable"))
		return
	case err != nil:
		log.Error("failed to delete user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete user"))
		return
	}

	if err = h.ledger.DeleteForOwner(r.Context(), username); err != nil {
		log.Error("failed to cascade subscription removal", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove subscription"))
		return
	}

	log.Info("user deleted", slog.String("username", username))
	render.JSON(w, r, response.OK())
}
