// Package stats реализует административный HTTP-обработчик агрегированной
// статистики: количество учетных записей и распределение подписок
// по планам и состояниям.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Ledger описывает интерфейс агрегации реестра подписок.
type Ledger interface {
	Stats(ctx context.Context, referenceDate time.Time) (*models.LedgerStats, error)
}

// Directory описывает интерфейс чтения справочника учетных записей.
type Directory interface {
	List(ctx context.Context) ([]models.Identity, error)
}

// Handler управляет HTTP-запросами административной статистики.
type Handler struct {
	log       *slog.Logger
	ledger    Ledger
	directory Directory
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, ledger Ledger, directory Directory) *Handler {
	return &Handler{
		log:       log,
		ledger:    ledger,
		directory: directory,
	}
}

// ServeHTTP godoc
// @Summary Статистика сервиса
// @Description Возвращает количество учетных записей и распределение подписок по планам и состояниям.
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response "Агрегированная статистика"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ledgerStats, err := h.ledger.Stats(r.Context(), time.Now().UTC())
	if err != nil {
		h.renderError(w, r, log, err, "could not aggregate ledger")
		return
	}
	identities, err := h.directory.List(r.Context())
	if err != nil {
		h.renderError(w, r, log, err, "could not read directory")
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"users":         len(identities),
		"subscriptions": ledgerStats,
	}))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	if errors.Is(err, models.ErrStorageUnavailable) {
		log.Error("storage unavailable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("storage unavailable"))
		return
	}
	log.Error(msg, sl.Err(err))
	w.WriteHeader(http.StatusInternalServerError)
	render.JSON(w, r, response.Error(msg))
}
