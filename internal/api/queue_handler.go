package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-queue/internal/api/shared"
	"github.com/phrazzld/scry-queue/internal/events"
	"github.com/phrazzld/scry-queue/internal/platform/logger"
	"github.com/phrazzld/scry-queue/internal/queue"
	"github.com/phrazzld/scry-queue/internal/service"
	"github.com/phrazzld/scry-queue/internal/task"
)

// QueueService is the subset of *service.CompletionService the handlers use.
type QueueService interface {
	Enqueue(ctx context.Context, req service.EnqueueRequest) (service.EnqueueResult, error)
	Snapshot() (queue.Snapshot, error)
	Items() ([]queue.Item, error)
	Notifications(limit int) []events.Notification
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	RetryFailed(ctx context.Context) (int, error)
	SetConcurrencyLimit(ctx context.Context, limit int) error
	Remove(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) error
}

// QueueHandler serves the completion queue endpoints.
type QueueHandler struct {
	service QueueService
	logger  *slog.Logger
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(svc QueueService, logger *slog.Logger) *QueueHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueHandler{
		service: svc,
		logger:  logger.With("component", "queue_handler"),
	}
}

// Routes mounts the queue endpoints on r.
func (h *QueueHandler) Routes(r chi.Router) {
	r.Get("/", h.GetSnapshot)
	r.Delete("/", h.ClearAll)
	r.Get("/items", h.ListItems)
	r.Post("/items", h.EnqueueQuestions)
	r.Delete("/items/{id}", h.RemoveItem)
	r.Delete("/completed", h.ClearCompleted)
	r.Get("/notifications", h.ListNotifications)
	r.Post("/pause", h.Pause)
	r.Post("/resume", h.Resume)
	r.Post("/retry-failed", h.RetryFailed)
	r.Put("/concurrency", h.SetConcurrency)
}

// EnqueueQuestions handles POST /api/queue/items. Completion happens in
// the background, so the response is 202 Accepted.
func (h *QueueHandler) EnqueueQuestions(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.service.Enqueue(r.Context(), req.toServiceRequest())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to enqueue questions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, result)
}

// GetSnapshot handles GET /api/queue.
func (h *QueueHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot()
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read queue")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// ListItems handles GET /api/queue/items.
func (h *QueueHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Items()
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read queue")
		return
	}

	resp := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, itemToResponse(item))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ListNotifications handles GET /api/queue/notifications?limit=N.
func (h *QueueHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := getLimitQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	notifications := h.service.Notifications(limit)
	resp := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, notificationToResponse(n))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Pause handles POST /api/queue/pause.
func (h *QueueHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Pause(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to pause queue")
		return
	}
	h.respondWithSnapshot(w, r)
}

// Resume handles POST /api/queue/resume.
func (h *QueueHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Resume(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to resume queue")
		return
	}
	h.respondWithSnapshot(w, r)
}

// RetryFailed handles POST /api/queue/retry-failed.
func (h *QueueHandler) RetryFailed(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.RetryFailed(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retry items")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: n})
}

// SetConcurrency handles PUT /api/queue/concurrency.
func (h *QueueHandler) SetConcurrency(w http.ResponseWriter, r *http.Request) {
	var req ConcurrencyRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.service.SetConcurrencyLimit(r.Context(), req.Limit); err != nil {
		HandleAPIError(w, r, err, "Failed to set concurrency limit")
		return
	}
	h.respondWithSnapshot(w, r)
}

// RemoveItem handles DELETE /api/queue/items/{id}.
func (h *QueueHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	questionID, err := getPathUUID(r, "id")
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("invalid item id",
			"value", chi.URLParam(r, "id"))
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.service.Remove(r.Context(), task.ItemID(questionID)); err != nil {
		if !errors.Is(err, service.ErrItemNotFound) {
			logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to remove queue item",
				"item_id", questionID.String(),
				"error", err)
		}
		HandleAPIError(w, r, err, "Failed to remove item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCompleted handles DELETE /api/queue/completed.
func (h *QueueHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ClearCompleted(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear completed items")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: n})
}

// ClearAll handles DELETE /api/queue.
func (h *QueueHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearAll(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to clear queue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QueueHandler) respondWithSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot()
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read queue")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}
