package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/events"
	"github.com/phrazzld/scry-queue/internal/queue"
	"github.com/phrazzld/scry-queue/internal/service"
	"github.com/phrazzld/scry-queue/internal/store"
	"github.com/phrazzld/scry-queue/internal/task"
)

// EnqueueRequest is the payload for POST /api/queue/items. Explicit
// question IDs take precedence over Filter and Limit.
type EnqueueRequest struct {
	QuestionIDs []string       `json:"question_ids" validate:"omitempty,max=1000,unique,dive,uuid"`
	Mode        string         `json:"mode"         validate:"omitempty,oneof=answer explanation both"`
	Filter      *FilterRequest `json:"filter"`
	Limit       int            `json:"limit"        validate:"gte=0,lte=1000"`
}

// FilterRequest selects questions by category, type and field status.
type FilterRequest struct {
	CategoryID        string `json:"category_id"        validate:"omitempty,uuid"`
	Type              string `json:"type"               validate:"omitempty,oneof=single multiple judge essay"`
	AnswerStatus      string `json:"answer_status"      validate:"omitempty,oneof=none ai_pending ai_generated confirmed"`
	ExplanationStatus string `json:"explanation_status" validate:"omitempty,oneof=none ai_pending ai_generated confirmed"`
}

// ConcurrencyRequest is the payload for PUT /api/queue/concurrency.
type ConcurrencyRequest struct {
	Limit int `json:"limit" validate:"required,gte=1,lte=64"`
}

// CountResponse reports how many items an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}

// ItemResponse is the public view of a queue item.
type ItemResponse struct {
	ID         string                 `json:"id"`
	QuestionID string                 `json:"question_id,omitempty"`
	Mode       string                 `json:"mode,omitempty"`
	Status     queue.Status           `json:"status"`
	Error      string                 `json:"error,omitempty"`
	RetryCount int                    `json:"retry_count"`
	Result     *task.CompletionResult `json:"result,omitempty"`
	EnqueuedAt time.Time              `json:"enqueued_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// NotificationResponse is the public view of a queue notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// toServiceRequest converts a validated request. Validation guarantees the
// IDs and enum values parse.
func (req EnqueueRequest) toServiceRequest() service.EnqueueRequest {
	out := service.EnqueueRequest{
		Mode:  req.Mode,
		Limit: req.Limit,
	}
	for _, raw := range req.QuestionIDs {
		out.QuestionIDs = append(out.QuestionIDs, uuid.MustParse(raw))
	}
	if req.Filter != nil {
		out.Filter = req.Filter.toStoreFilter()
	}
	return out
}

func (f FilterRequest) toStoreFilter() store.QuestionFilter {
	var filter store.QuestionFilter
	if f.CategoryID != "" {
		id := uuid.MustParse(f.CategoryID)
		filter.CategoryID = &id
	}
	if f.Type != "" {
		t := domain.QuestionType(f.Type)
		filter.Type = &t
	}
	if f.AnswerStatus != "" {
		s := domain.FieldStatus(f.AnswerStatus)
		filter.AnswerStatus = &s
	}
	if f.ExplanationStatus != "" {
		s := domain.FieldStatus(f.ExplanationStatus)
		filter.ExplanationStatus = &s
	}
	return filter
}

func itemToResponse(item queue.Item) ItemResponse {
	resp := ItemResponse{
		ID:         item.ID,
		Status:     item.Status,
		Error:      item.Error,
		RetryCount: item.RetryCount,
		EnqueuedAt: item.EnqueuedAt,
		UpdatedAt:  item.UpdatedAt,
	}
	if req, ok := item.Payload.(task.CompletionRequest); ok {
		resp.QuestionID = req.QuestionID.String()
		resp.Mode = string(req.Mode)
	}
	if result, ok := item.Result.(task.CompletionResult); ok {
		resp.Result = &result
	}
	return resp
}

func notificationToResponse(n events.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Severity:  string(n.Severity),
		Text:      n.Text,
		CreatedAt: n.CreatedAt,
	}
}
