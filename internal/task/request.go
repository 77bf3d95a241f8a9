package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/queue"
)

// ErrInvalidPayload is returned for queue items that do not carry a CompletionRequest.
var ErrInvalidPayload = errors.New("invalid completion payload")

// CompletionRequest is the payload of a queue item.
type CompletionRequest struct {
	QuestionID uuid.UUID             `json:"question_id"`
	Mode       domain.CompletionMode `json:"mode"`
}

// CompletionResult is the result of a completed queue item.
type CompletionResult struct {
	QuestionID       uuid.UUID `json:"question_id"`
	Answer           string    `json:"answer,omitempty"`
	Explanation      string    `json:"explanation,omitempty"`
	AnswerSaved      bool      `json:"answer_saved"`
	ExplanationSaved bool      `json:"explanation_saved"`
}

// ItemID is the queue item ID for a question. A question is queued at most
// once regardless of mode.
func ItemID(questionID uuid.UUID) string {
	return questionID.String()
}

// NewQueueItem builds the queue item for req.
func NewQueueItem(req CompletionRequest) queue.NewItem {
	return queue.NewItem{ID: ItemID(req.QuestionID), Payload: req}
}

func requestFromItem(item queue.Item) (CompletionRequest, error) {
	var req CompletionRequest
	switch p := item.Payload.(type) {
	case CompletionRequest:
		req = p
	case *CompletionRequest:
		if p == nil {
			return req, fmt.Errorf("%w: nil request", ErrInvalidPayload)
		}
		req = *p
	default:
		return req, fmt.Errorf("%w: unexpected payload type %T", ErrInvalidPayload, item.Payload)
	}

	if req.QuestionID == uuid.Nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidPayload, domain.ErrEmptyQuestionID)
	}
	mode, err := domain.ParseCompletionMode(string(req.Mode))
	if err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	req.Mode = mode
	return req, nil
}
