package handler

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"zenfi-wallet/internal/adapter/http/middleware"
	"zenfi-wallet/internal/core/domain"
	"zenfi-wallet/pkg/apperror"
	"zenfi-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FeedSubscriber opens a per-owner change event stream.
type FeedSubscriber interface {
	Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan domain.ChangeEvent, error)
}

// heartbeatInterval keeps intermediaries from closing an idle SSE stream.
const heartbeatInterval = 15 * time.Second

// StreamHandler serves the per-owner SSE change feed.
type StreamHandler struct {
	feed FeedSubscriber
	log  zerolog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(feed FeedSubscriber, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{feed: feed, log: log}
}

// Stream handles GET /api/v1/stream. Events are emitted in server commit
// order; reconnection and replay are the client's job.
func (h *StreamHandler) Stream(c *gin.Context) {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	events, err := h.feed.Subscribe(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Warn().Err(err).Msg("failed to marshal change event")
				return true
			}
			c.SSEvent("change", string(payload))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
