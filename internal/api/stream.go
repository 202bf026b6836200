package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/flood-response/internal/models"
	"github.com/mr1hm/flood-response/internal/stream"
)

// SSE live subscriptions. Each connection watches one collection and
// receives a full, newest-first snapshot on connect and again after every
// change; snapshots fully replace whatever the client holds. The
// subscription is released exactly once, when the client disconnects or the
// broadcaster shuts down.

func (h *Handler) streamAlerts(c *gin.Context) {
	h.streamCollection(c, stream.CollectionAlerts, func(ctx context.Context) (any, error) {
		return h.alerts.ListAlerts(ctx)
	})
}

func (h *Handler) streamResources(c *gin.Context) {
	kind := models.ResourceKind(c.Query("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kind must be request or offer."})
		return
	}

	h.streamCollection(c, collectionFor(kind), func(ctx context.Context) (any, error) {
		return h.resources.ListResources(ctx, kind)
	})
}

type snapshotFunc func(ctx context.Context) (any, error)

func (h *Handler) streamCollection(c *gin.Context, col stream.Collection, snapshot snapshotFunc) {
	id, ch := h.broadcaster.Subscribe(col)
	defer h.broadcaster.Unsubscribe(id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.sendSnapshot(c, snapshot)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			h.sendSnapshot(c, snapshot)
		}
	}
}

// sendSnapshot queries and delivers a full snapshot. A failed query keeps
// the stream open; the client retains its last known-good snapshot and the
// next change triggers another attempt.
func (h *Handler) sendSnapshot(c *gin.Context, snapshot snapshotFunc) {
	data, err := snapshot(c.Request.Context())
	if err != nil {
		slog.Error("snapshot query failed", "error", err)
		return
	}
	c.SSEvent("snapshot", data)
	c.Writer.Flush()
}
