package handler

import (
	"trackforge/internal/pkg/response"
	"trackforge/internal/queue"

	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	q *queue.Queue
}

func NewQueueHandler(q *queue.Queue) *QueueHandler {
	return &QueueHandler{q: q}
}

func (h *QueueHandler) Status(c *gin.Context) {
	response.Success(c, h.q.Status())
}

// Process kicks the dispatcher without waiting for a cron tick; the queue
// still enforces its own spacing and backoff, this only wakes it early.
func (h *QueueHandler) Process(c *gin.Context) {
	h.q.Kick()
	response.Success(c, nil)
}
