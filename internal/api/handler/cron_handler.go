package handler

import (
	"trackforge/internal/pkg/cron"
	"trackforge/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type CronHandler struct {
	mgr *cron.Manager
}

func NewCronHandler(mgr *cron.Manager) *CronHandler {
	return &CronHandler{mgr: mgr}
}

func (h *CronHandler) Trigger(c *gin.Context) {
	h.mgr.TriggerNow()
	response.Success(c, nil)
}

func (h *CronHandler) Schedule(c *gin.Context) {
	response.Success(c, h.mgr.Schedule())
}
