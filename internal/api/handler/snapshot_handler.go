package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// SnapshotHandler 数据快照 HTTP 处理器
type SnapshotHandler struct {
	snapshotSvc service.SnapshotService
}

// NewSnapshotHandler 创建 SnapshotHandler
func NewSnapshotHandler(snapshotSvc service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotSvc: snapshotSvc}
}

// Refresh 强制重新装载数据快照
// POST /api/v1/snapshots/refresh
func (h *SnapshotHandler) Refresh(c *gin.Context) {
	snap, err := h.snapshotSvc.Refresh(c.Request.Context())
	if err != nil {
		handleSnapshotError(c, err)
		return
	}

	response.OK(c, snap.Stats())
}

// Current 当前快照概要
// GET /api/v1/snapshots/current
func (h *SnapshotHandler) Current(c *gin.Context) {
	snap, err := h.snapshotSvc.Current(c.Request.Context())
	if err != nil {
		handleSnapshotError(c, err)
		return
	}

	response.OK(c, snap.Stats())
}
