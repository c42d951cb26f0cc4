package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/dto"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// OccupancyHandler 占用视图模块 HTTP 处理器
type OccupancyHandler struct {
	occupancySvc service.OccupancyService
}

// NewOccupancyHandler 创建 OccupancyHandler
func NewOccupancyHandler(occupancySvc service.OccupancyService) *OccupancyHandler {
	return &OccupancyHandler{occupancySvc: occupancySvc}
}

// GetOccupancy 教室 × 时段 占用视图
// GET /api/v1/occupancy?date=2025-10-08&mode=auto
func (h *OccupancyHandler) GetOccupancy(c *gin.Context) {
	var q dto.OccupancyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	view, err := h.occupancySvc.Occupancy(c.Request.Context(), q.Date, q.ViewMode())
	if err != nil {
		h.handleOccupancyError(c, err)
		return
	}

	response.OK(c, view)
}

// GetChart 占用热力图（HTML）
// GET /api/v1/occupancy/chart?date=2025-10-08&mode=auto
func (h *OccupancyHandler) GetChart(c *gin.Context) {
	var q dto.OccupancyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	html, err := h.occupancySvc.Chart(c.Request.Context(), q.Date, q.ViewMode())
	if err != nil {
		h.handleOccupancyError(c, err)
		return
	}

	response.HTML(c, html)
}

// handleOccupancyError 统一处理占用视图模块业务错误
func (h *OccupancyHandler) handleOccupancyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrChartDisabled):
		response.Forbidden(c, 20006, "占用热力图功能未开启")
	case errors.Is(err, service.ErrChartRenderFail):
		response.InternalError(c)
	default:
		handleSnapshotError(c, err)
	}
}
