package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/dto"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// EvaluateHandler 无状态计算 HTTP 处理器（调用方自带原始记录）
type EvaluateHandler struct {
	evaluateSvc service.EvaluateService
}

// NewEvaluateHandler 创建 EvaluateHandler
func NewEvaluateHandler(evaluateSvc service.EvaluateService) *EvaluateHandler {
	return &EvaluateHandler{evaluateSvc: evaluateSvc}
}

// Unassigned 对原始记录计算待分配课程
// POST /api/v1/evaluate/unassigned
func (h *EvaluateHandler) Unassigned(c *gin.Context) {
	var req dto.EvaluateUnassignedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	items, err := h.evaluateSvc.Unassigned(req.Curriculum, req.Meetings, req.Filter())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// Occupancy 对原始记录构建占用视图
// POST /api/v1/evaluate/occupancy
func (h *EvaluateHandler) Occupancy(c *gin.Context) {
	var req dto.EvaluateOccupancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	view, err := h.evaluateSvc.Occupancy(req.Meetings, req.Calendar, req.Date, schedule.ParseViewMode(req.Mode))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			response.BadRequest(c, 20001, "日期格式无效，应为 YYYY-MM-DD")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, view)
}
