package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/dto"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// CalendarHandler 校历模块 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Annotate 标注单日
// GET /api/v1/calendar/annotate?date=2025-10-08
func (h *CalendarHandler) Annotate(c *gin.Context) {
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	date, ann, err := h.calendarSvc.Annotate(c.Request.Context(), q.Date)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, gin.H{"date": date.Format("2006-01-02"), "annotation": ann})
}

// Week 一周视图（周一开始）
// GET /api/v1/calendar/week?date=2025-10-08
func (h *CalendarHandler) Week(c *gin.Context) {
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	days, err := h.calendarSvc.Week(c.Request.Context(), q.Date)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, gin.H{"list": days})
}

// ImportICS 导入 ICS 节假日订阅
// POST /api/v1/calendar/import?kind=holiday
// 支持 multipart 字段 file，或直接以 text/calendar 作为请求体
func (h *CalendarHandler) ImportICS(c *gin.Context) {
	var q dto.ImportCalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var body io.Reader = c.Request.Body
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, 10001, "无法读取上传文件")
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.calendarSvc.ImportICS(c.Request.Context(), body, q.Kind)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, result)
}

// handleCalendarError 统一处理校历模块业务错误
func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrICSParseFail):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20002, "ICS 文件解析失败", err.Error())
	case errors.Is(err, service.ErrICSNoEvents):
		response.BadRequest(c, 20003, "ICS 文件中没有可导入的事件")
	case errors.Is(err, service.ErrInvalidKind):
		response.BadRequest(c, 20004, "无效的校历事件类型")
	case errors.Is(err, service.ErrICSImportClosed):
		response.Forbidden(c, 20005, "ICS 导入功能未开启")
	default:
		handleSnapshotError(c, err)
	}
}
