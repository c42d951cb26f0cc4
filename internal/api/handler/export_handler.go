package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/dto"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportOccupancy 导出占用网格
// GET /api/v1/export/occupancy?date=2025-10-08&mode=auto
func (h *ExportHandler) ExportOccupancy(c *gin.Context) {
	var q dto.OccupancyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportOccupancy(c.Request.Context(), q.Date, q.ViewMode())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, buf, filename)
}

// ExportUnassigned 导出待分配课程
// GET /api/v1/export/unassigned?semester=1st&block=BSCS-1A
func (h *ExportHandler) ExportUnassigned(c *gin.Context) {
	var q dto.UnassignedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	buf, filename, err := h.exportSvc.ExportUnassigned(c.Request.Context(), q.Filter())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeXLSX(c, buf, filename)
}

func writeXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrFilterRequired):
		response.BadRequest(c, 21001, "semester 与 block 为必填筛选条件")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleSnapshotError(c, err)
	}
}
