package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/dto"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// CurriculumHandler 课程计划 / 分配模块 HTTP 处理器
type CurriculumHandler struct {
	curriculumSvc service.CurriculumService
}

// NewCurriculumHandler 创建 CurriculumHandler
func NewCurriculumHandler(curriculumSvc service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{curriculumSvc: curriculumSvc}
}

// ListUnassigned 待分配课程
// GET /api/v1/curriculum/unassigned?program=BSCS&year=1&semester=1st&block=BSCS-1A&sort=code&order=asc
func (h *CurriculumHandler) ListUnassigned(c *gin.Context) {
	var q dto.UnassignedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	result, err := h.curriculumSvc.ListUnassigned(c.Request.Context(), q.Filter())
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportCurriculum 导入课程计划
// POST /api/v1/curriculum/import
// multipart 字段 file 为 .xlsx；否则按 JSON {"records": [...]} 解析
func (h *CurriculumHandler) ImportCurriculum(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, 10001, "缺少上传文件 file")
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, 10001, "无法读取上传文件")
			return
		}
		defer f.Close()

		result, err := h.curriculumSvc.ImportXLSX(c.Request.Context(), f, callerID)
		if err != nil {
			h.handleCurriculumError(c, err)
			return
		}
		response.OK(c, result)
		return
	}

	var req dto.ImportCurriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.curriculumSvc.ImportRecords(c.Request.Context(), req.Records, callerID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.OK(c, result)
}

// AssignCourses 批量分配待分配课程给授课教师
// POST /api/v1/curriculum/assignments
func (h *CurriculumHandler) AssignCourses(c *gin.Context) {
	var req dto.AssignCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.curriculumSvc.Assign(c.Request.Context(), service.AssignInput{
		ProgramCode: req.ProgramCode,
		YearLevel:   req.YearLevel,
		Semester:    req.Semester,
		BlockCode:   req.BlockCode,
		CourseCodes: req.CourseCodes,
		Faculty:     schedule.FacultyRef{ID: req.FacultyID, Name: req.FacultyName},
		SchoolYear:  req.SchoolYear,
	}, callerID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.Created(c, result)
}

// handleCurriculumError 统一处理课程计划 / 分配模块业务错误
func (h *CurriculumHandler) handleCurriculumError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFilterRequired):
		response.BadRequest(c, 21001, "semester 与 block 为必填筛选条件")
	case errors.Is(err, service.ErrImportEmpty):
		response.BadRequest(c, 21002, "导入数据为空")
	case errors.Is(err, service.ErrImportFileInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21003, "无法读取导入的 Excel 文件", err.Error())
	case errors.Is(err, service.ErrImportMissingProgram):
		response.BadRequest(c, 21004, "存在缺少专业代码的课程计划记录")
	case errors.Is(err, service.ErrAssignmentRejected):
		response.Unprocessable(c, 21005, "分配请求未通过校验：需选择课程、指定班级与授课教师")
	case errors.Is(err, service.ErrCourseNotUnassigned):
		response.Conflict(c, 21006, "所选课程不在待分配列表中", err.Error())
	default:
		handleSnapshotError(c, err)
	}
}
