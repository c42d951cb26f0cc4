package dto

import (
	"strings"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 课程计划 / 分配模块 DTO ──

// UnassignedQuery 待分配课程查询参数
type UnassignedQuery struct {
	Program  string `form:"program"`
	Year     string `form:"year"`
	Semester string `form:"semester" binding:"required"`
	Block    string `form:"block"    binding:"required"`
	Q        string `form:"q"        binding:"max=100"`
	Sort     string `form:"sort"     binding:"omitempty,oneof=program code title units year"`
	Order    string `form:"order"    binding:"omitempty,oneof=asc desc"`
}

// Filter 转换为计算核心的筛选条件
func (q *UnassignedQuery) Filter() schedule.UnassignedFilter {
	return schedule.UnassignedFilter{
		ProgramCode: q.Program,
		YearLevel:   q.Year,
		Semester:    q.Semester,
		BlockCode:   q.Block,
		Query:       strings.TrimSpace(q.Q),
		SortKey:     schedule.ParseSortKey(q.Sort),
		Descending:  q.Order == "desc",
	}
}

// ImportCurriculumRequest JSON 方式导入课程计划（字段名按别名表容错）
type ImportCurriculumRequest struct {
	Records []schedule.Record `json:"records" binding:"required,min=1,max=5000"`
}

// AssignCoursesRequest 批量分配请求
type AssignCoursesRequest struct {
	ProgramCode string   `json:"program_code" binding:"omitempty,max=30"`
	YearLevel   string   `json:"year_level"   binding:"omitempty,max=20"`
	Semester    string   `json:"semester"     binding:"required,max=30"`
	BlockCode   string   `json:"block_code"   binding:"required,max=50"`
	CourseCodes []string `json:"course_codes" binding:"omitempty,max=100,dive,max=50"`
	FacultyID   string   `json:"faculty_id"   binding:"omitempty,max=64"`
	FacultyName string   `json:"faculty_name" binding:"omitempty,max=150"`
	SchoolYear  string   `json:"school_year"  binding:"omitempty,max=20"`
}
