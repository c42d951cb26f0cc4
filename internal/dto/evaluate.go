package dto

import "github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"

// ── 无状态计算 DTO ──

// EvaluateUnassignedRequest 对原始记录计算待分配课程
type EvaluateUnassignedRequest struct {
	Curriculum  []schedule.Record `json:"curriculum" binding:"max=5000"`
	Meetings    []schedule.Record `json:"meetings"   binding:"max=20000"`
	ProgramCode string            `json:"program_code"`
	YearLevel   string            `json:"year_level"`
	Semester    string            `json:"semester"`
	BlockCode   string            `json:"block_code"`
	Q           string            `json:"q"`
	Sort        string            `json:"sort"  binding:"omitempty,oneof=program code title units year"`
	Order       string            `json:"order" binding:"omitempty,oneof=asc desc"`
}

// Filter 转换为计算核心的筛选条件
func (r *EvaluateUnassignedRequest) Filter() schedule.UnassignedFilter {
	q := UnassignedQuery{
		Program: r.ProgramCode, Year: r.YearLevel, Semester: r.Semester, Block: r.BlockCode,
		Q: r.Q, Sort: r.Sort, Order: r.Order,
	}
	return q.Filter()
}

// EvaluateOccupancyRequest 对原始记录构建占用视图
type EvaluateOccupancyRequest struct {
	Meetings []schedule.Record `json:"meetings" binding:"max=20000"`
	Calendar []schedule.Record `json:"calendar" binding:"max=2000"`
	Date     string            `json:"date"`
	Mode     string            `json:"mode" binding:"omitempty,oneof=auto regular exam f2f"`
}
