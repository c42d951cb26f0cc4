package dto

import "github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"

// ── 占用视图 / 校历模块 DTO ──

// DateQuery 日期查询参数；date 为空时取今天
type DateQuery struct {
	Date string `form:"date"` // "2025-10-08"
}

// OccupancyQuery 占用视图查询参数
type OccupancyQuery struct {
	Date string `form:"date"`
	Mode string `form:"mode" binding:"omitempty,oneof=auto regular exam f2f"`
}

// ViewMode 请求的视图模式，缺省为 auto
func (q *OccupancyQuery) ViewMode() schedule.ViewMode {
	return schedule.ParseViewMode(q.Mode)
}

// ImportCalendarQuery ICS 导入参数
type ImportCalendarQuery struct {
	Kind string `form:"kind"` // 无法从 CATEGORIES 推断时的事件类型，缺省 holiday
}
