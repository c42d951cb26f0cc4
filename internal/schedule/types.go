// Package schedule 排课可用性网格与待分配课程解析的纯计算核心。
//
// 包内所有函数均为同步纯函数：不做 I/O、不持锁、不修改入参，
// 相同输入总是得到结构相同的输出，调用方可以按输入自由缓存结果。
// 数据获取、持久化与鉴权由 service / repository 层负责。
package schedule

import "time"

// Session 上课时段
type Session string

const (
	SessionMorning   Session = "Morning"
	SessionAfternoon Session = "Afternoon"
	SessionEvening   Session = "Evening"
)

// Sessions 按一天中的先后顺序排列
var Sessions = []Session{SessionMorning, SessionAfternoon, SessionEvening}

// Mode 网格渲染模式
type Mode string

const (
	ModeRegular Mode = "regular" // 面授课
	ModeExam    Mode = "exam"    // 考试安排
)

// ViewMode 调用方请求的视图模式（显式参数，不读取任何全局偏好）
type ViewMode string

const (
	ViewAuto    ViewMode = "auto"
	ViewRegular ViewMode = "regular"
	ViewExam    ViewMode = "exam"
)

// ParseViewMode 未识别的取值按 auto 处理
func ParseViewMode(s string) ViewMode {
	switch ViewMode(lower(s)) {
	case ViewRegular, "f2f":
		return ViewRegular
	case ViewExam, "examination":
		return ViewExam
	default:
		return ViewAuto
	}
}

// UnassignedRoom 未排教室的哨兵桶
const UnassignedRoom = "—"

// CourseMeeting 一条已排课记录（面授 + 考试安排）
type CourseMeeting struct {
	ID               string   `json:"id"`
	FacultyID        string   `json:"faculty_id"`
	FacultyName      string   `json:"faculty_name"`
	ProgramCode      string   `json:"program_code"`
	BlockCode        string   `json:"block_code"`
	CourseCode       string   `json:"course_code"`
	CourseTitle      string   `json:"course_title"`
	Units            float64  `json:"units"`
	YearLevel        string   `json:"year_level"`
	Semester         string   `json:"semester"`
	Term             string   `json:"term"`
	SchoolYear       string   `json:"school_year"`
	Room             string   `json:"room"`
	F2FDays          []string `json:"f2f_days"` // 规范化星期代码 MON…SUN
	SessionLabel     string   `json:"session_label"`
	StartMinutes     float64  `json:"-"` // NaN 表示未知
	ExamDay          string   `json:"exam_day"`
	ExamRoom         string   `json:"exam_room"`
	ExamSession      string   `json:"exam_session"`
	ExamStartMinutes float64  `json:"-"`
}

// HasF2FDay 面授日是否包含 day
func (m CourseMeeting) HasF2FDay(day string) bool {
	for _, d := range m.F2FDays {
		if d == day {
			return true
		}
	}
	return false
}

// CurriculumEntry 课程计划（Prospectus）中的一门必修课
type CurriculumEntry struct {
	ID          string  `json:"id,omitempty"`
	ProgramCode string  `json:"program_code"`
	CourseCode  string  `json:"course_code"`
	CourseTitle string  `json:"course_title"`
	Units       float64 `json:"units"`
	YearLevel   string  `json:"year_level"`
	Semester    string  `json:"semester"`
}

// EventKind 校历事件类型
type EventKind string

const (
	KindHoliday    EventKind = "holiday"
	KindExamPeriod EventKind = "exam-period"
	KindAsync      EventKind = "async"
	KindNoClass    EventKind = "no-class"
	KindEvent      EventKind = "event"
)

// CalendarEvent 校历条目；End 为零值时表示单日
type CalendarEvent struct {
	Kind  EventKind `json:"kind"`
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	Mode  string    `json:"mode"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Covers 判断日期是否落在事件区间内（按日历日比较，含首尾）
func (e CalendarEvent) Covers(date time.Time) bool {
	d := DateOnly(date)
	start := DateOnly(e.Start)
	end := start
	if !e.End.IsZero() {
		end = DateOnly(e.End)
	}
	if end.Before(start) {
		start, end = end, start
	}
	return !d.Before(start) && !d.After(end)
}

// CalendarConfig 校历配置快照（配置文件 + 数据库 + ICS 导入合并结果）
type CalendarConfig struct {
	Events []CalendarEvent
}

// WeekDay 一周视图中的一天
type WeekDay struct {
	Code  string    `json:"code"`
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}
