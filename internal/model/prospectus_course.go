package model

// ProspectusCourse 课程计划（Prospectus）表 — 对应 prospectus_courses
type ProspectusCourse struct {
	ProspectusCourseID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"prospectus_course_id"`
	ProgramCode        string  `gorm:"type:varchar(30);not null;index"                json:"program_code"`
	CourseCode         string  `gorm:"type:varchar(50);not null"                      json:"course_code"`
	CourseTitle        string  `gorm:"type:varchar(255);not null"                     json:"course_title"`
	Units              float64 `gorm:"type:numeric(4,1);not null;default:0"           json:"units"`
	YearLevel          string  `gorm:"type:varchar(20);not null"                      json:"year_level"`
	Semester           string  `gorm:"type:varchar(30);not null"                      json:"semester"`
	SoftDeleteModel
}

// TableName 指定表名
func (ProspectusCourse) TableName() string { return "prospectus_courses" }
