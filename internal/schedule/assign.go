package schedule

import "strings"

// FacultyRef 目标教师：ID 或姓名至少其一
type FacultyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AssignmentTarget 批量分配的目标
type AssignmentTarget struct {
	BlockCode  string
	Faculty    FacultyRef
	SchoolYear string
	Semester   string
}

// AssignmentItem 规范化后的单门课程
type AssignmentItem struct {
	ProgramCode string  `json:"program_code"`
	CourseCode  string  `json:"course_code"`
	CourseTitle string  `json:"course_title"`
	Units       float64 `json:"units"`
	YearLevel   string  `json:"year_level"`
	Semester    string  `json:"semester"`
}

// AssignmentHeader 批量分配的公共字段
type AssignmentHeader struct {
	BlockCode   string `json:"block_code"`
	FacultyID   string `json:"faculty_id"`
	FacultyName string `json:"faculty_name"`
	SchoolYear  string `json:"school_year"`
	Semester    string `json:"semester"`
}

// AssignmentRequest 校验通过后交给持久化方的创建请求
type AssignmentRequest struct {
	Header AssignmentHeader `json:"header"`
	Items  []AssignmentItem `json:"items"`
}

// ValidateAssignment 校验批量分配并生成规范化请求。
//
// 通过条件：选择非空、目标班级非空、教师有 ID 或非空姓名。
// 未通过时返回零值与 false。同一课程代码重复选择只保留第一条。
func ValidateAssignment(selection []CurriculumEntry, target AssignmentTarget) (AssignmentRequest, bool) {
	block := strings.TrimSpace(target.BlockCode)
	facultyID := strings.TrimSpace(target.Faculty.ID)
	facultyName := strings.TrimSpace(target.Faculty.Name)
	if len(selection) == 0 || block == "" || (facultyID == "" && facultyName == "") {
		return AssignmentRequest{}, false
	}

	seen := make(map[string]bool, len(selection))
	items := make([]AssignmentItem, 0, len(selection))
	for _, e := range selection {
		key := NormalizeCode(e.CourseCode)
		if key == "" {
			key = "title:" + NormalizeTitle(e.CourseTitle)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, AssignmentItem{
			ProgramCode: NormalizeProgram(e.ProgramCode),
			CourseCode:  collapseSpaces(strings.ToUpper(e.CourseCode)),
			CourseTitle: collapseSpaces(e.CourseTitle),
			Units:       e.Units,
			YearLevel:   strings.TrimSpace(e.YearLevel),
			Semester:    SemesterLabel(e.Semester),
		})
	}

	semester := SemesterLabel(target.Semester)
	if semester == "" && len(items) > 0 {
		semester = items[0].Semester
	}

	return AssignmentRequest{
		Header: AssignmentHeader{
			BlockCode:   collapseSpaces(block),
			FacultyID:   facultyID,
			FacultyName: facultyName,
			SchoolYear:  strings.TrimSpace(target.SchoolYear),
			Semester:    semester,
		},
		Items: items,
	}, true
}
