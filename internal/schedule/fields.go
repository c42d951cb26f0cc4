package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ── 字段别名表 ──────────────────────────────────────────────
//
// 上游数据（旧教务系统导出、表格导入、前端缓存）字段命名不统一，
// 同一逻辑字段可能出现多种拼写。所有容错读取集中在 fieldAliases 中声明，
// 解码函数只按逻辑字段取值，不在业务代码里散落 a || b || c 式的回退链。
// ─────────────────────────────────────────────────────────────

// Field 逻辑字段名
type Field string

const (
	FieldID           Field = "id"
	FieldFacultyID    Field = "faculty_id"
	FieldFacultyName  Field = "faculty_name"
	FieldProgramCode  Field = "program_code"
	FieldBlockCode    Field = "block_code"
	FieldCourseCode   Field = "course_code"
	FieldCourseTitle  Field = "course_title"
	FieldUnits        Field = "units"
	FieldYearLevel    Field = "year_level"
	FieldSemester     Field = "semester"
	FieldTerm         Field = "term"
	FieldSchoolYear   Field = "school_year"
	FieldRoom         Field = "room"
	FieldF2FDays      Field = "f2f_days"
	FieldSession      Field = "session"
	FieldStartTime    Field = "start_time"
	FieldExamDay      Field = "exam_day"
	FieldExamRoom     Field = "exam_room"
	FieldExamSession  Field = "exam_session"
	FieldExamTime     Field = "exam_time"
	FieldDate         Field = "date"
	FieldEndDate      Field = "end_date"
	FieldName         Field = "name"
	FieldType         Field = "type"
	FieldKind         Field = "kind"
	FieldMode         Field = "mode"
)

// fieldAliases 逻辑字段 → 可接受的拼写（按优先级）
var fieldAliases = map[Field][]string{
	FieldID:          {"id", "_id", "schedule_id", "scheduleId"},
	FieldFacultyID:   {"facultyId", "faculty_id", "facultyID", "instructorId"},
	FieldFacultyName: {"facultyName", "faculty_name", "faculty", "instructor"},
	FieldProgramCode: {"programcode", "program", "programCode", "program_code"},
	FieldBlockCode:   {"section", "blockCode", "block_code", "block"},
	FieldCourseCode:  {"code", "courseName", "course_name", "courseCode", "course_code"},
	FieldCourseTitle: {"courseTitle", "course_title", "title", "descriptiveTitle"},
	FieldUnits:       {"unit", "units", "credit", "credits"},
	FieldYearLevel:   {"yearlevel", "yearLevel", "year_level", "year"},
	FieldSemester:    {"semester", "sem"},
	FieldTerm:        {"term"},
	FieldSchoolYear:  {"schoolYear", "school_year", "sy", "academicYear"},
	FieldRoom:        {"room", "roomCode", "room_code"},
	FieldF2FDays:     {"f2fSched", "f2f_sched", "f2fDays", "days", "day"},
	FieldSession:     {"session", "sessionLabel", "timeOfDay"},
	FieldStartTime:   {"timeStart", "time_start", "startTime", "start_time", "time"},
	FieldExamDay:     {"examDay", "exam_day"},
	FieldExamRoom:    {"examRoom", "exam_room"},
	FieldExamSession: {"examSession", "exam_session"},
	FieldExamTime:    {"examTime", "exam_time", "examStart"},
	FieldDate:        {"date", "start", "startDate", "start_date"},
	FieldEndDate:     {"end", "endDate", "end_date"},
	FieldName:        {"name", "event", "title", "localName"},
	FieldType:        {"type", "category"},
	FieldKind:        {"kind"},
	FieldMode:        {"mode"},
}

// Aliases 返回逻辑字段的全部可接受拼写（副本）
func Aliases(f Field) []string {
	a := fieldAliases[f]
	out := make([]string, len(a))
	copy(out, a)
	return out
}

// Record 已反序列化的上游记录（JSON 对象 / 表格行）
type Record map[string]any

// Text 按别名顺序返回第一个非空值的文本形式
func (r Record) Text(f Field) string {
	for _, key := range fieldAliases[f] {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(stringify(e)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// ── 解码器：永不失败，缺失值以空串 / NaN / 0 代替 ──

// DecodeCurriculum 将上游课程计划记录解码为 CurriculumEntry
func DecodeCurriculum(r Record) CurriculumEntry {
	return CurriculumEntry{
		ID:          r.Text(FieldID),
		ProgramCode: r.Text(FieldProgramCode),
		CourseCode:  r.Text(FieldCourseCode),
		CourseTitle: r.Text(FieldCourseTitle),
		Units:       ParseUnits(r.Text(FieldUnits)),
		YearLevel:   r.Text(FieldYearLevel),
		Semester:    r.Text(FieldSemester),
	}
}

// DecodeMeeting 将上游排课记录解码为 CourseMeeting
func DecodeMeeting(r Record) CourseMeeting {
	return CourseMeeting{
		ID:               r.Text(FieldID),
		FacultyID:        r.Text(FieldFacultyID),
		FacultyName:      r.Text(FieldFacultyName),
		ProgramCode:      r.Text(FieldProgramCode),
		BlockCode:        r.Text(FieldBlockCode),
		CourseCode:       r.Text(FieldCourseCode),
		CourseTitle:      r.Text(FieldCourseTitle),
		Units:            ParseUnits(r.Text(FieldUnits)),
		YearLevel:        r.Text(FieldYearLevel),
		Semester:         r.Text(FieldSemester),
		Term:             r.Text(FieldTerm),
		SchoolYear:       r.Text(FieldSchoolYear),
		Room:             r.Text(FieldRoom),
		F2FDays:          ParseWeekdays(r.Text(FieldF2FDays)),
		SessionLabel:     r.Text(FieldSession),
		StartMinutes:     ParseClockMinutes(r.Text(FieldStartTime)),
		ExamDay:          NormalizeWeekday(r.Text(FieldExamDay)),
		ExamRoom:         r.Text(FieldExamRoom),
		ExamSession:      r.Text(FieldExamSession),
		ExamStartMinutes: ParseClockMinutes(r.Text(FieldExamTime)),
	}
}

// DecodeCalendarEvent 解码节假日 / 校历记录。kind 为空时按 type 推断，
// 无法识别的统一视为普通事件。日期无法解析时 ok=false。
func DecodeCalendarEvent(r Record) (CalendarEvent, bool) {
	start, ok := ParseDate(r.Text(FieldDate))
	if !ok {
		return CalendarEvent{}, false
	}
	end, _ := ParseDate(r.Text(FieldEndDate))
	kind := ParseEventKind(r.Text(FieldKind))
	typ := r.Text(FieldType)
	if kind == "" {
		kind = ParseEventKind(typ)
	}
	if kind == "" {
		kind = KindEvent
	}
	return CalendarEvent{
		Kind:  kind,
		Name:  r.Text(FieldName),
		Type:  typ,
		Mode:  r.Text(FieldMode),
		Start: start,
		End:   end,
	}, true
}

// ParseUnits 解析学分，非法输入返回 0
func ParseUnits(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseClockMinutes 将 "08:30"、"8:30 AM"、"1:00PM"、"13:00:00" 或纯分钟数
// 解析为当日分钟数；无法解析时返回 NaN（"非有限值"）。
// 区间写法 "08:00-10:00" 只取起点；"1:00-2:30 PM" 这类只在终点标注上下午的区间，
// 起点沿用终点的标注，若因此晚于终点则改按另一半天解析（"11:00-1:00 PM" → 11:00）。
func ParseClockMinutes(s string) float64 {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "–", "-")))
	if s == "" {
		return math.NaN()
	}
	i := strings.Index(s, "-")
	if i <= 0 {
		return parseClock(s)
	}
	start, end := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	if _, ok := splitMeridiem(start); ok {
		return parseClock(start)
	}
	endMeridiem, ok := splitMeridiem(end)
	if !ok {
		return parseClock(start)
	}
	v := parseClock(start + " " + endMeridiem)
	if endMin := parseClock(end); !math.IsNaN(v) && !math.IsNaN(endMin) && v > endMin {
		other := "AM"
		if endMeridiem == "AM" {
			other = "PM"
		}
		v = parseClock(start + " " + other)
	}
	if math.IsNaN(v) {
		return parseClock(start)
	}
	return v
}

// splitMeridiem 返回时间末尾的 AM / PM 标注
func splitMeridiem(s string) (string, bool) {
	switch {
	case strings.HasSuffix(s, "AM"):
		return "AM", true
	case strings.HasSuffix(s, "PM"):
		return "PM", true
	}
	return "", false
}

// parseClock 解析单个时间点（已转大写）
func parseClock(s string) float64 {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsInf(n, 0) {
			return math.NaN()
		}
		return n
	}
	meridiem, _ := splitMeridiem(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return math.NaN()
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return math.NaN()
	}
	switch meridiem {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h < 12 {
			h += 12
		}
	}
	return float64(h*60 + m)
}

// dateLayouts 上游日期可能出现的格式
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"20060102",
}

// ParseDate 解析为本地零点日期
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}

// DateOnly 截断到日期（保留年月日，时区归一为 UTC 零点，便于比较）
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
