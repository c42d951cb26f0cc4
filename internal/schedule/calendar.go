package schedule

import (
	"strings"
	"time"
)

// ── 星期 ──

// 规范化星期代码（周一为一周第一天）
var weekdayCodes = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

var weekdayLabels = map[string]string{
	"MON": "Monday",
	"TUE": "Tuesday",
	"WED": "Wednesday",
	"THU": "Thursday",
	"FRI": "Friday",
	"SAT": "Saturday",
	"SUN": "Sunday",
}

// weekdayTokens 上游星期写法 → 规范代码
var weekdayTokens = map[string]string{
	"m": "MON", "mo": "MON", "mon": "MON", "monday": "MON",
	"t": "TUE", "tu": "TUE", "tue": "TUE", "tues": "TUE", "tuesday": "TUE",
	"w": "WED", "we": "WED", "wed": "WED", "wednesday": "WED",
	"th": "THU", "thu": "THU", "thur": "THU", "thurs": "THU", "thursday": "THU", "r": "THU",
	"f": "FRI", "fr": "FRI", "fri": "FRI", "friday": "FRI",
	"s": "SAT", "sa": "SAT", "sat": "SAT", "saturday": "SAT",
	"su": "SUN", "sun": "SUN", "sunday": "SUN", "u": "SUN",
}

// NormalizeWeekday 单个星期写法 → MON…SUN，无法识别返回 ""
func NormalizeWeekday(s string) string {
	return weekdayTokens[strings.Trim(lower(s), ".")]
}

// ParseWeekdays 解析逗号 / 斜杠 / 连字符 / 空白分隔的面授日，去重并保持出现顺序
func ParseWeekdays(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == '|' || r == '-' || r == ' ' || r == '\t'
	})
	seen := make(map[string]bool, len(fields))
	days := make([]string, 0, len(fields))
	add := func(code string) {
		if code == "" || seen[code] {
			return
		}
		seen[code] = true
		days = append(days, code)
	}
	for _, f := range fields {
		if code := NormalizeWeekday(f); code != "" {
			add(code)
			continue
		}
		for _, code := range splitCompactDays(f) {
			add(code)
		}
	}
	return days
}

// compactDayPrefixes 紧凑写法中的多字母星期，按长度从长到短匹配
var compactDayPrefixes = []struct {
	prefix string
	code   string
}{
	{"MON", "MON"}, {"TUE", "TUE"}, {"WED", "WED"}, {"THU", "THU"}, {"FRI", "FRI"}, {"SAT", "SAT"}, {"SUN", "SUN"},
	{"MO", "MON"}, {"TU", "TUE"}, {"WE", "WED"}, {"TH", "THU"}, {"FR", "FRI"}, {"SA", "SAT"}, {"SU", "SUN"},
}

var compactDayLetters = map[byte]string{
	'M': "MON", 'T': "TUE", 'W': "WED", 'R': "THU", 'F': "FRI", 'S': "SAT", 'U': "SUN",
}

// splitCompactDays 解析紧凑写法 "MWF"、"TTh"、"TuTh"、"MoWeFr"、"SaSu"，遇到无法识别的字符整体放弃
func splitCompactDays(s string) []string {
	u := strings.ToUpper(strings.TrimSpace(s))
	var out []string
scan:
	for i := 0; i < len(u); {
		for _, p := range compactDayPrefixes {
			if strings.HasPrefix(u[i:], p.prefix) {
				out, i = append(out, p.code), i+len(p.prefix)
				continue scan
			}
		}
		code, ok := compactDayLetters[u[i]]
		if !ok {
			return nil
		}
		out, i = append(out, code), i+1
	}
	return out
}

// WeekdayCode time.Weekday → 规范代码
func WeekdayCode(wd time.Weekday) string {
	return weekdayCodes[(int(wd)+6)%7]
}

// WeekWindow 返回包含 anchor 的、以周一开头的 7 天窗口
func WeekWindow(anchor time.Time) []WeekDay {
	d := DateOnly(anchor)
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -offset)
	days := make([]WeekDay, 0, 7)
	for i, code := range weekdayCodes {
		days = append(days, WeekDay{
			Code:  code,
			Label: weekdayLabels[code],
			Date:  monday.AddDate(0, 0, i),
		})
	}
	return days
}

// ── 校历标注 ──

// DayMode 当日教学形式
type DayMode string

const (
	DayModeNone         DayMode = ""
	DayModeAsynchronous DayMode = "asynchronous"
	DayModeNoClass      DayMode = "no_class"
)

// Holiday 节假日信息
type Holiday struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DayEvent 当日命名事件
type DayEvent struct {
	Event string `json:"event"`
	Type  string `json:"type"`
	Mode  string `json:"mode"`
}

// Annotation 日期标注结果
type Annotation struct {
	Holiday        *Holiday   `json:"holiday"`
	Events         []DayEvent `json:"events"`
	Mode           DayMode    `json:"mode"`
	IsAutoExamDate bool       `json:"is_auto_exam_date"`
}

// ParseEventKind 识别事件类型，无法识别返回 ""
func ParseEventKind(s string) EventKind {
	switch strings.NewReplacer("_", "-", " ", "-").Replace(lower(s)) {
	case "holiday", "regular-holiday", "special-holiday", "public-holiday", "special-non-working-holiday":
		return KindHoliday
	case "exam-period", "exam", "examination", "exams":
		return KindExamPeriod
	case "async", "asynchronous":
		return KindAsync
	case "no-class", "noclass", "suspension", "class-suspension":
		return KindNoClass
	case "event":
		return KindEvent
	}
	return ""
}

// Annotate 按校历配置标注一天。
//
// 多条记录命中同一天时：no_class 优先于 asynchronous；节假日取第一条命中；
// 命名事件按输入顺序全部列出。
func Annotate(date time.Time, cfg CalendarConfig) Annotation {
	ann := Annotation{Events: []DayEvent{}}
	for _, e := range cfg.Events {
		if !e.Covers(date) {
			continue
		}
		switch e.Kind {
		case KindHoliday:
			if ann.Holiday == nil {
				ann.Holiday = &Holiday{Name: e.Name, Type: e.Type}
			}
		case KindExamPeriod:
			ann.IsAutoExamDate = true
		case KindAsync:
			ann.Mode = strongerMode(ann.Mode, DayModeAsynchronous)
		case KindNoClass:
			ann.Mode = strongerMode(ann.Mode, DayModeNoClass)
		default:
			ann.Events = append(ann.Events, DayEvent{Event: e.Name, Type: e.Type, Mode: e.Mode})
			if m := parseDayMode(e.Mode); m != DayModeNone {
				ann.Mode = strongerMode(ann.Mode, m)
			}
		}
	}
	return ann
}

func parseDayMode(s string) DayMode {
	switch strings.NewReplacer("-", "_", " ", "_").Replace(lower(s)) {
	case "asynchronous", "async":
		return DayModeAsynchronous
	case "no_class", "noclass":
		return DayModeNoClass
	}
	return DayModeNone
}

func strongerMode(cur, next DayMode) DayMode {
	if cur == DayModeNoClass || next == DayModeNone {
		return cur
	}
	return next
}

// ── 模式选择 ──

// NoticeNoExamData 请求考试视图但当日无考试安排时的提示
const NoticeNoExamData = "no exam data"

// ModeDecision 渲染模式决策
type ModeDecision struct {
	Requested ViewMode `json:"requested"`
	Mode      Mode     `json:"mode"`
	FellBack  bool     `json:"fell_back"`
	Notice    string   `json:"notice,omitempty"`
}

// HasExamData 是否存在当日的考试安排
func HasExamData(meetings []CourseMeeting, day string) bool {
	for _, m := range meetings {
		if m.ExamDay != "" && m.ExamDay == day {
			return true
		}
	}
	return false
}

// SelectMode 决定当日的渲染模式。
//
//   - exam：有考试数据才进入考试模式，否则回退面授并给出提示
//   - auto：考试周且有考试数据时进入考试模式；考试周无数据同样回退并提示
//   - regular：始终面授
func SelectMode(requested ViewMode, ann Annotation, meetings []CourseMeeting, day string) ModeDecision {
	dec := ModeDecision{Requested: requested, Mode: ModeRegular}
	wantExam := requested == ViewExam || (requested != ViewRegular && ann.IsAutoExamDate)
	if !wantExam {
		return dec
	}
	if HasExamData(meetings, day) {
		dec.Mode = ModeExam
		return dec
	}
	dec.FellBack = true
	dec.Notice = NoticeNoExamData
	return dec
}
