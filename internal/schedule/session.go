package schedule

import (
	"math"
	"strings"
)

// 时段分界（当日分钟数）
const (
	afternoonStartMinutes = 720  // 12:00
	eveningStartMinutes   = 1020 // 17:00
)

// Classify 将一次课归入上午 / 下午 / 晚上。
//
// 显式标签（不区分大小写的子串 "morn" / "after" / "even"）优先；
// 否则按开始时间划分：< 720 上午，< 1020 下午，其余晚上。
// startMinutes 非有限值时默认上午。
func Classify(label string, startMinutes float64) Session {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "morn"):
		return SessionMorning
	case strings.Contains(l, "after"):
		return SessionAfternoon
	case strings.Contains(l, "even"):
		return SessionEvening
	}
	if math.IsNaN(startMinutes) || math.IsInf(startMinutes, 0) {
		return SessionMorning
	}
	switch {
	case startMinutes < afternoonStartMinutes:
		return SessionMorning
	case startMinutes < eveningStartMinutes:
		return SessionAfternoon
	default:
		return SessionEvening
	}
}

// ParseSession 将任意文本解析为 Session，无法识别时 ok=false
func ParseSession(s string) (Session, bool) {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "morn"):
		return SessionMorning, true
	case strings.Contains(l, "after"):
		return SessionAfternoon, true
	case strings.Contains(l, "even"):
		return SessionEvening, true
	}
	return "", false
}

// sessionOf 按模式取标签与时间字段
func sessionOf(m CourseMeeting, mode Mode) Session {
	if mode == ModeExam {
		return Classify(m.ExamSession, m.ExamStartMinutes)
	}
	return Classify(m.SessionLabel, m.StartMinutes)
}
