package schedule

import (
	"strings"
	"unicode"
)

// ── 规范化 ──
//
// 学期等价类的边界由校历子系统约定：
//   1st ≡ 1st Semester ≡ First Semester ≡ 1 ≡ 1st Sem
//   2nd ≡ 2nd Semester ≡ Second Semester ≡ 2
//   summer ≡ Summer ≡ Summer Term ≡ Midyear ≡ 3rd
// 其余取值按小写、压缩空白后原样比较。

const (
	SemesterFirst  = "1st"
	SemesterSecond = "2nd"
	SemesterSummer = "summer"
)

var semesterLabels = map[string]string{
	SemesterFirst:  "1st Semester",
	SemesterSecond: "2nd Semester",
	SemesterSummer: "Summer",
}

// NormalizeSemester 返回学期等价类的规范键
func NormalizeSemester(s string) string {
	t := collapseSpaces(lower(s))
	if t == "" {
		return ""
	}
	t = strings.TrimSuffix(t, ".")
	for _, suffix := range []string{" semester", " sem", " term"} {
		t = strings.TrimSuffix(t, suffix)
	}
	switch t {
	case "1", "1st", "first", "i":
		return SemesterFirst
	case "2", "2nd", "second", "ii":
		return SemesterSecond
	case "3", "3rd", "third", "summer", "midyear", "mid-year", "mid year":
		return SemesterSummer
	}
	return t
}

// SemesterLabel 规范化后的展示名
func SemesterLabel(s string) string {
	key := NormalizeSemester(s)
	if label, ok := semesterLabels[key]; ok {
		return label
	}
	return strings.TrimSpace(s)
}

// NormalizeBlock 班级代码：大写、去除全部空白
func NormalizeBlock(s string) string {
	return stripSpaces(strings.ToUpper(s))
}

// NormalizeCode 课程代码：大写、去除全部空白（"it 101" ≡ "IT101"）
func NormalizeCode(s string) string {
	return stripSpaces(strings.ToUpper(s))
}

// NormalizeTitle 课程名称：小写、压缩空白
func NormalizeTitle(s string) string {
	return collapseSpaces(lower(s))
}

// NormalizeProgram 专业代码
func NormalizeProgram(s string) string {
	return collapseSpaces(strings.ToUpper(strings.TrimSpace(s)))
}

// yearDigit 取年级中的第一个数字（"2nd Year" → '2'），无数字返回 0
func yearDigit(s string) rune {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return r
		}
	}
	return 0
}

// isWildcard 筛选条件的通配值
func isWildcard(s string) bool {
	switch lower(s) {
	case "", "all", "*", "any":
		return true
	}
	return false
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
