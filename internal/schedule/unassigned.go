package schedule

import (
	"sort"
	"strings"
)

// SortKey 待分配课程排序字段
type SortKey string

const (
	SortNone    SortKey = ""
	SortProgram SortKey = "program"
	SortCode    SortKey = "code"
	SortTitle   SortKey = "title"
	SortUnits   SortKey = "units"
	SortYear    SortKey = "year"
)

// ParseSortKey 未识别的字段返回 SortNone（保持原顺序）
func ParseSortKey(s string) SortKey {
	switch SortKey(lower(s)) {
	case SortProgram, "programcode", "program_code":
		return SortProgram
	case SortCode, "course_code", "course_name", "coursename":
		return SortCode
	case SortTitle, "course_title", "coursetitle":
		return SortTitle
	case SortUnits, "unit":
		return SortUnits
	case SortYear, "yearlevel", "year_level":
		return SortYear
	}
	return SortNone
}

// UnassignedFilter 待分配课程查询条件。Semester 与 BlockCode 必填。
type UnassignedFilter struct {
	ProgramCode string  `json:"program_code"`
	YearLevel   string  `json:"year_level"`
	Semester    string  `json:"semester"`
	BlockCode   string  `json:"block_code"`
	Query       string  `json:"q"`
	SortKey     SortKey `json:"sort"`
	Descending  bool    `json:"descending"`
}

// scheduledIndex 目标学期 + 班级下已排课程的代码 / 名称集合
type scheduledIndex struct {
	codes  map[string]bool
	titles map[string]bool
}

func indexScheduled(meetings []CourseMeeting, semester, block string) scheduledIndex {
	idx := scheduledIndex{codes: make(map[string]bool), titles: make(map[string]bool)}
	for _, m := range meetings {
		if NormalizeSemester(m.Semester) != semester && NormalizeSemester(m.Term) != semester {
			continue
		}
		if NormalizeBlock(m.BlockCode) != block {
			continue
		}
		if c := NormalizeCode(m.CourseCode); c != "" {
			idx.codes[c] = true
		}
		if t := NormalizeTitle(m.CourseTitle); t != "" {
			idx.titles[t] = true
		}
	}
	return idx
}

func (idx scheduledIndex) covers(e CurriculumEntry) bool {
	if c := NormalizeCode(e.CourseCode); c != "" && idx.codes[c] {
		return true
	}
	if t := NormalizeTitle(e.CourseTitle); t != "" && idx.titles[t] {
		return true
	}
	return false
}

// IsAssigned 课程在目标学期、班级下是否已有排课（代码或名称任一命中即可）
func IsAssigned(e CurriculumEntry, meetings []CourseMeeting, semester, block string) bool {
	sem, blk := NormalizeSemester(semester), NormalizeBlock(block)
	if sem == "" || blk == "" {
		return false
	}
	return indexScheduled(meetings, sem, blk).covers(e)
}

// ResolveUnassigned 计算课程计划中尚未在目标学期 / 班级排课的课程。
//
// 学期或班级为空时返回空序列，避免把整份课程计划误当作可分配。
// 返回的切片是新分配的，顺序由 SortKey 决定，键值相同时保持输入顺序。
func ResolveUnassigned(curriculum []CurriculumEntry, meetings []CourseMeeting, f UnassignedFilter) []CurriculumEntry {
	semester := NormalizeSemester(f.Semester)
	block := NormalizeBlock(f.BlockCode)
	if semester == "" || block == "" {
		return []CurriculumEntry{}
	}

	idx := indexScheduled(meetings, semester, block)
	program := NormalizeProgram(f.ProgramCode)
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]CurriculumEntry, 0, len(curriculum))
	for _, e := range curriculum {
		if !isWildcard(f.ProgramCode) && NormalizeProgram(e.ProgramCode) != program {
			continue
		}
		if !matchYear(f.YearLevel, e.YearLevel) {
			continue
		}
		if NormalizeSemester(e.Semester) != semester {
			continue
		}
		if idx.covers(e) {
			continue
		}
		if query != "" && !matchQuery(e, query) {
			continue
		}
		out = append(out, e)
	}

	sortEntries(out, f.SortKey, f.Descending)
	return out
}

// matchYear 通配或首个数字相同；筛选值无数字时退化为文本比较
func matchYear(filter, year string) bool {
	if isWildcard(filter) {
		return true
	}
	fd := yearDigit(filter)
	if fd == 0 {
		return lower(filter) == lower(year)
	}
	return fd == yearDigit(year)
}

func matchQuery(e CurriculumEntry, q string) bool {
	return strings.Contains(strings.ToLower(e.CourseCode), q) ||
		strings.Contains(strings.ToLower(e.CourseTitle), q) ||
		strings.Contains(strings.ToLower(e.ProgramCode), q)
}

func sortEntries(entries []CurriculumEntry, key SortKey, desc bool) {
	var cmp func(a, b CurriculumEntry) int
	switch key {
	case SortProgram:
		cmp = func(a, b CurriculumEntry) int { return strings.Compare(NormalizeProgram(a.ProgramCode), NormalizeProgram(b.ProgramCode)) }
	case SortCode:
		cmp = func(a, b CurriculumEntry) int { return strings.Compare(NormalizeCode(a.CourseCode), NormalizeCode(b.CourseCode)) }
	case SortTitle:
		cmp = func(a, b CurriculumEntry) int { return strings.Compare(NormalizeTitle(a.CourseTitle), NormalizeTitle(b.CourseTitle)) }
	case SortUnits:
		cmp = func(a, b CurriculumEntry) int { return compareFloat(a.Units, b.Units) }
	case SortYear:
		cmp = func(a, b CurriculumEntry) int { return compareFloat(float64(yearDigit(a.YearLevel)), float64(yearDigit(b.YearLevel))) }
	default:
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		c := cmp(entries[i], entries[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
