package service

import (
	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/model"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 持久化模型 → 计算核心类型 ──

func meetingFromModel(m model.ClassSchedule) schedule.CourseMeeting {
	facultyID := ""
	if m.FacultyID != nil {
		facultyID = *m.FacultyID
	}
	return schedule.CourseMeeting{
		ID:               m.ClassScheduleID,
		FacultyID:        facultyID,
		FacultyName:      m.FacultyName,
		ProgramCode:      m.ProgramCode,
		BlockCode:        m.BlockCode,
		CourseCode:       m.CourseCode,
		CourseTitle:      m.CourseTitle,
		Units:            m.Units,
		YearLevel:        m.YearLevel,
		Semester:         m.Semester,
		Term:             m.Term,
		SchoolYear:       m.SchoolYear,
		Room:             m.Room,
		F2FDays:          schedule.ParseWeekdays(m.F2FSched),
		SessionLabel:     m.Session,
		StartMinutes:     schedule.ParseClockMinutes(m.StartTime),
		ExamDay:          schedule.NormalizeWeekday(m.ExamDay),
		ExamRoom:         m.ExamRoom,
		ExamSession:      m.ExamSession,
		ExamStartMinutes: schedule.ParseClockMinutes(m.ExamTime),
	}
}

func curriculumFromModel(c model.ProspectusCourse) schedule.CurriculumEntry {
	return schedule.CurriculumEntry{
		ID:          c.ProspectusCourseID,
		ProgramCode: c.ProgramCode,
		CourseCode:  c.CourseCode,
		CourseTitle: c.CourseTitle,
		Units:       c.Units,
		YearLevel:   c.YearLevel,
		Semester:    c.Semester,
	}
}

func calendarEventFromModel(e model.CalendarEvent) (schedule.CalendarEvent, bool) {
	kind := schedule.ParseEventKind(e.Kind)
	if kind == "" {
		return schedule.CalendarEvent{}, false
	}
	out := schedule.CalendarEvent{
		Kind:  kind,
		Name:  e.Name,
		Type:  e.Type,
		Mode:  e.Mode,
		Start: schedule.DateOnly(e.StartDate),
	}
	if e.EndDate != nil {
		out.End = schedule.DateOnly(*e.EndDate)
	}
	return out, true
}

// calendarFromConfig 将配置文件中的校历段转换为事件列表（已由 config.Validate 校验格式）
func calendarFromConfig(cfg config.CalendarConfig, logger *zap.Logger) []schedule.CalendarEvent {
	groups := []struct {
		kind    schedule.EventKind
		entries []config.CalendarEntry
	}{
		{schedule.KindExamPeriod, cfg.ExamPeriods},
		{schedule.KindHoliday, cfg.Holidays},
		{schedule.KindAsync, cfg.Async},
		{schedule.KindNoClass, cfg.NoClass},
		{schedule.KindEvent, cfg.Events},
	}

	var events []schedule.CalendarEvent
	for _, g := range groups {
		for _, entry := range g.entries {
			start, ok := schedule.ParseDate(entry.Start)
			if !ok {
				logger.Warn("忽略无法解析的校历配置", zap.String("name", entry.Name), zap.String("start", entry.Start))
				continue
			}
			end, _ := schedule.ParseDate(entry.End)
			events = append(events, schedule.CalendarEvent{
				Kind:  g.kind,
				Name:  entry.Name,
				Type:  entry.Type,
				Mode:  entry.Mode,
				Start: start,
				End:   end,
			})
		}
	}
	return events
}
