package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func testCalendar() CalendarConfig {
	return CalendarConfig{Events: []CalendarEvent{
		{Kind: KindExamPeriod, Name: "Midterms", Start: day(2025, 10, 6), End: day(2025, 10, 10)},
		{Kind: KindHoliday, Name: "All Saints' Day", Type: "Special Non-Working", Start: day(2025, 11, 1)},
		{Kind: KindHoliday, Name: "Duplicate", Type: "Local", Start: day(2025, 11, 1)},
		{Kind: KindAsync, Name: "Async Friday", Start: day(2025, 10, 17)},
		{Kind: KindNoClass, Name: "Typhoon", Start: day(2025, 10, 17)},
		{Kind: KindEvent, Name: "Foundation Day", Type: "institutional", Mode: "asynchronous", Start: day(2025, 10, 20)},
		{Kind: KindEvent, Name: "Sportsfest", Type: "institutional", Start: day(2025, 10, 20)},
	}}
}

func TestAnnotate_ExamWindowInclusive(t *testing.T) {
	cfg := testCalendar()
	assert.False(t, Annotate(day(2025, 10, 5), cfg).IsAutoExamDate)
	assert.True(t, Annotate(day(2025, 10, 6), cfg).IsAutoExamDate)
	assert.True(t, Annotate(day(2025, 10, 8), cfg).IsAutoExamDate)
	assert.True(t, Annotate(day(2025, 10, 10), cfg).IsAutoExamDate)
	assert.False(t, Annotate(day(2025, 10, 11), cfg).IsAutoExamDate)
}

func TestAnnotate_HolidayFirstMatch(t *testing.T) {
	ann := Annotate(day(2025, 11, 1), testCalendar())
	require.NotNil(t, ann.Holiday)
	assert.Equal(t, "All Saints' Day", ann.Holiday.Name)
	assert.Equal(t, "Special Non-Working", ann.Holiday.Type)
	assert.Equal(t, DayModeNone, ann.Mode)
}

func TestAnnotate_NoClassBeatsAsync(t *testing.T) {
	ann := Annotate(day(2025, 10, 17), testCalendar())
	assert.Equal(t, DayModeNoClass, ann.Mode)
	assert.Nil(t, ann.Holiday)
}

func TestAnnotate_EventsListedInOrder(t *testing.T) {
	ann := Annotate(day(2025, 10, 20), testCalendar())
	require.Len(t, ann.Events, 2)
	assert.Equal(t, "Foundation Day", ann.Events[0].Event)
	assert.Equal(t, "Sportsfest", ann.Events[1].Event)
	assert.Equal(t, DayModeAsynchronous, ann.Mode)
}

func TestAnnotate_EmptyConfig(t *testing.T) {
	ann := Annotate(day(2025, 1, 1), CalendarConfig{})
	assert.Nil(t, ann.Holiday)
	assert.NotNil(t, ann.Events)
	assert.Empty(t, ann.Events)
	assert.False(t, ann.IsAutoExamDate)
}

func TestSelectMode(t *testing.T) {
	withExam := []CourseMeeting{{BlockCode: "BSCS-1A", ExamDay: "MON", ExamRoom: "R101"}}
	noExam := []CourseMeeting{{BlockCode: "BSCS-1A", F2FDays: []string{"MON"}}}
	examDay := Annotation{IsAutoExamDate: true}
	plainDay := Annotation{}

	dec := SelectMode(ViewAuto, examDay, withExam, "MON")
	assert.Equal(t, ModeExam, dec.Mode)
	assert.False(t, dec.FellBack)

	dec = SelectMode(ViewAuto, plainDay, withExam, "MON")
	assert.Equal(t, ModeRegular, dec.Mode)
	assert.Empty(t, dec.Notice)

	dec = SelectMode(ViewExam, plainDay, noExam, "MON")
	assert.Equal(t, ModeRegular, dec.Mode)
	assert.True(t, dec.FellBack)
	assert.Equal(t, NoticeNoExamData, dec.Notice)

	dec = SelectMode(ViewAuto, examDay, noExam, "MON")
	assert.Equal(t, ModeRegular, dec.Mode)
	assert.Equal(t, NoticeNoExamData, dec.Notice)

	dec = SelectMode(ViewRegular, examDay, withExam, "MON")
	assert.Equal(t, ModeRegular, dec.Mode)
	assert.False(t, dec.FellBack)

	dec = SelectMode(ViewExam, plainDay, withExam, "TUE")
	assert.Equal(t, ModeRegular, dec.Mode)
	assert.True(t, dec.FellBack)
}

func TestExamFallbackRendersRegularGrid(t *testing.T) {
	meetings := []CourseMeeting{
		{BlockCode: "BSCS-1A", ProgramCode: "BSCS", Room: "R101", F2FDays: []string{"WED"}, StartMinutes: 480},
	}
	dec := SelectMode(ViewExam, Annotation{}, meetings, "WED")
	grid := BuildGrid(meetings, "WED", dec.Mode)

	assert.Equal(t, NoticeNoExamData, dec.Notice)
	assert.Equal(t, []string{"R101"}, grid.Rooms)
	assert.Len(t, grid.Cell(SessionMorning, "R101"), 1)
}

func TestWeekWindow(t *testing.T) {
	// 2025-10-08 为周三
	days := WeekWindow(time.Date(2025, 10, 8, 15, 30, 0, 0, time.UTC))
	require.Len(t, days, 7)
	assert.Equal(t, "MON", days[0].Code)
	assert.Equal(t, "Monday", days[0].Label)
	assert.Equal(t, 6, days[0].Date.Day())
	assert.Equal(t, "SUN", days[6].Code)
	assert.Equal(t, 12, days[6].Date.Day())

	// 周日锚点仍属于同一周
	sunday := WeekWindow(time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, days[0].Date, sunday[0].Date)
}

func TestParseWeekdays(t *testing.T) {
	assert.Equal(t, []string{"MON", "WED", "FRI"}, ParseWeekdays("Mon, Wed, Fri"))
	assert.Equal(t, []string{"TUE", "THU"}, ParseWeekdays("TTh"))
	assert.Equal(t, []string{"MON", "WED", "FRI"}, ParseWeekdays("MWF"))
	assert.Equal(t, []string{"SAT"}, ParseWeekdays("Sat,sat,S"))
	assert.Equal(t, []string{"TUE", "THU"}, ParseWeekdays("TuTh"))
	assert.Equal(t, []string{"MON", "WED", "FRI"}, ParseWeekdays("MoWeFr"))
	assert.Equal(t, []string{"WED", "FRI"}, ParseWeekdays("WeFr"))
	assert.Equal(t, []string{"MON", "WED", "FRI"}, ParseWeekdays("M-W-F"))
	assert.Equal(t, []string{"MON", "TUE", "WED", "THU", "FRI"}, ParseWeekdays("MTWThF"))
	assert.Equal(t, []string{"TUE", "THU"}, ParseWeekdays("TThu"))
	assert.Equal(t, []string{"SAT", "SUN"}, ParseWeekdays("SaSu"))
	assert.Empty(t, ParseWeekdays(""))
	assert.Empty(t, ParseWeekdays("xyz"))
	assert.Equal(t, "THU", WeekdayCode(time.Thursday))
	assert.Equal(t, "SUN", WeekdayCode(time.Sunday))
}
