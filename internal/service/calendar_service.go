package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/model"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/repository"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 校历模块业务错误 ──

var (
	ErrInvalidDate     = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrICSParseFail    = errors.New("ICS 文件解析失败")
	ErrICSNoEvents     = errors.New("ICS 文件中没有可导入的事件")
	ErrInvalidKind     = errors.New("无效的校历事件类型")
	ErrICSImportClosed = errors.New("ICS 导入功能未开启")
)

// DayView 一周视图中的一天及其标注
type DayView struct {
	schedule.WeekDay
	Annotation schedule.Annotation `json:"annotation"`
}

// ImportResult 导入结果
type ImportResult struct {
	Parsed   int   `json:"parsed"`
	Skipped  int   `json:"skipped"`
	Affected int64 `json:"affected"`
}

// CalendarService 校历业务接口
type CalendarService interface {
	// ResolveDate 解析查询日期；为空时取校历时区的今天
	ResolveDate(raw string) (time.Time, error)
	Annotate(ctx context.Context, raw string) (time.Time, schedule.Annotation, error)
	Week(ctx context.Context, raw string) ([]DayView, error)
	// ImportICS 导入 ICS 节假日 / 校历订阅；defaultKind 为无法识别类型时的归类
	ImportICS(ctx context.Context, r io.Reader, defaultKind string) (*ImportResult, error)
}

type calendarService struct {
	repo      *repository.Repository
	snapshots SnapshotService
	loc       *time.Location
	enabled   bool
	logger    *zap.Logger
	now       func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, repo *repository.Repository, snapshots SnapshotService, logger *zap.Logger) CalendarService {
	return &calendarService{
		repo:      repo,
		snapshots: snapshots,
		loc:       cfg.Calendar.Location(),
		enabled:   cfg.Feature.ICSImportEnabled,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *calendarService) ResolveDate(raw string) (time.Time, error) {
	return resolveDate(raw, s.loc, s.now)
}

func resolveDate(raw string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return schedule.DateOnly(now().In(loc)), nil
	}
	d, ok := schedule.ParseDate(raw)
	if !ok {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func (s *calendarService) Annotate(ctx context.Context, raw string) (time.Time, schedule.Annotation, error) {
	date, err := s.ResolveDate(raw)
	if err != nil {
		return time.Time{}, schedule.Annotation{}, err
	}
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return time.Time{}, schedule.Annotation{}, err
	}
	return date, schedule.Annotate(date, snap.Calendar), nil
}

func (s *calendarService) Week(ctx context.Context, raw string) ([]DayView, error) {
	anchor, err := s.ResolveDate(raw)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	window := schedule.WeekWindow(anchor)
	days := make([]DayView, 0, len(window))
	for _, wd := range window {
		days = append(days, DayView{WeekDay: wd, Annotation: schedule.Annotate(wd.Date, snap.Calendar)})
	}
	return days, nil
}

// ═══════════════════════════════════════════════════════════
// ImportICS — 节假日订阅导入
// ═══════════════════════════════════════════════════════════
//
// 映射规则：
//   - SUMMARY → name，CATEGORIES → type（同时用于推断事件类型）
//   - 全天事件的 DTEND 为次日零点（不含），转换为含首尾的结束日期
//   - UID 作为去重键，重复导入时覆盖原记录

func (s *calendarService) ImportICS(ctx context.Context, r io.Reader, defaultKind string) (*ImportResult, error) {
	if !s.enabled {
		return nil, ErrICSImportClosed
	}
	fallback := schedule.KindHoliday
	if strings.TrimSpace(defaultKind) != "" {
		fallback = schedule.ParseEventKind(defaultKind)
		if fallback == "" {
			return nil, ErrInvalidKind
		}
	}

	events, skipped, err := parseICSEvents(r, fallback, s.loc)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrICSNoEvents
	}

	affected, err := s.repo.CalendarEvent.UpsertByExternalUID(ctx, events)
	if err != nil {
		s.logger.Error("写入校历失败", zap.Error(err))
		return nil, fmt.Errorf("写入校历失败: %w", err)
	}
	s.snapshots.Invalidate()

	s.logger.Info("ICS 校历导入完成", zap.Int("parsed", len(events)), zap.Int("skipped", skipped), zap.Int64("affected", affected))
	return &ImportResult{Parsed: len(events), Skipped: skipped, Affected: affected}, nil
}

func parseICSEvents(r io.Reader, fallback schedule.EventKind, loc *time.Location) ([]model.CalendarEvent, int, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrICSParseFail, err)
	}

	var (
		events  []model.CalendarEvent
		skipped int
		// 同一 UID 的多个 VEVENT（RECURRENCE-ID 覆盖）只保留最后一个，批量 upsert 不允许重复键
		byUID = make(map[string]int)
	)
	for _, evt := range cal.Events() {
		name := propValue(evt, ics.ComponentPropertySummary)
		start, allDay, ok := icsDate(evt, ics.ComponentPropertyDtStart, loc)
		if name == "" || !ok {
			skipped++
			continue
		}

		category := propValue(evt, ics.ComponentPropertyCategories)
		kind := schedule.ParseEventKind(category)
		if kind == "" {
			kind = fallback
		}

		row := model.CalendarEvent{
			Kind:      string(kind),
			Name:      name,
			Type:      category,
			StartDate: start,
			Source:    "ics",
		}
		if end, endAllDay, ok := icsDate(evt, ics.ComponentPropertyDtEnd, loc); ok {
			if allDay && endAllDay {
				end = end.AddDate(0, 0, -1)
			}
			if end.After(start) {
				row.EndDate = &end
			}
		}
		if uid := strings.TrimSpace(evt.Id()); uid != "" {
			row.ExternalUID = &uid
			if i, ok := byUID[uid]; ok {
				events[i] = row
				skipped++
				continue
			}
			byUID[uid] = len(events)
		}
		events = append(events, row)
	}
	return events, skipped, nil
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	prop := evt.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

// icsDate 解析 DTSTART / DTEND 的日期部分，返回是否为全天（DATE 值）
func icsDate(evt *ics.VEvent, name ics.ComponentProperty, loc *time.Location) (time.Time, bool, bool) {
	val := propValue(evt, name)
	if val == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse("20060102", val); err == nil {
		return schedule.DateOnly(t), true, true
	}
	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			t = t.In(loc)
		}
		return schedule.DateOnly(t), false, true
	}
	return time.Time{}, false, false
}
