package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// EvaluateService 无状态计算接口：直接对上游原始记录求值，不读取快照、不写库
type EvaluateService interface {
	Unassigned(curriculum, meetings []schedule.Record, filter schedule.UnassignedFilter) ([]schedule.CurriculumEntry, error)
	// Occupancy calendar 为空时使用配置文件中的校历
	Occupancy(meetings, calendar []schedule.Record, rawDate string, mode schedule.ViewMode) (*OccupancyView, error)
}

type evaluateService struct {
	calendar []schedule.CalendarEvent
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewEvaluateService 创建 EvaluateService 实例
func NewEvaluateService(cfg *config.Config, logger *zap.Logger) EvaluateService {
	return &evaluateService{
		calendar: calendarFromConfig(cfg.Calendar, logger),
		loc:      cfg.Calendar.Location(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *evaluateService) Unassigned(curriculum, meetings []schedule.Record, filter schedule.UnassignedFilter) ([]schedule.CurriculumEntry, error) {
	entries := make([]schedule.CurriculumEntry, 0, len(curriculum))
	for _, r := range curriculum {
		entries = append(entries, schedule.DecodeCurriculum(r))
	}
	return schedule.ResolveUnassigned(entries, decodeMeetings(meetings), filter), nil
}

func (s *evaluateService) Occupancy(meetings, calendar []schedule.Record, rawDate string, mode schedule.ViewMode) (*OccupancyView, error) {
	date, err := resolveDate(rawDate, s.loc, s.now)
	if err != nil {
		return nil, err
	}

	events := s.calendar
	if len(calendar) > 0 {
		events = make([]schedule.CalendarEvent, 0, len(calendar))
		for _, r := range calendar {
			if e, ok := schedule.DecodeCalendarEvent(r); ok {
				events = append(events, e)
			} else {
				s.logger.Debug("忽略无法解析日期的校历记录", zap.Any("record", r))
			}
		}
	}

	view := buildOccupancy(date, mode, decodeMeetings(meetings), schedule.CalendarConfig{Events: events})
	return &view, nil
}

func decodeMeetings(records []schedule.Record) []schedule.CourseMeeting {
	out := make([]schedule.CourseMeeting, 0, len(records))
	for _, r := range records {
		out = append(out, schedule.DecodeMeeting(r))
	}
	return out
}
