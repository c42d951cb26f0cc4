package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/model"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/repository"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
	pkgerrors "github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/errors"
)

// ── 快照模块业务错误 ──

var (
	// ErrSnapshotStale 刷新结果已被更新的刷新请求取代
	ErrSnapshotStale    = pkgerrors.ErrSnapshotStale
	ErrSnapshotLoadFail = errors.New("数据快照装载失败")
)

// Snapshot 一次完整的数据装载结果（装载后只读）
type Snapshot struct {
	ID         string                     `json:"id"`
	Seq        uint64                     `json:"seq"`
	LoadedAt   time.Time                  `json:"loaded_at"`
	Curriculum []schedule.CurriculumEntry `json:"-"`
	Meetings   []schedule.CourseMeeting   `json:"-"`
	Calendar   schedule.CalendarConfig    `json:"-"`
}

// SnapshotStats 快照概要，用于刷新接口响应
type SnapshotStats struct {
	ID              string    `json:"id"`
	Seq             uint64    `json:"seq"`
	LoadedAt        time.Time `json:"loaded_at"`
	CurriculumCount int       `json:"curriculum_count"`
	MeetingCount    int       `json:"meeting_count"`
	CalendarCount   int       `json:"calendar_count"`
}

// Stats 快照概要
func (s *Snapshot) Stats() SnapshotStats {
	return SnapshotStats{
		ID:              s.ID,
		Seq:             s.Seq,
		LoadedAt:        s.LoadedAt,
		CurriculumCount: len(s.Curriculum),
		MeetingCount:    len(s.Meetings),
		CalendarCount:   len(s.Calendar.Events),
	}
}

// SnapshotService 课程计划 / 排课 / 校历 数据快照
//
// 设计说明：
//   - 三类数据通过 errgroup 并发装载，任一失败则整体失败
//   - 每次刷新分配 uuid 与单调递增序号；开启 fence_refresh 时，
//     若更新序号的快照已经生效，本次结果直接丢弃并返回 ErrSnapshotStale
//   - 关闭 fence_refresh 时保持"最后返回者覆盖"的行为
//   - 快照通过 atomic.Pointer 整体替换，读取方无需加锁
type SnapshotService interface {
	// Current 返回当前快照；尚未装载、已失效或超过 max_age 时同步刷新
	Current(ctx context.Context) (*Snapshot, error)
	// Refresh 强制重新装载
	Refresh(ctx context.Context) (*Snapshot, error)
	// Invalidate 标记快照失效，下一次 Current 时重新装载
	Invalidate()
}

type snapshotService struct {
	repo     *repository.Repository
	calendar []schedule.CalendarEvent
	cfg      config.SnapshotConfig
	logger   *zap.Logger

	seq     atomic.Uint64
	current atomic.Pointer[Snapshot]
	stale   atomic.Bool
	now     func() time.Time
}

// NewSnapshotService 创建 SnapshotService 实例
func NewSnapshotService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) SnapshotService {
	return &snapshotService{
		repo:     repo,
		calendar: calendarFromConfig(cfg.Calendar, logger),
		cfg:      cfg.Snapshot,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *snapshotService) Current(ctx context.Context) (*Snapshot, error) {
	cur := s.current.Load()
	if cur != nil && !s.stale.Load() && !s.expired(cur) {
		return cur, nil
	}

	snap, err := s.Refresh(ctx)
	if err == nil {
		return snap, nil
	}
	// 并发刷新中本次被取代：使用已生效的更新快照
	if errors.Is(err, ErrSnapshotStale) {
		if latest := s.current.Load(); latest != nil {
			return latest, nil
		}
	}
	// 装载失败时退回旧快照，避免读接口整体不可用
	if cur != nil {
		s.logger.Warn("快照刷新失败，继续使用旧快照", zap.String("snapshot_id", cur.ID), zap.Error(err))
		return cur, nil
	}
	return nil, err
}

func (s *snapshotService) expired(snap *Snapshot) bool {
	return s.cfg.MaxAge > 0 && s.now().Sub(snap.LoadedAt) > s.cfg.MaxAge
}

func (s *snapshotService) Invalidate() {
	s.stale.Store(true)
}

// ═══════════════════════════════════════════════════════════
// Refresh — 并发装载 + 刷新围栏
// ═══════════════════════════════════════════════════════════

func (s *snapshotService) Refresh(ctx context.Context) (*Snapshot, error) {
	ticket := s.seq.Add(1)
	id := uuid.NewString()
	log := s.logger.With(zap.String("snapshot_id", id), zap.Uint64("seq", ticket))

	if s.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LoadTimeout)
		defer cancel()
	}

	// 装载开始前清除失效标记；装载期间再次 Invalidate 会保留到下一轮
	s.stale.Store(false)

	snap, err := s.load(ctx)
	if err != nil {
		s.stale.Store(true)
		log.Error("装载快照失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSnapshotLoadFail, err)
	}
	snap.ID = id
	snap.Seq = ticket
	snap.LoadedAt = s.now()

	if !s.cfg.FenceRefresh {
		s.current.Store(snap)
		log.Info("快照已更新", zap.Int("meetings", len(snap.Meetings)), zap.Int("curriculum", len(snap.Curriculum)))
		return snap, nil
	}

	// 只有已生效的快照比本次更新时才丢弃；较新的刷新若装载失败，本次结果仍可生效
	for {
		cur := s.current.Load()
		if cur != nil && cur.Seq > ticket {
			log.Warn("丢弃过期的快照刷新结果", zap.Uint64("current_seq", cur.Seq))
			return nil, ErrSnapshotStale
		}
		if s.current.CompareAndSwap(cur, snap) {
			break
		}
	}

	log.Info("快照已更新", zap.Int("meetings", len(snap.Meetings)), zap.Int("curriculum", len(snap.Curriculum)))
	return snap, nil
}

func (s *snapshotService) load(ctx context.Context) (*Snapshot, error) {
	var (
		courses   []model.ProspectusCourse
		schedules []model.ClassSchedule
		events    []model.CalendarEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = s.repo.Prospectus.List(gctx)
		if err != nil {
			return fmt.Errorf("查询课程计划失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		schedules, err = s.repo.ClassSchedule.List(gctx, "")
		if err != nil {
			return fmt.Errorf("查询排课失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = s.repo.CalendarEvent.List(gctx)
		if err != nil {
			return fmt.Errorf("查询校历失败: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Curriculum: make([]schedule.CurriculumEntry, 0, len(courses)),
		Meetings:   make([]schedule.CourseMeeting, 0, len(schedules)),
	}
	for _, c := range courses {
		snap.Curriculum = append(snap.Curriculum, curriculumFromModel(c))
	}
	for _, m := range schedules {
		snap.Meetings = append(snap.Meetings, meetingFromModel(m))
	}

	// 配置文件中的校历在前，数据库 / ICS 导入在后
	calendar := make([]schedule.CalendarEvent, 0, len(s.calendar)+len(events))
	calendar = append(calendar, s.calendar...)
	for _, e := range events {
		if ev, ok := calendarEventFromModel(e); ok {
			calendar = append(calendar, ev)
		}
	}
	snap.Calendar = schedule.CalendarConfig{Events: calendar}

	return snap, nil
}
