package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 占用视图模块业务错误 ──

var (
	ErrChartDisabled   = errors.New("占用热力图功能未开启")
	ErrChartRenderFail = errors.New("生成占用热力图失败")
)

// OccupancyView 某一天的占用视图
type OccupancyView struct {
	Date       string                `json:"date"`
	Day        string                `json:"day"`
	SnapshotID string                `json:"snapshot_id"`
	Annotation schedule.Annotation   `json:"annotation"`
	Decision   schedule.ModeDecision `json:"decision"`
	Grid       schedule.Grid         `json:"grid"`
}

// OccupancyService 教室 × 时段 占用视图业务接口
type OccupancyService interface {
	// Occupancy 标注日期、决定渲染模式并构建网格
	Occupancy(ctx context.Context, rawDate string, mode schedule.ViewMode) (*OccupancyView, error)
	// Chart 以热力图形式渲染占用视图（HTML）
	Chart(ctx context.Context, rawDate string, mode schedule.ViewMode) ([]byte, error)
}

type occupancyService struct {
	snapshots SnapshotService
	cache     ResultCache
	cacheTTL  time.Duration
	loc       *time.Location
	chart     bool
	logger    *zap.Logger
	now       func() time.Time
}

// NewOccupancyService 创建 OccupancyService 实例
func NewOccupancyService(cfg *config.Config, snapshots SnapshotService, cache ResultCache, logger *zap.Logger) OccupancyService {
	if !cfg.Cache.Enabled {
		cache = nil
	}
	return &occupancyService{
		snapshots: snapshots,
		cache:     cache,
		cacheTTL:  cfg.Cache.TTL,
		loc:       cfg.Calendar.Location(),
		chart:     cfg.Feature.ChartEnabled,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *occupancyService) Occupancy(ctx context.Context, rawDate string, mode schedule.ViewMode) (*OccupancyView, error) {
	date, err := resolveDate(rawDate, s.loc, s.now)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}

	dateKey := date.Format("2006-01-02")
	key := cacheKey("occupancy", snap, dateKey, string(mode))
	view := cached(ctx, s.cache, s.cacheTTL, s.logger, key, func() OccupancyView {
		return buildOccupancy(date, mode, snap.Meetings, snap.Calendar)
	})
	view.SnapshotID = snap.ID
	return &view, nil
}

// buildOccupancy 标注 → 模式选择 → 网格构建
func buildOccupancy(date time.Time, mode schedule.ViewMode, meetings []schedule.CourseMeeting, cal schedule.CalendarConfig) OccupancyView {
	day := schedule.WeekdayCode(date.Weekday())
	ann := schedule.Annotate(date, cal)
	dec := schedule.SelectMode(mode, ann, meetings, day)
	return OccupancyView{
		Date:       date.Format("2006-01-02"),
		Day:        day,
		Annotation: ann,
		Decision:   dec,
		Grid:       schedule.BuildGrid(meetings, day, dec.Mode),
	}
}

// ═══════════════════════════════════════════════════════════
// Chart — 占用热力图
// ═══════════════════════════════════════════════════════════
//
// X 轴为教室，Y 轴为时段，值为单元格中的班级数

func (s *occupancyService) Chart(ctx context.Context, rawDate string, mode schedule.ViewMode) ([]byte, error) {
	if !s.chart {
		return nil, ErrChartDisabled
	}
	view, err := s.Occupancy(ctx, rawDate, mode)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := renderHeatmap(buf, view); err != nil {
		s.logger.Error("渲染热力图失败", zap.Error(err))
		return nil, ErrChartRenderFail
	}
	return buf.Bytes(), nil
}

func renderHeatmap(buf *bytes.Buffer, view *OccupancyView) error {
	sessions := make([]string, 0, len(schedule.Sessions))
	for _, sess := range schedule.Sessions {
		sessions = append(sessions, string(sess))
	}

	maxCount := 1
	data := make([]opts.HeatMapData, 0, len(view.Grid.Rooms)*len(sessions))
	for x, room := range view.Grid.Rooms {
		for y, sess := range schedule.Sessions {
			n := view.Grid.Occupied(sess, room)
			if n > maxCount {
				maxCount = n
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, n}})
		}
	}

	subtitle := fmt.Sprintf("%s %s · %s", view.Date, view.Day, view.Decision.Mode)
	if view.Decision.Notice != "" {
		subtitle += " · " + view.Decision.Notice
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Room Occupancy",
			Width:     "1200px",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Room Occupancy", Subtitle: subtitle}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: view.Grid.Rooms}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: sessions}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCount),
			InRange:    &opts.VisualMapInRange{Color: []string{"#f5f7fa", "#4472C4"}},
		}),
	)
	hm.AddSeries("occupancy", data)

	return hm.Render(buf)
}
