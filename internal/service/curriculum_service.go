package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/model"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/repository"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 课程计划 / 分配模块业务错误 ──

var (
	ErrFilterRequired       = errors.New("semester 与 block 为必填筛选条件")
	ErrImportEmpty          = errors.New("导入数据为空")
	ErrImportFileInvalid    = errors.New("无法读取导入的 Excel 文件")
	ErrImportMissingProgram = errors.New("存在缺少专业代码的课程计划记录")
	ErrAssignmentRejected   = errors.New("分配请求未通过校验：需选择课程、指定班级与授课教师")
	ErrCourseNotUnassigned  = errors.New("所选课程不在待分配列表中")
)

// UnassignedResult 待分配课程查询结果
type UnassignedResult struct {
	SnapshotID string                     `json:"snapshot_id"`
	Filter     schedule.UnassignedFilter  `json:"filter"`
	Items      []schedule.CurriculumEntry `json:"items"`
}

// AssignInput 批量分配请求
type AssignInput struct {
	ProgramCode string
	YearLevel   string
	Semester    string
	BlockCode   string
	// CourseCodes 为空表示分配当前筛选条件下的全部待分配课程
	CourseCodes []string
	Faculty     schedule.FacultyRef
	SchoolYear  string
}

// AssignResult 批量分配结果
type AssignResult struct {
	Request   schedule.AssignmentRequest `json:"request"`
	Created   int                        `json:"created"`
	Schedules []model.ClassSchedule      `json:"schedules"`
}

// CurriculumService 课程计划与待分配课程业务接口
type CurriculumService interface {
	ListUnassigned(ctx context.Context, filter schedule.UnassignedFilter) (*UnassignedResult, error)
	// ImportRecords 按字段别名表解码上游记录，并全量替换涉及专业的课程计划
	ImportRecords(ctx context.Context, records []schedule.Record, actorID string) (*ImportResult, error)
	// ImportXLSX 读取第一个工作表，首行为表头
	ImportXLSX(ctx context.Context, r io.Reader, actorID string) (*ImportResult, error)
	// Assign 重新计算待分配课程，校验后持久化为排课记录
	Assign(ctx context.Context, input AssignInput, actorID string) (*AssignResult, error)
}

type curriculumService struct {
	repo      *repository.Repository
	snapshots SnapshotService
	cache     ResultCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewCurriculumService 创建 CurriculumService 实例
func NewCurriculumService(cfg *config.Config, repo *repository.Repository, snapshots SnapshotService, cache ResultCache, logger *zap.Logger) CurriculumService {
	if !cfg.Cache.Enabled {
		cache = nil
	}
	return &curriculumService{
		repo:      repo,
		snapshots: snapshots,
		cache:     cache,
		cacheTTL:  cfg.Cache.TTL,
		logger:    logger,
	}
}

// ListUnassigned 学期或班级为空时返回空列表，不装载快照
func (s *curriculumService) ListUnassigned(ctx context.Context, filter schedule.UnassignedFilter) (*UnassignedResult, error) {
	if strings.TrimSpace(filter.Semester) == "" || strings.TrimSpace(filter.BlockCode) == "" {
		return &UnassignedResult{Filter: filter, Items: []schedule.CurriculumEntry{}}, nil
	}
	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}

	key := cacheKey("unassigned", snap,
		filter.ProgramCode, filter.YearLevel, filter.Semester, filter.BlockCode,
		filter.Query, string(filter.SortKey), fmt.Sprint(filter.Descending))
	items := cached(ctx, s.cache, s.cacheTTL, s.logger, key, func() []schedule.CurriculumEntry {
		return schedule.ResolveUnassigned(snap.Curriculum, snap.Meetings, filter)
	})
	return &UnassignedResult{SnapshotID: snap.ID, Filter: filter, Items: items}, nil
}

// ═══════════════════════════════════════════════════════════
// ImportRecords / ImportXLSX — 课程计划导入
// ═══════════════════════════════════════════════════════════
//
// 导入粒度为专业：文件中出现的每个专业，其旧课程计划整体替换为新数据。
// 课程代码或名称均为空的行视为空行跳过。

func (s *curriculumService) ImportRecords(ctx context.Context, records []schedule.Record, actorID string) (*ImportResult, error) {
	if len(records) == 0 {
		return nil, ErrImportEmpty
	}

	var (
		courses  []model.ProspectusCourse
		programs []string
		seen     = make(map[string]bool)
		skipped  int
	)
	for _, r := range records {
		e := schedule.DecodeCurriculum(r)
		if strings.TrimSpace(e.CourseCode) == "" && strings.TrimSpace(e.CourseTitle) == "" {
			skipped++
			continue
		}
		program := schedule.NormalizeProgram(e.ProgramCode)
		if program == "" {
			return nil, ErrImportMissingProgram
		}
		if !seen[program] {
			seen[program] = true
			programs = append(programs, program)
		}
		course := model.ProspectusCourse{
			ProgramCode: program,
			CourseCode:  strings.TrimSpace(e.CourseCode),
			CourseTitle: strings.TrimSpace(e.CourseTitle),
			Units:       e.Units,
			YearLevel:   strings.TrimSpace(e.YearLevel),
			Semester:    schedule.SemesterLabel(e.Semester),
		}
		if actorID != "" {
			course.CreatedBy = &actorID
		}
		courses = append(courses, course)
	}
	if len(courses) == 0 {
		return nil, ErrImportEmpty
	}

	if err := s.repo.Prospectus.ReplacePrograms(ctx, programs, courses); err != nil {
		s.logger.Error("写入课程计划失败", zap.Error(err))
		return nil, fmt.Errorf("写入课程计划失败: %w", err)
	}
	s.snapshots.Invalidate()

	s.logger.Info("课程计划导入完成",
		zap.Strings("programs", programs),
		zap.Int("courses", len(courses)),
		zap.Int("skipped", skipped),
	)
	return &ImportResult{Parsed: len(courses), Skipped: skipped, Affected: int64(len(courses))}, nil
}

func (s *curriculumService) ImportXLSX(ctx context.Context, r io.Reader, actorID string) (*ImportResult, error) {
	records, err := readSheetRecords(r)
	if err != nil {
		return nil, err
	}
	return s.ImportRecords(ctx, records, actorID)
}

// readSheetRecords 读取第一个工作表：首行为表头，其余行按表头转为 Record
func readSheetRecords(r io.Reader) ([]schedule.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFileInvalid, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFileInvalid, err)
	}
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	records := make([]schedule.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(schedule.Record, len(header))
		for i, cell := range row {
			if i < len(header) && header[i] != "" {
				rec[header[i]] = cell
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ═══════════════════════════════════════════════════════════
// Assign — 批量分配给授课教师
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 以当前快照重新计算待分配课程（不信任客户端列表）
//  2. 按请求的课程代码筛选；代码不在待分配列表中时拒绝整个请求
//  3. ValidateAssignment 校验并规范化
//  4. 事务内批量写入排课，成功后使快照失效

func (s *curriculumService) Assign(ctx context.Context, input AssignInput, actorID string) (*AssignResult, error) {
	filter := schedule.UnassignedFilter{
		ProgramCode: input.ProgramCode,
		YearLevel:   input.YearLevel,
		Semester:    input.Semester,
		BlockCode:   input.BlockCode,
	}
	if strings.TrimSpace(filter.Semester) == "" || strings.TrimSpace(filter.BlockCode) == "" {
		return nil, ErrFilterRequired
	}

	snap, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	unassigned := schedule.ResolveUnassigned(snap.Curriculum, snap.Meetings, filter)

	selection, missing := selectCourses(unassigned, input.CourseCodes)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotUnassigned, strings.Join(missing, ", "))
	}

	req, ok := schedule.ValidateAssignment(selection, schedule.AssignmentTarget{
		BlockCode:  input.BlockCode,
		Faculty:    input.Faculty,
		SchoolYear: input.SchoolYear,
		Semester:   input.Semester,
	})
	if !ok {
		return nil, ErrAssignmentRejected
	}

	rows := schedulesFromRequest(req, actorID)
	if err := s.repo.ClassSchedule.BatchCreate(ctx, rows); err != nil {
		s.logger.Error("写入排课失败", zap.Error(err))
		return nil, fmt.Errorf("写入排课失败: %w", err)
	}
	s.snapshots.Invalidate()

	s.logger.Info("课程分配完成",
		zap.String("block", req.Header.BlockCode),
		zap.String("faculty_id", req.Header.FacultyID),
		zap.String("faculty_name", req.Header.FacultyName),
		zap.Int("courses", len(rows)),
	)
	return &AssignResult{Request: req, Created: len(rows), Schedules: rows}, nil
}

// selectCourses 按代码从待分配列表中挑选课程；codes 为空时全选
func selectCourses(unassigned []schedule.CurriculumEntry, codes []string) ([]schedule.CurriculumEntry, []string) {
	if len(codes) == 0 {
		return unassigned, nil
	}
	byCode := make(map[string]schedule.CurriculumEntry, len(unassigned))
	for _, e := range unassigned {
		key := schedule.NormalizeCode(e.CourseCode)
		if _, ok := byCode[key]; !ok {
			byCode[key] = e
		}
	}

	var (
		selection []schedule.CurriculumEntry
		missing   []string
	)
	for _, code := range codes {
		if e, ok := byCode[schedule.NormalizeCode(code)]; ok {
			selection = append(selection, e)
		} else {
			missing = append(missing, strings.TrimSpace(code))
		}
	}
	return selection, missing
}

func schedulesFromRequest(req schedule.AssignmentRequest, actorID string) []model.ClassSchedule {
	var facultyID *string
	if req.Header.FacultyID != "" {
		id := req.Header.FacultyID
		facultyID = &id
	}

	rows := make([]model.ClassSchedule, 0, len(req.Items))
	for _, item := range req.Items {
		row := model.ClassSchedule{
			FacultyID:   facultyID,
			FacultyName: req.Header.FacultyName,
			ProgramCode: item.ProgramCode,
			BlockCode:   req.Header.BlockCode,
			CourseCode:  item.CourseCode,
			CourseTitle: item.CourseTitle,
			Units:       item.Units,
			YearLevel:   item.YearLevel,
			Semester:    item.Semester,
			SchoolYear:  req.Header.SchoolYear,
			Source:      "assignment",
		}
		if actorID != "" {
			row.CreatedBy = &actorID
		}
		rows = append(rows, row)
	}
	return rows
}
