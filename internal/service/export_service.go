package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出内容与查询接口一致（复用 OccupancyService / CurriculumService 的结果）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportOccupancy 导出某天的 教室 × 时段 占用网格
	ExportOccupancy(ctx context.Context, rawDate string, mode schedule.ViewMode) (*bytes.Buffer, string, error)
	// ExportUnassigned 导出待分配课程列表
	ExportUnassigned(ctx context.Context, filter schedule.UnassignedFilter) (*bytes.Buffer, string, error)
}

type exportService struct {
	occupancy  OccupancyService
	curriculum CurriculumService
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(occupancy OccupancyService, curriculum CurriculumService, logger *zap.Logger) ExportService {
	return &exportService{occupancy: occupancy, curriculum: curriculum, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportOccupancy — 导出占用网格
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：日期 星期 · 模式（回退时附提示）
//   - 行头：教室（含未排教室 "—"）
//   - 列头：Morning / Afternoon / Evening
//   - 单元格：BLOCK (PROGRAM)，多个班级换行分隔

func (s *exportService) ExportOccupancy(ctx context.Context, rawDate string, mode schedule.ViewMode) (*bytes.Buffer, string, error) {
	view, err := s.occupancy.Occupancy(ctx, rawDate, mode)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Occupancy"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	for i := range schedule.Sessions {
		col := colName(1 + i)
		f.SetColWidth(sheetName, col, col, 28)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	// 标题行
	title := fmt.Sprintf("%s %s · %s", view.Date, view.Day, view.Decision.Mode)
	if view.Decision.Notice != "" {
		title += " (" + view.Decision.Notice + ")"
	}
	if view.Annotation.Holiday != nil {
		title += " · " + view.Annotation.Holiday.Name
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(colName(len(schedule.Sessions)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Room")
	for i, sess := range schedule.Sessions {
		f.SetCellValue(sheetName, cell(colName(1+i), row), string(sess))
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(schedule.Sessions)), row), headerStyle)

	// 数据行
	row = 3
	for _, room := range view.Grid.Rooms {
		f.SetCellValue(sheetName, cell("A", row), room)
		for i, sess := range schedule.Sessions {
			f.SetCellValue(sheetName, cell(colName(1+i), row), chipText(view.Grid.Cell(sess, room)))
		}
		f.SetCellStyle(sheetName, cell("B", row), cell(colName(len(schedule.Sessions)), row), cellStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("occupancy_%s_%s.xlsx", view.Date, view.Decision.Mode)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportUnassigned — 导出待分配课程
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportUnassigned(ctx context.Context, filter schedule.UnassignedFilter) (*bytes.Buffer, string, error) {
	// 导出必须指定学期与班级，否则只能得到空表
	if strings.TrimSpace(filter.Semester) == "" || strings.TrimSpace(filter.BlockCode) == "" {
		return nil, "", ErrFilterRequired
	}
	result, err := s.curriculum.ListUnassigned(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Unassigned"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Program", "Course Code", "Course Title", "Units", "Year Level", "Semester"}
	widths := []float64{12, 16, 42, 8, 12, 16}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, widths[i])
		f.SetCellValue(sheetName, cell(col, 1), h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, e := range result.Items {
		row := i + 2
		f.SetCellValue(sheetName, cell("A", row), e.ProgramCode)
		f.SetCellValue(sheetName, cell("B", row), e.CourseCode)
		f.SetCellValue(sheetName, cell("C", row), e.CourseTitle)
		f.SetCellValue(sheetName, cell("D", row), e.Units)
		f.SetCellValue(sheetName, cell("E", row), e.YearLevel)
		f.SetCellValue(sheetName, cell("F", row), e.Semester)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	block := schedule.NormalizeBlock(filter.BlockCode)
	filename := fmt.Sprintf("unassigned_%s_%s.xlsx", block, strings.ReplaceAll(schedule.SemesterLabel(filter.Semester), " ", "_"))
	return buf, filename, nil
}

func chipText(chips []schedule.BlockChip) string {
	parts := make([]string, 0, len(chips))
	for _, c := range chips {
		if c.Program != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", c.Block, c.Program))
		} else {
			parts = append(parts, c.Block)
		}
	}
	return strings.Join(parts, "\n")
}

// colName 0-based 列索引 → Excel 列名 (0→A, 1→B, ...)
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

// cell 组合列名与行号 → "A1"
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
