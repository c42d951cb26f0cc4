package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 测试辅助 ──

func setupTestCurriculumService() (CurriculumService, *testRepos, *mockCache) {
	repo, m := newTestRepos()
	cfg := testConfig()
	cache := newMockCache()
	snapshots := NewSnapshotService(cfg, repo, nopLogger)
	return NewCurriculumService(cfg, repo, snapshots, cache, nopLogger), m, cache
}

func bscsFilter() schedule.UnassignedFilter {
	return schedule.UnassignedFilter{ProgramCode: "BSCS", YearLevel: "1", Semester: "1st Semester", BlockCode: "BSCS-1A"}
}

// ── ListUnassigned 测试 ──

func TestCurriculumService_ListUnassigned(t *testing.T) {
	svc, m, cache := setupTestCurriculumService()
	seedBSCS(m)

	result, err := svc.ListUnassigned(context.Background(), bscsFilter())
	if err != nil {
		t.Fatalf("ListUnassigned 应成功: %v", err)
	}
	if len(result.Items) != 2 || result.Items[0].CourseCode != "MATH101" || result.Items[1].CourseCode != "PE1" {
		t.Errorf("期望 [MATH101 PE1]，实际 %+v", result.Items)
	}
	if result.SnapshotID == "" {
		t.Error("结果应携带快照 ID")
	}

	// 相同参数第二次命中缓存
	if _, err := svc.ListUnassigned(context.Background(), bscsFilter()); err != nil {
		t.Fatalf("第二次查询应成功: %v", err)
	}
	if cache.hits != 1 || cache.sets != 1 {
		t.Errorf("期望缓存命中 1 次、写入 1 次，实际 hits=%d sets=%d", cache.hits, cache.sets)
	}
}

func TestCurriculumService_ListUnassigned_BlankFilterIsEmpty(t *testing.T) {
	svc, m, _ := setupTestCurriculumService()
	seedBSCS(m)

	f := bscsFilter()
	f.BlockCode = " "
	result, err := svc.ListUnassigned(context.Background(), f)
	if err != nil {
		t.Fatalf("缺少 block 时应返回空列表而非错误: %v", err)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("缺少 block 时期望空列表，实际 %v", result.Items)
	}
	if got := m.prospectus.calls.Load(); got != 0 {
		t.Errorf("筛选条件不完整时不应装载快照，实际调用 %d 次", got)
	}
}

// ── Import 测试 ──

func TestCurriculumService_ImportRecords_ReplacesPrograms(t *testing.T) {
	svc, m, _ := setupTestCurriculumService()
	seedBSCS(m)

	result, err := svc.ImportRecords(context.Background(), []schedule.Record{
		{"programcode": "bscs", "course_name": "CS101", "courseTitle": "Discrete Structures", "unit": "3", "yearlevel": "1", "semester": "first semester"},
		{"programcode": "BSCS", "course_name": "", "courseTitle": ""},
	}, "admin-1")
	if err != nil {
		t.Fatalf("ImportRecords 应成功: %v", err)
	}
	if result.Parsed != 1 || result.Skipped != 1 {
		t.Errorf("期望导入 1 条、跳过 1 条，实际 %+v", result)
	}
	if len(m.prospectus.courses) != 1 {
		t.Fatalf("BSCS 的旧课程计划应被整体替换，实际 %d 条", len(m.prospectus.courses))
	}
	got := m.prospectus.courses[0]
	if got.ProgramCode != "BSCS" || got.Semester != "1st Semester" || got.Units != 3 {
		t.Errorf("导入记录未规范化: %+v", got)
	}
	if got.CreatedBy == nil || *got.CreatedBy != "admin-1" {
		t.Error("导入记录应记录操作人")
	}
}

func TestCurriculumService_ImportRecords_Errors(t *testing.T) {
	svc, _, _ := setupTestCurriculumService()
	ctx := context.Background()

	if _, err := svc.ImportRecords(ctx, nil, ""); !errors.Is(err, ErrImportEmpty) {
		t.Errorf("空导入期望 ErrImportEmpty，实际 %v", err)
	}
	_, err := svc.ImportRecords(ctx, []schedule.Record{{"course_name": "IT101"}}, "")
	if !errors.Is(err, ErrImportMissingProgram) {
		t.Errorf("缺少专业代码期望 ErrImportMissingProgram，实际 %v", err)
	}
}

func TestCurriculumService_ImportXLSX(t *testing.T) {
	svc, m, _ := setupTestCurriculumService()

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"program", "courseName", "courseTitle", "unit", "yearlevel", "semester"},
		{"BSIT", "IT 201", "Networking 1", 3, "2", "2nd Semester"},
		{"BSIT", "IT 202", "Database Systems", 3, "2", "2nd Semester"},
	}
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cellName, &row); err != nil {
			t.Fatalf("构造测试文件失败: %v", err)
		}
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("构造测试文件失败: %v", err)
	}

	result, err := svc.ImportXLSX(context.Background(), buf, "")
	if err != nil {
		t.Fatalf("ImportXLSX 应成功: %v", err)
	}
	if result.Parsed != 2 || len(m.prospectus.courses) != 2 {
		t.Errorf("期望导入 2 条，实际 %+v", result)
	}
	if m.prospectus.courses[1].CourseTitle != "Database Systems" {
		t.Errorf("按表头映射失败: %+v", m.prospectus.courses[1])
	}
}

func TestCurriculumService_ImportXLSX_InvalidFile(t *testing.T) {
	svc, _, _ := setupTestCurriculumService()
	_, err := svc.ImportXLSX(context.Background(), bytes.NewBufferString("not a workbook"), "")
	if !errors.Is(err, ErrImportFileInvalid) {
		t.Errorf("期望 ErrImportFileInvalid，实际 %v", err)
	}
}

// ── Assign 测试 ──

func TestCurriculumService_Assign_Success(t *testing.T) {
	svc, m, _ := setupTestCurriculumService()
	seedBSCS(m)
	ctx := context.Background()

	result, err := svc.Assign(ctx, AssignInput{
		ProgramCode: "BSCS", YearLevel: "1", Semester: "1st", BlockCode: "BSCS-1A",
		CourseCodes: []string{"math 101"},
		Faculty:     schedule.FacultyRef{ID: "f-2", Name: "Santos"},
		SchoolYear:  "2025-2026",
	}, "registrar-1")
	if err != nil {
		t.Fatalf("Assign 应成功: %v", err)
	}
	if result.Created != 1 || result.Request.Header.Semester != "1st Semester" {
		t.Errorf("分配结果不正确: %+v", result)
	}
	row := result.Schedules[0]
	if row.Source != "assignment" || row.BlockCode != "BSCS-1A" || row.FacultyID == nil || *row.FacultyID != "f-2" {
		t.Errorf("排课记录字段不正确: %+v", row)
	}

	// 分配后快照失效，MATH101 不再出现在待分配列表中
	list, err := svc.ListUnassigned(ctx, bscsFilter())
	if err != nil {
		t.Fatalf("ListUnassigned 应成功: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].CourseCode != "PE1" {
		t.Errorf("分配后期望仅剩 PE1，实际 %+v", list.Items)
	}
}

func TestCurriculumService_Assign_AllWhenNoCodes(t *testing.T) {
	svc, m, _ := setupTestCurriculumService()
	seedBSCS(m)

	result, err := svc.Assign(context.Background(), AssignInput{
		Semester: "1st Semester", BlockCode: "BSCS-1A",
		Faculty: schedule.FacultyRef{Name: "Dela Cruz"},
	}, "")
	if err != nil {
		t.Fatalf("Assign 应成功: %v", err)
	}
	if result.Created != 2 {
		t.Errorf("未指定课程时应分配全部待分配课程，实际 %d", result.Created)
	}
	if result.Schedules[0].FacultyID != nil {
		t.Error("仅有教师姓名时 FacultyID 应为空")
	}
}

func TestCurriculumService_Assign_Rejected(t *testing.T) {
	svc, m, _ := setupTestCurriculumService()
	seedBSCS(m)
	ctx := context.Background()

	// 已排课程不可再次分配
	_, err := svc.Assign(ctx, AssignInput{
		Semester: "1st", BlockCode: "BSCS-1A", CourseCodes: []string{"IT101"},
		Faculty: schedule.FacultyRef{ID: "f-2"},
	}, "")
	if !errors.Is(err, ErrCourseNotUnassigned) {
		t.Errorf("期望 ErrCourseNotUnassigned，实际 %v", err)
	}

	// 无教师
	_, err = svc.Assign(ctx, AssignInput{
		Semester: "1st", BlockCode: "BSCS-1A", CourseCodes: []string{"PE1"},
		Faculty: schedule.FacultyRef{Name: "  "},
	}, "")
	if !errors.Is(err, ErrAssignmentRejected) {
		t.Errorf("期望 ErrAssignmentRejected，实际 %v", err)
	}

	// 缺少学期
	_, err = svc.Assign(ctx, AssignInput{BlockCode: "BSCS-1A", Faculty: schedule.FacultyRef{ID: "f-2"}}, "")
	if !errors.Is(err, ErrFilterRequired) {
		t.Errorf("期望 ErrFilterRequired，实际 %v", err)
	}

	if m.schedules.created != 0 {
		t.Errorf("校验失败时不应写入排课，实际写入 %d 条", m.schedules.created)
	}
}
