package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/model"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/schedule"
)

// ── 测试辅助 ──

func setupTestSnapshotService() (*snapshotService, *testRepos) {
	repo, m := newTestRepos()
	svc := NewSnapshotService(testConfig(), repo, nopLogger).(*snapshotService)
	return svc, m
}

// ── 装载测试 ──

func TestSnapshotService_Refresh_LoadsAllSources(t *testing.T) {
	svc, m := setupTestSnapshotService()
	seedBSCS(m)
	m.calendar.events = []model.CalendarEvent{
		{Kind: "holiday", Name: "Christmas Day", StartDate: date(2025, 12, 25)},
		{Kind: "unknown-kind", Name: "忽略", StartDate: date(2025, 12, 26)},
	}

	snap, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if snap.ID == "" || snap.Seq != 1 {
		t.Errorf("快照应分配 ID 与序号 1，实际 id=%q seq=%d", snap.ID, snap.Seq)
	}
	if len(snap.Curriculum) != 3 || len(snap.Meetings) != 1 {
		t.Errorf("期望 3 门课程计划、1 条排课，实际 %d / %d", len(snap.Curriculum), len(snap.Meetings))
	}

	// 配置文件校历在前（考试周 + 节假日），数据库在后，未知类型被丢弃
	events := snap.Calendar.Events
	if len(events) != 3 {
		t.Fatalf("期望 3 条校历，实际 %d", len(events))
	}
	if events[0].Kind != schedule.KindExamPeriod || events[2].Name != "Christmas Day" {
		t.Errorf("校历合并顺序不正确: %+v", events)
	}

	meeting := snap.Meetings[0]
	if meeting.ExamDay != "WED" || !meeting.HasF2FDay("MON") || meeting.StartMinutes != 480 {
		t.Errorf("排课转换不正确: %+v", meeting)
	}
	if meeting.FacultyID != "f-1" {
		t.Errorf("期望 FacultyID=f-1，实际 %s", meeting.FacultyID)
	}
}

func TestSnapshotService_Refresh_LoadError(t *testing.T) {
	svc, m := setupTestSnapshotService()
	m.schedules.err = errors.New("连接中断")

	if _, err := svc.Refresh(context.Background()); !errors.Is(err, ErrSnapshotLoadFail) {
		t.Fatalf("任一数据源失败时 Refresh 应返回 ErrSnapshotLoadFail，得到 %v", err)
	}
	if _, err := svc.Current(context.Background()); err == nil {
		t.Error("无可用快照时 Current 应返回错误")
	}
}

// ── Current / Invalidate 测试 ──

func TestSnapshotService_Current_ReusesUntilInvalidated(t *testing.T) {
	svc, m := setupTestSnapshotService()
	seedBSCS(m)
	ctx := context.Background()

	first, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current 应成功: %v", err)
	}
	second, _ := svc.Current(ctx)
	if first != second {
		t.Error("未失效时 Current 应复用同一快照")
	}
	if got := m.prospectus.calls.Load(); got != 1 {
		t.Errorf("期望仅装载 1 次，实际 %d", got)
	}

	svc.Invalidate()
	third, _ := svc.Current(ctx)
	if third == first || third.Seq != 2 {
		t.Errorf("Invalidate 后应重新装载，实际 seq=%d", third.Seq)
	}
}

func TestSnapshotService_Current_MaxAge(t *testing.T) {
	svc, m := setupTestSnapshotService()
	seedBSCS(m)
	svc.cfg.MaxAge = time.Minute
	now := time.Date(2025, 10, 8, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	first, _ := svc.Current(ctx)
	now = now.Add(30 * time.Second)
	if again, _ := svc.Current(ctx); again != first {
		t.Error("未超过 max_age 时不应重新装载")
	}
	now = now.Add(2 * time.Minute)
	if again, _ := svc.Current(ctx); again == first {
		t.Error("超过 max_age 后应重新装载")
	}
}

func TestSnapshotService_Current_FallsBackToOldSnapshot(t *testing.T) {
	svc, m := setupTestSnapshotService()
	seedBSCS(m)
	ctx := context.Background()

	first, _ := svc.Current(ctx)
	m.calendar.err = errors.New("超时")
	svc.Invalidate()

	got, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("刷新失败但存在旧快照时不应报错: %v", err)
	}
	if got != first {
		t.Error("刷新失败时应返回旧快照")
	}
}

// ── 刷新围栏测试 ──

// startBlockedRefresh 启动一个在装载阶段阻塞的刷新，返回其结果通道
func startBlockedRefresh(svc *snapshotService, m *testRepos) (chan struct{}, <-chan error) {
	m.prospectus.gate = make(chan struct{})
	m.prospectus.entered = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		done <- err
	}()
	<-m.prospectus.entered
	return m.prospectus.gate, done
}

func TestSnapshotService_Refresh_FenceDiscardsSuperseded(t *testing.T) {
	svc, m := setupTestSnapshotService()
	seedBSCS(m)

	gate, done := startBlockedRefresh(svc, m)

	newer, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("较新的刷新应成功: %v", err)
	}
	close(gate)

	if err := <-done; !errors.Is(err, ErrSnapshotStale) {
		t.Errorf("被取代的刷新应返回 ErrSnapshotStale，实际 %v", err)
	}
	if cur := svc.current.Load(); cur != newer || cur.Seq != 2 {
		t.Errorf("当前快照应为较新的刷新结果，实际 seq=%d", cur.Seq)
	}
}

func TestSnapshotService_Refresh_NoFenceLastWriterWins(t *testing.T) {
	svc, m := setupTestSnapshotService()
	svc.cfg.FenceRefresh = false
	seedBSCS(m)

	gate, done := startBlockedRefresh(svc, m)

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("较新的刷新应成功: %v", err)
	}
	close(gate)

	if err := <-done; err != nil {
		t.Fatalf("关闭围栏时旧刷新不应报错: %v", err)
	}
	if cur := svc.current.Load(); cur.Seq != 1 {
		t.Errorf("关闭围栏时最后返回者覆盖，期望 seq=1，实际 %d", cur.Seq)
	}
}

func TestSnapshotService_Refresh_FailedNewerDoesNotDiscard(t *testing.T) {
	svc, m := setupTestSnapshotService()
	seedBSCS(m)
	m.prospectus.laterErr = errors.New("临时网络错误")

	gate, done := startBlockedRefresh(svc, m)

	if _, err := svc.Refresh(context.Background()); !errors.Is(err, ErrSnapshotLoadFail) {
		t.Fatalf("较新的刷新应装载失败，实际 %v", err)
	}
	close(gate)

	if err := <-done; err != nil {
		t.Fatalf("较新刷新失败时，较早的成功装载应生效: %v", err)
	}
	if cur := svc.current.Load(); cur == nil || cur.Seq != 1 {
		t.Errorf("当前快照应为 seq=1 的装载结果，实际 %+v", cur)
	}
}

func TestSnapshotService_Current_ColdStartSurvivesFailedRefresh(t *testing.T) {
	svc, m := setupTestSnapshotService()
	seedBSCS(m)
	m.prospectus.gate = make(chan struct{})
	m.prospectus.entered = make(chan struct{})
	m.prospectus.laterErr = errors.New("临时网络错误")

	type result struct {
		snap *Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := svc.Current(context.Background())
		done <- result{snap, err}
	}()
	<-m.prospectus.entered

	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("较新的刷新应失败")
	}
	close(m.prospectus.gate)

	res := <-done
	if res.err != nil {
		t.Fatalf("冷启动读取方不应因失败的刷新而报错: %v", res.err)
	}
	if res.snap == nil || svc.current.Load() != res.snap {
		t.Error("读取方装载的快照应被保存为当前快照")
	}
}
