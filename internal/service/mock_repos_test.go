package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/model"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/repository"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/redis"
)

// ── Mock ProspectusRepository ──

type mockProspectusRepo struct {
	mu      sync.Mutex
	courses []model.ProspectusCourse
	err     error
	calls   atomic.Int32

	// gate 非 nil 时第一次 List 调用阻塞，直到 gate 被关闭；entered 在阻塞前关闭
	gate    chan struct{}
	entered chan struct{}
	// laterErr 非 nil 时第一次之后的 List 调用返回该错误
	laterErr error
}

func (m *mockProspectusRepo) List(ctx context.Context) ([]model.ProspectusCourse, error) {
	call := m.calls.Add(1)
	if call == 1 && m.gate != nil {
		close(m.entered)
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call > 1 && m.laterErr != nil {
		return nil, m.laterErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.ProspectusCourse, len(m.courses))
	copy(out, m.courses)
	return out, nil
}

func (m *mockProspectusRepo) ListByProgram(_ context.Context, programCode string) ([]model.ProspectusCourse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ProspectusCourse
	for _, c := range m.courses {
		if c.ProgramCode == programCode {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockProspectusRepo) ReplacePrograms(_ context.Context, programCodes []string, courses []model.ProspectusCourse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	drop := make(map[string]bool, len(programCodes))
	for _, p := range programCodes {
		drop[p] = true
	}
	kept := m.courses[:0]
	for _, c := range m.courses {
		if !drop[c.ProgramCode] {
			kept = append(kept, c)
		}
	}
	for i := range courses {
		courses[i].ProspectusCourseID = fmt.Sprintf("pc-%d", len(kept)+i+1)
	}
	m.courses = append(kept, courses...)
	return nil
}

// ── Mock ClassScheduleRepository ──

type mockClassScheduleRepo struct {
	mu        sync.Mutex
	schedules []model.ClassSchedule
	err       error
	created   int
}

func (m *mockClassScheduleRepo) List(_ context.Context, schoolYear string) ([]model.ClassSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.ClassSchedule
	for _, s := range m.schedules {
		if schoolYear == "" || s.SchoolYear == schoolYear {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockClassScheduleRepo) ListByBlock(_ context.Context, blockCode string) ([]model.ClassSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ClassSchedule
	for _, s := range m.schedules {
		if s.BlockCode == blockCode {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockClassScheduleRepo) BatchCreate(_ context.Context, schedules []model.ClassSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range schedules {
		m.created++
		schedules[i].ClassScheduleID = fmt.Sprintf("cs-%d", m.created)
	}
	m.schedules = append(m.schedules, schedules...)
	return nil
}

// ── Mock CalendarEventRepository ──

type mockCalendarEventRepo struct {
	mu     sync.Mutex
	events []model.CalendarEvent
	err    error
}

func (m *mockCalendarEventRepo) List(_ context.Context) ([]model.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.CalendarEvent, len(m.events))
	copy(out, m.events)
	return out, nil
}

func (m *mockCalendarEventRepo) UpsertByExternalUID(_ context.Context, events []model.CalendarEvent) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, e := range events {
		replaced := false
		if e.ExternalUID != nil {
			for i, existing := range m.events {
				if existing.ExternalUID != nil && *existing.ExternalUID == *e.ExternalUID {
					m.events[i] = e
					replaced = true
					break
				}
			}
		}
		if !replaced {
			m.events = append(m.events, e)
		}
	}
	return int64(len(events)), nil
}

// ── Mock ResultCache ──

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	m.hits++
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.sets++
	m.data[key] = raw
	return nil
}

// ── 测试夹具 ──

type testRepos struct {
	prospectus *mockProspectusRepo
	schedules  *mockClassScheduleRepo
	calendar   *mockCalendarEventRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	m := &testRepos{
		prospectus: &mockProspectusRepo{},
		schedules:  &mockClassScheduleRepo{},
		calendar:   &mockCalendarEventRepo{},
	}
	return &repository.Repository{
		Prospectus:    m.prospectus,
		ClassSchedule: m.schedules,
		CalendarEvent: m.calendar,
	}, m
}

func testConfig() *config.Config {
	return &config.Config{
		Cache:    config.CacheConfig{Enabled: true, TTL: time.Minute},
		Snapshot: config.SnapshotConfig{FenceRefresh: true, LoadTimeout: 5 * time.Second},
		Calendar: config.CalendarConfig{
			Timezone: "UTC",
			ExamPeriods: []config.CalendarEntry{
				{Name: "Midterm Exams", Start: "2025-10-06", End: "2025-10-10"},
			},
			Holidays: []config.CalendarEntry{
				{Name: "All Saints' Day", Type: "Special Non-Working Holiday", Start: "2025-11-01"},
			},
		},
		Feature: config.FeatureConfig{ICSImportEnabled: true, ChartEnabled: true},
	}
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedBSCS 一门已排 IT101（BSCS-1A，周一/周三上午，周三考试）+ 一门未排 MATH101
func seedBSCS(m *testRepos) {
	m.prospectus.courses = []model.ProspectusCourse{
		{ProspectusCourseID: "pc-1", ProgramCode: "BSCS", CourseCode: "IT101", CourseTitle: "Introduction to Computing", Units: 3, YearLevel: "1", Semester: "1st Semester"},
		{ProspectusCourseID: "pc-2", ProgramCode: "BSCS", CourseCode: "MATH101", CourseTitle: "College Algebra", Units: 3, YearLevel: "1", Semester: "1st Semester"},
		{ProspectusCourseID: "pc-3", ProgramCode: "BSCS", CourseCode: "PE1", CourseTitle: "Physical Fitness", Units: 2, YearLevel: "1", Semester: "1st Semester"},
	}
	m.schedules.schedules = []model.ClassSchedule{
		{
			ClassScheduleID: "cs-0", FacultyID: strPtr("f-1"), FacultyName: "Reyes",
			ProgramCode: "BSCS", BlockCode: "BSCS-1A", CourseCode: "it101", CourseTitle: "Introduction to Computing",
			Semester: "1st", SchoolYear: "2025-2026", Room: "R201", F2FSched: "Mon,Wed", StartTime: "8:00 AM",
			ExamDay: "Wednesday", ExamRoom: "GYM", ExamSession: "Afternoon",
		},
	}
}

var nopLogger = zap.NewNop()
