package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

const baseYAML = `
auth:
  jwt_secret: "0123456789abcdef0123"
calendar:
  timezone: Asia/Manila
  exam_periods:
    - name: "Midterm Examination"
      start: "2025-10-06"
      end: "2025-10-10"
  holidays:
    - name: "All Saints' Day"
      start: "2025-11-01"
`

func TestLoad_DefaultsAndFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseYAML))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.Snapshot.FenceRefresh {
		t.Error("fence_refresh 默认应开启")
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("expected cache ttl 10m, got %s", cfg.Cache.TTL)
	}
	if len(cfg.Calendar.ExamPeriods) != 1 || cfg.Calendar.ExamPeriods[0].End != "2025-10-10" {
		t.Errorf("考试周期未正确解析: %+v", cfg.Calendar.ExamPeriods)
	}
	if got := cfg.Calendar.Location().String(); got != "Asia/Manila" {
		t.Errorf("expected Asia/Manila, got %s", got)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KNP_SERVER_PORT", "9090")
	t.Setenv("KNP_SNAPSHOT_FENCE_REFRESH", "false")

	cfg, err := Load(writeConfig(t, baseYAML))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("环境变量应覆盖端口，got %d", cfg.Server.Port)
	}
	if cfg.Snapshot.FenceRefresh {
		t.Error("环境变量应关闭 fence_refresh")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := Load(writeConfig(t, "calendar:\n  timezone: UTC\n"))
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("expected jwt_secret error, got %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Auth:     AuthConfig{JWTSecret: "0123456789abcdef"},
		Calendar: CalendarConfig{Timezone: "UTC"},
	}
}

func TestValidate_Calendar(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"时区无效", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }, "timezone"},
		{"日期格式无效", func(c *Config) {
			c.Calendar.Holidays = []CalendarEntry{{Name: "x", Start: "11/01/2025"}}
		}, "calendar"},
		{"模式无效", func(c *Config) {
			c.Calendar.Async = []CalendarEntry{{Name: "x", Mode: "online", Start: "2025-10-31"}}
		}, "calendar"},
		{"结束早于开始", func(c *Config) {
			c.Calendar.ExamPeriods = []CalendarEntry{{Name: "Finals", Start: "2025-12-12", End: "2025-12-08"}}
		}, "Finals"},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("合法配置不应报错: %v", err)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", Timezone: "Asia/Manila"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=Asia/Manila"
	if got := c.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
