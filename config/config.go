package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Feature  FeatureConfig  `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	CORS         CORSConfig `mapstructure:"cors"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	RateLimit    RateLimit  `mapstructure:"rate_limit"`
}

// RateLimit 写操作路由的滑动窗口限流
type RateLimit struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 校验配置（写操作路由）
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	WriteRoles     []string      `mapstructure:"write_roles"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheConfig 计算结果缓存配置
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// SnapshotConfig 数据快照刷新配置
type SnapshotConfig struct {
	// FenceRefresh 为 true 时丢弃被更新请求取代的刷新结果；
	// false 时保留"最后返回者覆盖"的旧行为
	FenceRefresh bool          `mapstructure:"fence_refresh"`
	LoadTimeout  time.Duration `mapstructure:"load_timeout"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

// CalendarConfig 校历配置（与数据库、ICS 导入的校历合并使用）
type CalendarConfig struct {
	Timezone    string          `mapstructure:"timezone"`
	ExamPeriods []CalendarEntry `mapstructure:"exam_periods" validate:"dive"`
	Async       []CalendarEntry `mapstructure:"async"        validate:"dive"`
	NoClass     []CalendarEntry `mapstructure:"no_class"     validate:"dive"`
	Holidays    []CalendarEntry `mapstructure:"holidays"     validate:"dive"`
	Events      []CalendarEntry `mapstructure:"events"       validate:"dive"`
}

// CalendarEntry 单条校历配置，日期格式 YYYY-MM-DD，end 为空表示单日
type CalendarEntry struct {
	Name  string `mapstructure:"name"  validate:"required,max=200"`
	Type  string `mapstructure:"type"  validate:"omitempty,max=100"`
	Mode  string `mapstructure:"mode"  validate:"omitempty,oneof=asynchronous no_class"`
	Start string `mapstructure:"start" validate:"required,datetime=2006-01-02"`
	End   string `mapstructure:"end"   validate:"omitempty,datetime=2006-01-02"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	ICSImportEnabled bool `mapstructure:"ics_import_enabled"`
	ChartEnabled     bool `mapstructure:"chart_enabled"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > .env > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.rate_limit.limit", 30)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "knp_schedules")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Manila")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "knp-schedules")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.write_roles", []string{"admin", "registrar"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("snapshot.fence_refresh", true)
	v.SetDefault("snapshot.load_timeout", "20s")
	v.SetDefault("snapshot.max_age", "5m")

	v.SetDefault("calendar.timezone", "Asia/Manila")

	v.SetDefault("feature.ics_import_enabled", true)
	v.SetDefault("feature.chart_enabled", true)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("KNP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var structValidator = validator.New()

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: calendar.timezone 无效: %w", err)
	}
	if err := structValidator.Struct(c.Calendar); err != nil {
		return fmt.Errorf("配置校验失败: calendar: %w", err)
	}
	for _, group := range [][]CalendarEntry{c.Calendar.ExamPeriods, c.Calendar.Async, c.Calendar.NoClass, c.Calendar.Holidays, c.Calendar.Events} {
		for _, e := range group {
			if e.End != "" && e.End < e.Start {
				return fmt.Errorf("配置校验失败: calendar %q 结束日期早于开始日期", e.Name)
			}
		}
	}
	return nil
}

// Location 校历所在时区（Validate 已保证可加载）
func (c *CalendarConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
