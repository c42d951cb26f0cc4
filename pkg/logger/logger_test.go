package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format=%q 初始化失败: %v", format, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("format=%q 期望启用 debug 级别", format)
		}
	}
}

func TestNewLogger_DefaultLevel(t *testing.T) {
	l, err := NewLogger(&config.LogConfig{})
	if err != nil {
		t.Fatalf("空配置初始化失败: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) || !l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("空级别应按 info 处理")
	}
}

func TestNewLogger_Invalid(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("无效日志级别应返回错误")
	}
	if _, err := NewLogger(&config.LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("无效日志格式应返回错误")
	}
}
