package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormatValue 测试值格式化
func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "字符串", value: "test", want: "test"},
		{name: "错误", value: errors.New("error message"), want: "error message"},
		{name: "整数", value: 123, want: "123"},
		{name: "布尔值", value: true, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

// TestStdLogger_Levels 测试级别过滤与输出格式
func TestStdLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLoggerWithWriter("enum", &buf, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message", Bool("critical", true))
	logger.Error(ctx, "error message", Error(errors.New("boom")))

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "[WARN] enum warn message critical=true")
	assert.Contains(t, output, "[ERROR] enum error message error=boom")
}

// TestStdLogger_WithFields 测试WithFields
func TestStdLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLoggerWithWriter("", &buf, DebugLevel)

	child := logger.WithFields(String("component", "enumerator"), Int("arity", 3))
	child.Info(context.Background(), "start", String("strategy", "pairwise"))

	output := buf.String()
	for _, expected := range []string{"component=enumerator", "arity=3", "strategy=pairwise"} {
		assert.True(t, strings.Contains(output, expected), "输出不包含字段: %s", expected)
	}

	// 原Logger的fields应该不变
	assert.Empty(t, logger.fields)
	assert.Len(t, child.(*StdLogger).fields, 2)
}

// TestNoopLogger 测试NoopLogger
func TestNoopLogger(t *testing.T) {
	logger := NewNoopLogger()
	ctx := context.Background()

	logger.Debug(ctx, "test")
	logger.Info(ctx, "test")
	logger.Warn(ctx, "test")
	logger.Error(ctx, "test")

	assert.Same(t, logger, logger.WithFields(String("key", "value")))
}

// TestMemoryLogger 测试内存Logger共享记录
func TestMemoryLogger(t *testing.T) {
	logger := NewMemoryLogger()
	child := logger.WithFields(String("component", "runner"))

	child.Warn(context.Background(), "invoke failed", Int("index", 4))
	logger.Debug(context.Background(), "done")

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, WarnLevel, entries[0].Level)
	assert.Equal(t, "runner", entries[0].Fields["component"])
	assert.Equal(t, 4, entries[0].Fields["index"])
	assert.Equal(t, "done", entries[1].Message)
}

// TestGlobalLogger 测试全局Logger
func TestGlobalLogger(t *testing.T) {
	originalLogger := GetLogger()
	defer SetLogger(originalLogger)

	testLogger := NewNoopLogger()
	SetLogger(testLogger)

	assert.Equal(t, Logger(testLogger), GetLogger())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}
