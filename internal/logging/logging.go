// Package logging 配置进程级 slog 默认 logger。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init 设置全局 slog 默认 logger。w 为空时写 stderr（stdout 留给报告输出）。
// format 为 "json" 时输出 JSON，其余一律按 text 处理。
func Init(level slog.Level, format string, w ...io.Writer) {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel 解析配置中的日志级别（debug/info/warn/error，大小写不敏感）。
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// New 返回带 component 属性的 logger。
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
