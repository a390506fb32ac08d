// 包 logger：统一初始化与获取日志器，避免各模块重复配置；级别与格式由配置决定
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// 默认日志器：进程级复用，避免多处初始化导致输出不一致
var defaultLogger atomic.Pointer[slog.Logger]

// Options：日志器参数，Writer 为空时输出到标准错误
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// ParseLevel：debug/info/warn/error，未知值回退到 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New：按参数构建日志器，不修改进程默认值
func New(o Options) *slog.Logger {
	w := o.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: ParseLevel(o.Level)}
	var h slog.Handler
	if strings.EqualFold(o.Format, "json") {
		h = slog.NewJSONHandler(w, ho)
	} else {
		h = slog.NewTextHandler(w, ho)
	}
	return slog.New(h)
}

// Setup：初始化默认日志器
// 背景：集中化日志配置，便于按环境统一调整级别与格式
// 约束：不在此处管理文件句柄或外部聚合通道
func Setup(o Options) *slog.Logger {
	l := New(o)
	defaultLogger.Store(l)
	return l
}

// L：获取默认日志器
// 背景：为业务代码提供快捷访问；若未初始化则按环境变量 LOG_LEVEL/LOG_FORMAT 构建
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return Setup(Options{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})
}

// Discard：丢弃全部输出，供测试注入
func Discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }
