// Package logging 提供注入式的分级日志：核心组件只依赖 Logger 接口，
// 由 CLI 在启动时构造具体实现（*slog.Logger），不存在进程级全局 logger。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Logger 是核心组件消费的日志接口；*slog.Logger 天然满足。
//
// 实现必须并发安全：scan 与各个 worker 可能同时写日志。
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options 描述 logger 构造参数。
type Options struct {
	Level string    // debug|info|warn|error，空串为 info
	Out   io.Writer // 控制台输出，nil 为 os.Stderr
	// Color 为 nil 时按 Out 是否为终端自动判断。
	Color *bool
	// FilePath 非空时额外以 JSON 行写入该文件（追加）。
	FilePath string
}

// New 构造 logger。返回的 io.Closer 用于关闭日志文件（未配置文件时为 no-op）。
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	colored := isTerminal(out)
	if opts.Color != nil {
		colored = *opts.Color
	}

	var handler slog.Handler = newConsoleHandler(out, levelVar, colored)
	var closer io.Closer = nopCloser{}

	if p := strings.TrimSpace(opts.FilePath); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("打开日志文件失败：%w", err)
		}
		fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: levelVar})
		handler = newFanoutHandler(handler, fileHandler)
		closer = f
	}

	return slog.New(handler), closer, nil
}

// Discard 返回一个丢弃全部输出的 logger（测试与未注入时的兜底）。
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard 在 l 为 nil 时返回 Discard()。
func OrDiscard(l Logger) Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel 解析日志级别字符串。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log level 只能是 debug|info|warn|error，实际是 %q", s)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
