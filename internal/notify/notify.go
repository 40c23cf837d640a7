// Package notify 在 run 结束后发送桌面通知。通知失败只是 warning，不影响退出码。
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/John-Robertt/parmove/internal/domain"
)

// ErrUnsupported 表示当前平台没有可用的通知命令。
var ErrUnsupported = errors.New("当前平台不支持桌面通知")

const timeout = 5 * time.Second

// Notifier 发送一条通知。
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Noop 什么都不做（未开启 --notify 时使用）。
type Noop struct{}

func (Noop) Notify(context.Context, string, string) error { return nil }

// Runner 执行外部命令并返回合并后的输出。
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}

// Desktop 通过平台命令发送通知：Linux 用 notify-send，macOS 用 osascript。
type Desktop struct {
	GOOS string
	Run  Runner
}

// NewDesktop 返回当前平台的 Desktop 通知器。
func NewDesktop() *Desktop {
	return &Desktop{GOOS: runtime.GOOS, Run: execRunner}
}

func (d *Desktop) Notify(ctx context.Context, title, body string) error {
	name, args, err := command(d.GOOS, title, body)
	if err != nil {
		return err
	}
	run := d.Run
	if run == nil {
		run = execRunner
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if out, err := run(ctx, name, args...); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s 失败：%w (%s)", name, err, msg)
		}
		return fmt.Errorf("%s 失败：%w", name, err)
	}
	return nil
}

func command(goos, title, body string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send", []string{"-t", "1000", title, body}, nil
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleQuote(body), appleQuote(title))
		return "osascript", []string{"-e", script}, nil
	default:
		return "", nil, ErrUnsupported
	}
}

// appleQuote 生成 AppleScript 字符串字面量。
func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// FinishedMessage 返回 run 完成时的通知标题与正文。
func FinishedMessage(mode domain.Mode) (title, body string) {
	op := "sorting"
	if mode == domain.ModeMove {
		op = "moving"
	}
	return "Finished " + op, "`parmove` has finished " + op + " the directory"
}
