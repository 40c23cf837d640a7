package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/parmove/internal/config"
	"github.com/John-Robertt/parmove/internal/logging"
	"github.com/John-Robertt/parmove/internal/notify"
)

// 退出码：配置/运行前错误为 1，用法错误为 2；单个文件失败不影响退出码。
const (
	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
)

// app 收拢 CLI 的外部依赖，测试时替换。
type app struct {
	stdout io.Writer
	stderr io.Writer

	getwd       func() (string, error)
	newNotifier func() notify.Notifier
	// interactive 为 nil 时按 stderr 是否为终端判断。
	interactive func() bool

	logFile string
	verbose bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		getwd:       os.Getwd,
		newNotifier: func() notify.Notifier { return notify.NewDesktop() },
	}
}

func (a *app) isInteractive() bool {
	if a.interactive != nil {
		return a.interactive()
	}
	return isTTY(a.stderr)
}

func (a *app) newLogger() (*slog.Logger, io.Closer, error) {
	level := "info"
	if a.verbose {
		level = "debug"
	}
	return logging.New(logging.Options{Level: level, Out: a.stderr, FilePath: a.logFile})
}

// usageError 标记参数/用法错误（退出码 2）。
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func execute(ctx context.Context, a *app, args []string) int {
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)
	return exitCode(a.stderr, err)
}

func exitCode(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}

	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(w, "参数错误：%v\n使用 \"parmove --help\" 查看用法。\n", ue.err)
		return exitUsage
	}
	if config.Code(err) != "" {
		fmt.Fprintf(w, "配置错误：%v\n", err)
		return exitConfig
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "已取消")
		return exitConfig
	}
	fmt.Fprintf(w, "错误：%v\n", err)
	return exitConfig
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
