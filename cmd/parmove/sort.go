package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/parmove/internal/app/run"
	"github.com/John-Robertt/parmove/internal/config"
	"github.com/John-Robertt/parmove/internal/domain"
	"github.com/John-Robertt/parmove/internal/extindex"
	"github.com/John-Robertt/parmove/internal/index"
	"github.com/John-Robertt/parmove/internal/infra/fsx"
	"github.com/John-Robertt/parmove/internal/logging"
	"github.com/John-Robertt/parmove/internal/notify"
)

func (a *app) runSort(ctx context.Context, cli config.CLIArgs) error {
	log, closer, err := a.newLogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	cwd, err := a.getwd()
	if err != nil {
		return fmt.Errorf("读取当前目录失败：%w", err)
	}

	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		return err
	}
	idx, err := config.LoadIndex(eff, log)
	if err != nil {
		return err
	}
	if eff.ConfigFile != "" {
		log.Info("已读取项目配置", "path", eff.ConfigFile)
	}
	announce(log, eff, idx)

	ui := newProgressUI(a.stdout, a.stderr, a.isInteractive())
	rr, err := run.Execute(ctx, eff, idx, ui, log)
	ui.finish()
	if err != nil {
		return err
	}

	if rr.Summary.Total == 0 {
		fmt.Fprintln(a.stdout, "No files found to process.")
		return a.writeReport(eff, rr, log)
	}

	if eff.Index {
		if p, err := index.WriteFile(eff.OutputDir); err != nil {
			log.Warn("写入索引失败", "dir", eff.OutputDir, "err", err)
		} else {
			log.Info("已写入索引", "path", p)
		}
	}

	listing, err := index.Build(eff.OutputDir)
	if err != nil {
		log.Debug("读取输出目录失败，跳过分组统计", "err", err)
	}
	colored := a.isInteractive()
	printErrors(a.stderr, rr.Errors, eff.Verbose, colored)
	printSummary(a.stdout, rr, listing, colored)

	if err := a.writeReport(eff, rr, log); err != nil {
		return err
	}

	var n notify.Notifier = notify.Noop{}
	if eff.Notify {
		n = a.newNotifier()
	}
	title, body := notify.FinishedMessage(eff.Mode)
	if err := n.Notify(ctx, title, body); err != nil {
		log.Warn("发送桌面通知失败", "err", err)
	}
	return nil
}

func announce(log logging.Logger, eff config.EffectiveConfig, idx *extindex.Index) {
	if eff.WorkersDefault {
		log.Info(fmt.Sprintf("使用 %d 个线程（默认 = CPU 数）", eff.Workers))
	} else {
		log.Info(fmt.Sprintf("使用 %d 个线程", eff.Workers))
	}
	if bl := idx.Blacklist(); len(bl) > 0 {
		log.Info("黑名单扩展名：" + strings.Join(bl, ", "))
	}
	log.Debug("分类：" + strings.Join(idx.CategoryNames(), ", "))
	if eff.FollowSymlinks {
		log.Info("跟随符号链接")
	}
}

func (a *app) writeReport(eff config.EffectiveConfig, rr domain.RunReport, log logging.Logger) error {
	if eff.ReportPath == "" {
		return nil
	}
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := fsx.WriteFileAtomicReplace(filepath.Dir(eff.ReportPath), filepath.Base(eff.ReportPath), b); err != nil {
		return fmt.Errorf("写入 report 失败：%w", err)
	}
	log.Info("已写入 report", "path", eff.ReportPath)
	return nil
}
