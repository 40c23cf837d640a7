package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/John-Robertt/parmove/internal/classify"
	"github.com/John-Robertt/parmove/internal/config"
	"github.com/John-Robertt/parmove/internal/domain"
	"github.com/John-Robertt/parmove/internal/infra/fsx"
	"github.com/John-Robertt/parmove/internal/logging"
	"github.com/John-Robertt/parmove/internal/scan"
)

// LockFileName 是输出目录下的运行锁文件名；run 结束后删除。
const LockFileName = ".parmove.lock"

// Execute 执行一次完整的 run：扫描 -> 准备输出目录 -> 分发 -> 汇总。
//
// 返回的 error 只可能是配置类错误（*config.Error）或分发前的 ctx 取消；
// 单个文件的失败只体现在 RunReport.Errors 中。
func Execute(ctx context.Context, eff config.EffectiveConfig, idx classify.Index, obs Observer, log logging.Logger) (domain.RunReport, error) {
	log = logging.OrDiscard(log)

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Root:      eff.Root,
		OutputDir: eff.OutputDir,
		Mode:      eff.Mode.String(),
		Workers:   eff.Workers,
		StartedAt: time.Now().UTC(),
	}
	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	if eff.Workers <= 0 {
		return finish(), &config.Error{Code: config.ErrCodeInvalidWorkers, Err: errors.New("线程数必须大于 0")}
	}

	if obs != nil {
		obs.OnStart(eff)
	}

	scanStarted := time.Now()
	res, err := scan.Walk(eff.Root, scan.Options{
		MaxDepth:       eff.MaxDepth,
		FollowSymlinks: eff.FollowSymlinks,
		ExcludeDirs:    []string{eff.OutputDir},
	}, log)
	if err != nil {
		return finish(), &config.Error{Code: config.ErrCodeRootInvalid, Path: eff.Root, Err: err}
	}
	rr.Summary.Total = len(res.Files)
	rr.Summary.Dirs = res.Dirs
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"files": len(res.Files),
			"dirs":  res.Dirs,
		}, time.Since(scanStarted))
	}

	if len(res.Files) == 0 {
		return finish(), nil
	}

	if err := ctx.Err(); err != nil {
		return finish(), err
	}

	if err := fsx.EnsureDir(eff.OutputDir); err != nil {
		return finish(), &config.Error{Code: config.ErrCodeOutputInvalid, Path: eff.OutputDir, Err: err}
	}

	unlock, err := lockOutput(eff.OutputDir)
	if err != nil {
		return finish(), err
	}
	defer unlock()

	if obs != nil {
		obs.OnPhaseDone("dispatch", map[string]any{
			"workers": eff.Workers,
			"total":   len(res.Files),
		}, 0)
	}

	out := Dispatch(DispatchOptions{
		OutputDir: eff.OutputDir,
		Mode:      eff.Mode,
		Workers:   eff.Workers,
	}, idx, res.Files, obs, log)

	rr.Summary.Skipped = out.Skipped
	rr.Errors = out.Errors
	return finish(), nil
}

// lockOutput 对输出目录加独占锁，防止两个 run 同时写同一棵输出树。
func lockOutput(outDir string) (func(), error) {
	path := filepath.Join(outDir, LockFileName)
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, &config.Error{Code: config.ErrCodeOutputInvalid, Path: path, Err: err}
	}
	if !ok {
		return nil, &config.Error{Code: config.ErrCodeOutputLocked, Path: outDir, Err: errors.New("另一个 parmove 正在写入该输出目录")}
	}
	// 先删文件再解锁，否则可能删掉下一个 run 刚锁住的文件。
	return func() {
		_ = os.Remove(path)
		_ = lock.Unlock()
	}, nil
}
