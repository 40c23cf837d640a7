package run

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/John-Robertt/parmove/internal/classify"
	"github.com/John-Robertt/parmove/internal/domain"
	"github.com/John-Robertt/parmove/internal/logging"
	"github.com/John-Robertt/parmove/internal/transfer"
)

// DispatchOptions 是分发阶段需要的最小配置。
type DispatchOptions struct {
	OutputDir string
	Mode      domain.Mode
	Workers   int
}

// Outcomes 是分发阶段的汇总结果（所有 worker 结束后读取一次）。
type Outcomes struct {
	Total     int
	Skipped   int
	Processed int // Total - Skipped，失败的条目也计入
	Failed    int
	Errors    []string
}

// accumulator 是跨 worker 共享的唯一可变状态：跳过计数（原子递增）与错误列表（互斥追加）。
type accumulator struct {
	skipped atomic.Int64
	done    atomic.Int64

	mu     sync.Mutex
	errors []string
}

func (a *accumulator) skip() { a.skipped.Add(1) }

func (a *accumulator) fail(e domain.FileEntry, err error) {
	msg := fmt.Sprintf("Failed to process '%s': %v", e.Path, err)
	a.mu.Lock()
	a.errors = append(a.errors, msg)
	a.mu.Unlock()
}

// Dispatch 把 entries 分发给 opts.Workers 个 worker 并发处理，每个条目恰好处理一次。
//
// 单个文件失败只记入错误列表，不影响其他条目；worker 内的 panic 也被收敛为该条目的失败。
// 一旦开始分发就处理到底，没有取消路径。
func Dispatch(opts DispatchOptions, idx classify.Index, entries []domain.FileEntry, obs Observer, log logging.Logger) Outcomes {
	log = logging.OrDiscard(log)

	total := len(entries)
	out := Outcomes{Total: total, Errors: []string{}}
	if total == 0 {
		return out
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	acc := &accumulator{}
	jobs := make(chan domain.FileEntry)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				res := processOne(e, opts, idx, acc, log)
				done := int(acc.done.Add(1))
				if obs != nil {
					obs.OnItemDone(done, total, e, res)
				}
			}
		}()
	}

	for _, e := range entries {
		jobs <- e
	}
	close(jobs)
	wg.Wait()

	out.Skipped = int(acc.skipped.Load())
	out.Errors = acc.errors
	if out.Errors == nil {
		out.Errors = []string{}
	}
	out.Failed = len(out.Errors)
	out.Processed = out.Total - out.Skipped
	return out
}

func processOne(e domain.FileEntry, opts DispatchOptions, idx classify.Index, acc *accumulator, log logging.Logger) (res domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			acc.fail(e, err)
			log.Error("处理文件时发生 panic", "path", e.Path, "err", err)
			res = domain.Outcome{Kind: domain.OutcomeFailed, Err: err}
		}
	}()

	d := classify.Classify(e, idx)
	if d.Skip {
		acc.skip()
		log.Debug("黑名单跳过", "path", e.Path)
		return domain.Outcome{Kind: domain.OutcomeSkipped}
	}

	dst, err := transfer.Transfer(e, opts.OutputDir, d.Subfolder, opts.Mode)
	if err != nil {
		acc.fail(e, err)
		log.Debug("处理失败", "path", e.Path, "dst", dst, "err", err)
		return domain.Outcome{Kind: domain.OutcomeFailed, Subfolder: d.Subfolder, Dst: dst, Err: err}
	}
	return domain.Outcome{Kind: domain.OutcomeSucceeded, Subfolder: d.Subfolder, Dst: dst}
}
