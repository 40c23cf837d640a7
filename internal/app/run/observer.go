package run

import (
	"time"

	"github.com/John-Robertt/parmove/internal/config"
	"github.com/John-Robertt/parmove/internal/domain"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何终端输出
// - Observer 的实现必须并发安全：OnItemDone 来自多个 worker goroutine
type Observer interface {
	// OnStart 在 Execute 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束/就绪时调用（scan / dispatch）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在每个文件得到结果后调用一次（跳过/成功/失败都算），done 单调递增。
	OnItemDone(done, total int, entry domain.FileEntry, out domain.Outcome)
}
