package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// RunReport 是一次 run 的对外输出（终端摘要 / --report 写出的 JSON）。
type RunReport struct {
	RunID     string `json:"run_id"`
	Root      string `json:"root"`
	OutputDir string `json:"output_dir"`
	Mode      string `json:"mode"`
	Workers   int    `json:"workers"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Errors  []string      `json:"errors"`
}

// ReportSummary 的计数口径：
//
//   - Processed = Total - Skipped，沿用旧版摘要，失败的文件也算在内
//   - Succeeded = Processed - Failed，才是真正落盘成功的数量
//
// 两个值同时输出，差值就是失败数。
type ReportSummary struct {
	Total     int `json:"total"`
	Dirs      int `json:"dirs"`
	Skipped   int `json:"skipped"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) errors 稳定排序（worker 完成顺序不确定）
// 3) 由 Total/Skipped/Errors 推导其余计数
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Errors == nil {
		r.Errors = []string{}
	}
	sort.Strings(r.Errors)

	s := r.Summary
	s.Failed = len(r.Errors)
	s.Processed = s.Total - s.Skipped
	s.Succeeded = s.Processed - s.Failed
	if s.Succeeded < 0 {
		s.Succeeded = 0
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
