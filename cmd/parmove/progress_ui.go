package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/John-Robertt/parmove/internal/app/run"
	"github.com/John-Robertt/parmove/internal/config"
	"github.com/John-Robertt/parmove/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 把 run 的事件渲染到终端。
//
// - "Starting ..." 一行总是写到 stdout
// - 进度条只在交互终端启用，写到 stderr
type progressUI struct {
	out         io.Writer
	barW        io.Writer
	interactive bool

	mu      sync.Mutex
	eff     config.EffectiveConfig
	bar     *progressbar.ProgressBar
	failed  int
	skipped int
}

func newProgressUI(out, barW io.Writer, interactive bool) *progressUI {
	return &progressUI{out: out, barW: barW, interactive: interactive}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	p.mu.Lock()
	p.eff = eff
	p.mu.Unlock()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, _ time.Duration) {
	if name != "dispatch" {
		return
	}
	total := intField(fields, "total")

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "Starting %s %d files to '%s'...\n", p.eff.Mode.Verb(), total, p.eff.OutputDir)
	if !p.interactive || total == 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.barW),
		progressbar.OptionSetDescription(p.eff.Mode.Verb()),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
}

func (p *progressUI) OnItemDone(_, _ int, _ domain.FileEntry, out domain.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch out.Kind {
	case domain.OutcomeFailed:
		p.failed++
		if p.bar != nil {
			p.bar.Describe(fmt.Sprintf("%s (%d failed)", p.eff.Mode.Verb(), p.failed))
		}
	case domain.OutcomeSkipped:
		p.skipped++
	}
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// finish 结束进度条；可重复调用。
func (p *progressUI) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
