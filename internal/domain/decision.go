package domain

// Decision 是分类器对单个文件的判定：跳过（黑名单），或落到某个子目录。
type Decision struct {
	Skip      bool
	Subfolder string
}

// SkipDecision 表示该文件命中黑名单。
func SkipDecision() Decision { return Decision{Skip: true} }

// TargetDecision 表示该文件应落到 <output>/<subfolder>/ 下。
func TargetDecision(subfolder string) Decision { return Decision{Subfolder: subfolder} }

// OutcomeKind 是单个文件的最终结果；一次 run 内每个文件恰好产生一个结果，不重试。
type OutcomeKind int

const (
	OutcomeSkipped OutcomeKind = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Kind      OutcomeKind
	Subfolder string
	Dst       string
	Err       error
}
