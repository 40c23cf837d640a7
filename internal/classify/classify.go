// Package classify 决定单个文件的去向：跳过，或落到哪个子目录。
package classify

import "github.com/John-Robertt/parmove/internal/domain"

// UnknownSubfolder 是无扩展名文件的固定子目录名。
const UnknownSubfolder = "unknown"

// Index 是分类所需的只读查询面；*extindex.Index 满足该接口。
type Index interface {
	IsBlacklisted(path string) bool
	CategoryFor(ext string) (string, bool)
}

// Classify 是全函数：任何 FileEntry 都恰好得到一个 Decision。
//
// 规则（按顺序）：
// 1) 命中黑名单 -> Skip
// 2) 有扩展名：优先分类名，否则用小写扩展名本身
// 3) 无扩展名 -> UnknownSubfolder
func Classify(e domain.FileEntry, idx Index) domain.Decision {
	if idx.IsBlacklisted(e.Name) {
		return domain.SkipDecision()
	}
	if e.HasExt() {
		if c, ok := idx.CategoryFor(e.Ext); ok {
			return domain.TargetDecision(c)
		}
		return domain.TargetDecision(e.Ext)
	}
	return domain.TargetDecision(UnknownSubfolder)
}
