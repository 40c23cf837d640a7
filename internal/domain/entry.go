package domain

// FileEntry 描述一次扫描得到的普通文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - Name 保留原始大小写，目标路径只使用 Name（不保留相对目录）
// - Ext 已规范化：小写、不带前导 '.'；无扩展名时为空串
// - 由 scan 产生后只读；每个 FileEntry 只会被一个 worker 消费一次
type FileEntry struct {
	Path    string // 发现时的路径（root 为绝对路径时即为绝对路径）
	RelPath string // 相对 root
	Name    string
	Ext     string // "txt"
	Size    int64
}

// HasExt 报告该文件是否带扩展名。
func (e FileEntry) HasExt() bool { return e.Ext != "" }
