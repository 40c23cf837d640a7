// Package extindex 持有扩展名黑名单与分类映射。
//
// Index 在构造后只读：一次 run 内被所有 worker 并发读取，因此不做任何加锁，
// 也不允许在 run 期间修改。
package extindex

import (
	"path/filepath"
	"sort"
	"strings"
)

// Category 是一个命名分类及其扩展名集合（扩展名已规范化）。
type Category struct {
	Name string
	Exts map[string]struct{}
}

type Index struct {
	blacklist  map[string]struct{}
	categories []Category // 按 Name 升序；CategoryFor 取第一个命中
}

// New 构造 Index。blacklist 与 categories 中的扩展名会被规范化，空 token 被忽略。
//
// 同一扩展名出现在多个分类中时，按分类名升序取第一个（保证跨 run 结果稳定）。
func New(blacklist []string, categories map[string][]string) *Index {
	x := &Index{
		blacklist:  make(map[string]struct{}, len(blacklist)),
		categories: make([]Category, 0, len(categories)),
	}
	for _, b := range blacklist {
		if e := NormalizeExt(b); e != "" {
			x.blacklist[e] = struct{}{}
		}
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := Category{Name: name, Exts: make(map[string]struct{}, len(categories[name]))}
		for _, e := range categories[name] {
			if e = NormalizeExt(e); e != "" {
				c.Exts[e] = struct{}{}
			}
		}
		x.categories = append(x.categories, c)
	}
	return x
}

// NormalizeExt 规范化扩展名：去空白、转小写、去掉一个前导 '.'。
func NormalizeExt(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, ".")
}

// ExtOf 返回文件名的扩展名（小写、无 '.'）。
//
// 规则：
// - "a.tar.gz" -> "gz"
// - ".bashrc"  -> ""（隐藏文件名本身不是扩展名）
// - "file."    -> ""（只有结尾的点不算扩展名）
func ExtOf(name string) string {
	name = filepath.Base(name)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// IsBlacklisted 判断 path 的扩展名是否在黑名单中。无扩展名的文件永不命中。
func (x *Index) IsBlacklisted(path string) bool {
	if len(x.blacklist) == 0 {
		return false
	}
	ext := ExtOf(path)
	if ext == "" {
		return false
	}
	_, ok := x.blacklist[ext]
	return ok
}

// CategoryFor 线性扫描分类，返回第一个包含 ext 的分类名。纯函数，可并发调用。
func (x *Index) CategoryFor(ext string) (string, bool) {
	ext = NormalizeExt(ext)
	if ext == "" {
		return "", false
	}
	for _, c := range x.categories {
		if _, ok := c.Exts[ext]; ok {
			return c.Name, true
		}
	}
	return "", false
}

// Blacklist 返回排序后的黑名单（用于启动时展示）。
func (x *Index) Blacklist() []string {
	out := make([]string, 0, len(x.blacklist))
	for e := range x.blacklist {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// CategoryNames 返回分类名（升序）。
func (x *Index) CategoryNames() []string {
	out := make([]string, 0, len(x.categories))
	for _, c := range x.categories {
		out = append(out, c.Name)
	}
	return out
}
