// Package scan 遍历源目录，产出普通文件列表。
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/parmove/internal/domain"
	"github.com/John-Robertt/parmove/internal/extindex"
	"github.com/John-Robertt/parmove/internal/logging"
)

// Unlimited 表示不限制遍历深度。
const Unlimited = -1

type Options struct {
	// MaxDepth：0 只看 root 本身的文件，1 再加一层子目录，依此类推；Unlimited 不限。
	MaxDepth int
	// FollowSymlinks：跟随符号链接（指向文件的链接作为条目，指向目录的链接会被深入）。
	// 默认不跟随：链接直接忽略。
	FollowSymlinks bool
	// ExcludeDirs 中的目录（及其子树）不参与遍历；相对路径按 root 解析。
	ExcludeDirs []string
}

// Result 是一次遍历的结果。Files 的顺序不作保证，调用方不得依赖。
type Result struct {
	Files []domain.FileEntry
	Dirs  int // 实际访问到的目录数（含 root）
}

// Walk 遍历 root。
//
// root 不存在、不是目录或无法读取是错误；root 以下的单个条目出错（权限、坏链接、扫描中被删除）
// 只记 warning 并跳过，遍历继续。
func Walk(root string, opts Options, log logging.Logger) (Result, error) {
	log = logging.OrDiscard(log)
	root = filepath.Clean(root)

	fi, err := os.Stat(root)
	if err != nil {
		return Result{}, err
	}
	if !fi.IsDir() {
		return Result{}, fmt.Errorf("%q 不是目录", root)
	}

	w := &walker{
		root:     root,
		opts:     opts,
		log:      log,
		excluded: buildExcluded(root, opts.ExcludeDirs),
		visited:  make(map[string]bool),
		files:    make([]domain.FileEntry, 0, 128),
	}
	phys := root
	if real, err := filepath.EvalSymlinks(root); err == nil {
		w.visited[real] = true
		// root 本身是链接时 WalkDir 不会深入，改为遍历真实目录。
		if li, err := os.Lstat(root); err == nil && li.Mode()&fs.ModeSymlink != 0 {
			phys = real
		}
	}
	w.walkTree(phys, root, 0)
	if w.rootErr != nil {
		return Result{}, fmt.Errorf("读取根目录失败：%w", w.rootErr)
	}

	return Result{Files: w.files, Dirs: w.dirs}, nil
}

type walker struct {
	root     string
	opts     Options
	log      logging.Logger
	excluded []string
	visited  map[string]bool // 已深入的目录（EvalSymlinks 后的真实路径），防止链接成环

	files   []domain.FileEntry
	dirs    int
	rootErr error
}

// walkTree 遍历物理目录 phys；产出路径以 logical 为前缀（两者只在经由目录链接进入时不同）。
// baseDepth 是 logical 相对 root 的深度。
func (w *walker) walkTree(phys, logical string, baseDepth int) {
	isRoot := baseDepth == 0 && logical == w.root
	_ = filepath.WalkDir(phys, func(path string, d fs.DirEntry, err error) error {
		lpath := w.logicalPath(phys, logical, path)
		if err != nil {
			// root 本身读不了：整次遍历失败，而不是“没有文件”。
			if isRoot && path == phys {
				w.rootErr = err
				return err
			}
			w.log.Warn("读取目录项失败，已跳过", "path", lpath, "err", err)
			if d != nil && d.IsDir() && path != phys {
				return filepath.SkipDir
			}
			return nil
		}

		if isExcluded(lpath, w.excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		depth := baseDepth + relDepth(phys, path)

		if d.IsDir() {
			if w.opts.MaxDepth >= 0 && depth > w.opts.MaxDepth {
				return filepath.SkipDir
			}
			w.dirs++
			return nil
		}

		// 文件的深度 = 所在目录的深度。
		fileDepth := depth - 1

		if d.Type()&fs.ModeSymlink != 0 {
			w.onSymlink(lpath, path, fileDepth)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			w.log.Warn("读取文件信息失败，已跳过", "path", lpath, "err", err)
			return nil
		}
		w.add(lpath, d.Name(), info.Size())
		return nil
	})
}

func (w *walker) onSymlink(lpath, path string, fileDepth int) {
	if !w.opts.FollowSymlinks {
		w.log.Debug("忽略符号链接", "path", lpath)
		return
	}

	fi, err := os.Stat(path)
	if err != nil {
		w.log.Warn("符号链接无法解析，已跳过", "path", lpath, "err", err)
		return
	}

	switch {
	case fi.Mode().IsRegular():
		w.add(lpath, filepath.Base(lpath), fi.Size())
	case fi.IsDir():
		dirDepth := fileDepth + 1
		if w.opts.MaxDepth >= 0 && dirDepth > w.opts.MaxDepth {
			return
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			w.log.Warn("符号链接无法解析，已跳过", "path", lpath, "err", err)
			return
		}
		if w.visited[real] {
			w.log.Warn("符号链接成环，已跳过", "path", lpath, "target", real)
			return
		}
		w.visited[real] = true
		w.walkTree(real, lpath, dirDepth)
	}
}

func (w *walker) add(lpath, name string, size int64) {
	rel, err := filepath.Rel(w.root, lpath)
	if err != nil {
		rel = lpath
	}
	w.files = append(w.files, domain.FileEntry{
		Path:    lpath,
		RelPath: rel,
		Name:    name,
		Ext:     extindex.ExtOf(name),
		Size:    size,
	})
}

func (w *walker) logicalPath(phys, logical, path string) string {
	if phys == logical {
		return path
	}
	rel, err := filepath.Rel(phys, path)
	if err != nil || rel == "." {
		return logical
	}
	return filepath.Join(logical, rel)
}

// relDepth 返回 path 相对 base 的层数（base 自身为 0）。
func relDepth(base, path string) int {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if !filepath.IsAbs(x) {
			x = filepath.Join(root, x)
		}
		x = filepath.Clean(x)
		// root 自身不能被排除（例如输出目录就是当前目录）。
		if x == root {
			continue
		}
		excluded = append(excluded, x)
	}

	// 排除列表排序后，isExcluded 的行为更可预测（且便于测试）。
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
