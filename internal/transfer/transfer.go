// Package transfer 把单个文件落到 <destRoot>/<subfolder>/<name>。
//
// 目标路径只使用文件名，不保留源相对目录：不同源目录下的同名文件落到同一路径，
// 后完成的一次写入覆盖先前的内容（不重命名、不报错）。
package transfer

import (
	"os"
	"path/filepath"

	"github.com/John-Robertt/parmove/internal/domain"
	"github.com/John-Robertt/parmove/internal/infra/fsx"
)

// Destination 返回 entry 的目标路径。
func Destination(e domain.FileEntry, destRoot, subfolder string) string {
	return filepath.Join(destRoot, subfolder, e.Name)
}

// Transfer 按 mode 复制或移动 entry，返回目标路径。
//
// 子目录按需创建（幂等）。源与目标是同一个文件时直接视为成功。
func Transfer(e domain.FileEntry, destRoot, subfolder string, mode domain.Mode) (string, error) {
	dir := filepath.Join(destRoot, subfolder)
	dst := filepath.Join(dir, e.Name)

	if err := fsx.EnsureDir(dir); err != nil {
		return dst, err
	}
	if sameFile(e.Path, dst) {
		return dst, nil
	}

	switch mode {
	case domain.ModeMove:
		return dst, fsx.MoveFile(e.Path, dst)
	default:
		return dst, fsx.CopyFile(e.Path, dst)
	}
}

// sameFile 防止 copy 模式先删目标再读源时把唯一一份数据删掉。
func sameFile(a, b string) bool {
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}
