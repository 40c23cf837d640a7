package scan

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/John-Robertt/parmove/internal/domain"
)

func TestWalk_UnlimitedDepth(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "sub", "b.TXT"))
	touch(t, filepath.Join(root, "sub", "deeper", "c"))

	got, err := Walk(root, Options{MaxDepth: Unlimited}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if names := relPaths(got.Files); len(names) != 3 {
		t.Fatalf("期望 3 个文件，实际 %v", names)
	}
	if got.Dirs != 3 {
		t.Fatalf("期望访问 3 个目录（含 root），实际 %d", got.Dirs)
	}

	for _, f := range got.Files {
		if f.Name == "b.TXT" && f.Ext != "txt" {
			t.Fatalf("Ext 应为小写：%+v", f)
		}
		if f.Name == "c" && f.Ext != "" {
			t.Fatalf("无扩展名文件 Ext 应为空：%+v", f)
		}
	}
}

func TestWalk_DepthZeroOnlyRoot(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "nested", "d.png"))

	got, err := Walk(root, Options{MaxDepth: 0}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	names := relPaths(got.Files)
	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("depth=0 只应发现 root 下的文件，实际 %v", names)
	}
	if got.Dirs != 1 {
		t.Fatalf("depth=0 只应访问 root，实际 %d", got.Dirs)
	}
}

func TestWalk_DepthOneIncludesImmediateSubdirs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "l1", "b.txt"))
	touch(t, filepath.Join(root, "l1", "l2", "c.txt"))

	got, err := Walk(root, Options{MaxDepth: 1}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"a.txt", filepath.Join("l1", "b.txt")}
	names := relPaths(got.Files)
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("期望 %v，实际 %v", want, names)
	}
}

func TestWalk_ExcludesOutputDir(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "sorted", "txt", "a.txt"))

	got, err := Walk(root, Options{MaxDepth: Unlimited, ExcludeDirs: []string{"sorted"}}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	names := relPaths(got.Files)
	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("输出目录应被排除，实际 %v", names)
	}
}

func TestWalk_RootMissing(t *testing.T) {
	if _, err := Walk(filepath.Join(t.TempDir(), "nope"), Options{MaxDepth: Unlimited}, nil); err == nil {
		t.Fatalf("root 不存在应报错")
	}
}

func TestWalk_UnreadableDirIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("需要非 root 的 unix 权限语义")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "ok.txt"))
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(locked, "hidden.txt"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod 失败：%v", err)
	}
	defer os.Chmod(locked, 0o755)

	got, err := Walk(root, Options{MaxDepth: Unlimited}, nil)
	if err != nil {
		t.Fatalf("单个目录不可读不应中断遍历：%v", err)
	}
	names := relPaths(got.Files)
	if len(names) != 1 || names[0] != "ok.txt" {
		t.Fatalf("期望只发现 ok.txt，实际 %v", names)
	}
}

func TestWalk_UnreadableRootIsError(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("需要非 root 的 unix 权限语义")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	if err := os.Chmod(root, 0o000); err != nil {
		t.Fatalf("chmod 失败：%v", err)
	}
	defer os.Chmod(root, 0o755)

	got, err := Walk(root, Options{MaxDepth: Unlimited}, nil)
	if err == nil {
		t.Fatalf("root 不可读应报错，而不是返回空结果：%+v", got)
	}
	if len(got.Files) != 0 || got.Dirs != 0 {
		t.Fatalf("出错时结果应为空，实际 %+v", got)
	}
}

func TestWalk_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows 上创建符号链接需要额外权限")
	}
	root := t.TempDir()
	outside := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(outside, "linked", "x.jpg"))
	touch(t, filepath.Join(outside, "target.pdf"))

	symlink(t, filepath.Join(outside, "linked"), filepath.Join(root, "dirlink"))
	symlink(t, filepath.Join(outside, "target.pdf"), filepath.Join(root, "file.pdf"))
	symlink(t, filepath.Join(outside, "missing"), filepath.Join(root, "broken.txt"))
	// 指回 root 的链接：跟随时必须识别成环。
	symlink(t, root, filepath.Join(root, "loop"))

	got, err := Walk(root, Options{MaxDepth: Unlimited}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if names := relPaths(got.Files); len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("默认不跟随链接，实际 %v", names)
	}

	got, err = Walk(root, Options{MaxDepth: Unlimited, FollowSymlinks: true}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"a.txt", filepath.Join("dirlink", "x.jpg"), "file.pdf"}
	names := relPaths(got.Files)
	if len(names) != len(want) {
		t.Fatalf("期望 %v，实际 %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("期望 %v，实际 %v", want, names)
		}
	}
	for _, f := range got.Files {
		if f.Name == "x.jpg" && f.Path != filepath.Join(root, "dirlink", "x.jpg") {
			t.Fatalf("经由链接发现的文件应保留链接路径：%q", f.Path)
		}
	}
}

func relPaths(files []domain.FileEntry) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	sort.Strings(out)
	return out
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("创建符号链接失败：%v", err)
	}
}
