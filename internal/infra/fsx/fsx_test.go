package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestWriteFileAtomicReplace_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.txt.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomicReplace_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomicReplace(dir, "a.txt", []byte("hello")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("失败后目录应为空，实际 %d 项", len(entries))
	}
}

func TestCopyFile_OverwritesAndKeepsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, src, "new content")
	writeFile(t, dst, "stale content that is longer")

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// 第二次复制结果必须一致（幂等）。
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if got := readFile(t, dst); got != "new content" {
		t.Fatalf("目标内容不一致：%q", got)
	}
	if got := readFile(t, src); got != "new content" {
		t.Fatalf("源文件不应被修改：%q", got)
	}
}

func TestCopyFile_MissingSourceKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, dst, "keep")

	err := CopyFile(filepath.Join(dir, "missing"), dst)
	if !errors.Is(err, ErrSourceNotExist) {
		t.Fatalf("期望 ErrSourceNotExist，实际：%v", err)
	}
	if got := readFile(t, dst); got != "keep" {
		t.Fatalf("源不存在时不应删除目标：%q", got)
	}
}

func TestCopyFile_DestinationIsDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "x")
	if err := os.Mkdir(filepath.Join(dir, "out"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := CopyFile(src, filepath.Join(dir, "out"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestCopyFile_ConcurrentSameDestination(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out", "x.jpg")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	const n = 8
	contents := make(map[string]bool, n)
	srcs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c := strings.Repeat(string(rune('a'+i)), 1+i*512)
		src := filepath.Join(dir, "src", string(rune('a'+i)), "x.jpg")
		writeFile(t, src, c)
		srcs = append(srcs, src)
		contents[c] = true
	}

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		errc := make(chan error, n)
		for _, src := range srcs {
			wg.Add(1)
			go func(src string) {
				defer wg.Done()
				if err := CopyFile(src, dst); err != nil {
					errc <- err
				}
			}(src)
		}
		wg.Wait()
		close(errc)
		for err := range errc {
			t.Fatalf("第 %d 轮：并发覆盖同一目标不应失败：%v", round, err)
		}
		if got := readFile(t, dst); !contents[got] {
			t.Fatalf("第 %d 轮：目标内容应完整等于某一个源（长度 %d）", round, len(got))
		}
	}

	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("期望只剩 x.jpg（无临时文件残留），实际 %d 项", len(entries))
	}
}

func TestMoveFile_CreatesParentAndRemovesSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "out", "txt", "a.txt")
	writeFile(t, src, "x")

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("移动后源文件应不存在，Stat err=%v", err)
	}
	if got := readFile(t, dst); got != "x" {
		t.Fatalf("目标内容不一致：%q", got)
	}
}

func TestMoveFile_MissingSourceFailsExplicitly(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "gone.txt"), filepath.Join(dir, "out", "gone.txt"))
	if !errors.Is(err, ErrSourceNotExist) {
		t.Fatalf("期望 ErrSourceNotExist，实际：%v", err)
	}
	if !strings.Contains(err.Error(), "源文件不存在") {
		t.Fatalf("错误信息应说明源文件不存在：%v", err)
	}
}

func TestEnsureDir_FileConflict(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "txt")
	writeFile(t, p, "x")

	if err := EnsureDir(p); !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
	if err := EnsureDir(filepath.Join(dir, "a", "b")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := EnsureDir(filepath.Join(dir, "a", "b")); err != nil {
		t.Fatalf("EnsureDir 应幂等：%v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	return string(b)
}
