package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ConsoleFormatAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	off := false
	l, closer, err := New(Options{Level: "warn", Out: &buf, Color: &off})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	defer closer.Close()

	l.Info("不应输出")
	l.Warn("读取目录项失败", "path", "/a b", "n", 3)

	out := buf.String()
	if strings.Contains(out, "不应输出") {
		t.Fatalf("info 应被 warn 级别过滤：%q", out)
	}
	if !strings.Contains(out, "WARN 读取目录项失败") {
		t.Fatalf("缺少级别与消息：%q", out)
	}
	if !strings.Contains(out, `path="/a b"`) || !strings.Contains(out, "n=3") {
		t.Fatalf("属性格式不符合预期：%q", out)
	}
}

func TestNew_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	off := false
	l, _, err := New(Options{Out: &buf, Color: &off})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	l.With("run", "r1").WithGroup("scan").Info("完成", "files", 2)

	out := buf.String()
	if !strings.Contains(out, "scan.run=r1") && !strings.Contains(out, "run=r1") {
		t.Fatalf("缺少 With 属性：%q", out)
	}
	if !strings.Contains(out, "scan.files=2") {
		t.Fatalf("group 前缀不符合预期：%q", out)
	}
}

func TestNew_FileOutputIsJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parmove.log")

	var console bytes.Buffer
	off := false
	l, closer, err := New(Options{Out: &console, Color: &off, FilePath: path})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	l.Error("写入失败", "path", "x.txt")
	if err := closer.Close(); err != nil {
		t.Fatalf("关闭日志文件失败：%v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败：%v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b), &rec); err != nil {
		t.Fatalf("日志文件不是 JSON 行：%v (%q)", err, string(b))
	}
	if rec["msg"] != "写入失败" || rec["path"] != "x.txt" {
		t.Fatalf("日志字段不符合预期：%v", rec)
	}
	if !strings.Contains(console.String(), "写入失败") {
		t.Fatalf("控制台也应收到记录：%q", console.String())
	}
}

func TestParseLevel_Invalid(t *testing.T) {
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("期望非法级别报错")
	}
}
