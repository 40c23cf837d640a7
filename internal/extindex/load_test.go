package extindex

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadBlacklist_MergeInlineAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "blacklist.txt")
	writeFile(t, file, "# 注释\n\n.TMP\nlog\n  bak  \n")

	got, err := LoadBlacklist("txt, .Log,,", file)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"bak", "log", "tmp", "txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("黑名单不符合预期：got=%v want=%v", got, want)
	}
}

func TestLoadBlacklist_MissingFileIsError(t *testing.T) {
	_, err := LoadBlacklist("", filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatalf("期望黑名单文件不存在时报错")
	}
}

func TestLoadCategories_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.toml")
	writeFile(t, path, "Documents = [\"txt\", \".md\"]\nImages = [\"JPG\"]\n")

	got, err := LoadCategories(path, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	x := New(nil, got)
	if c, _ := x.CategoryFor("md"); c != "Documents" {
		t.Fatalf("期望 md -> Documents，实际 %q", c)
	}
	if c, _ := x.CategoryFor("jpg"); c != "Images" {
		t.Fatalf("期望 jpg -> Images，实际 %q", c)
	}
}

func TestLoadCategories_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.json")
	writeFile(t, path, `{"Music":["mp3","flac"]}`)

	got, err := LoadCategories(path, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !reflect.DeepEqual(got["Music"], []string{"mp3", "flac"}) {
		t.Fatalf("JSON 分类解析不符合预期：%v", got)
	}
}

func TestLoadCategories_MissingFallsBackToDefaults(t *testing.T) {
	got, err := LoadCategories(filepath.Join(t.TempDir(), "none.toml"), nil)
	if err != nil {
		t.Fatalf("文件缺失应回退默认而不是报错：%v", err)
	}
	if !reflect.DeepEqual(got, DefaultCategories()) {
		t.Fatalf("期望回退到默认分类")
	}
}

func TestLoadCategories_MalformedIsError(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax.toml": "Documents = [\"txt\"",
		"table.toml":  "[Documents]\nexts = [\"txt\"]\n",
		"empty.toml":  "Documents = []\n",
		"path.toml":   "\"../x\" = [\"txt\"]\n",
		"bad.json":    `{"a": "txt"}`,
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		writeFile(t, path, content)

		_, err := LoadCategories(path, nil)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s：期望 ErrMalformed，实际 %v", name, err)
		}
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
