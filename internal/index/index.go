// Package index 为输出目录生成一份静态 HTML 索引（按子目录分组列出文件）。
package index

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/parmove/internal/infra/fsx"
)

// FileName 是写入输出目录的索引文件名。
const FileName = "index.html"

// File 是索引中的一个文件。
type File struct {
	Name string
	Size int64
}

// Dir 是输出目录下的一个子目录（一个分类或扩展名）。
type Dir struct {
	Name  string
	Files []File
	Bytes int64
}

// Listing 是输出目录的快照。
type Listing struct {
	Root        string
	GeneratedAt time.Time
	Dirs        []Dir
}

// Files 返回全部文件数。
func (l Listing) Files() int {
	n := 0
	for _, d := range l.Dirs {
		n += len(d.Files)
	}
	return n
}

// Build 读取 outDir 的第一层子目录及其中的普通文件。
//
// 隐藏项（以 . 开头）与根目录下的散文件不计入；子目录与文件都按名字排序。
func Build(outDir string) (Listing, error) {
	ents, err := os.ReadDir(outDir)
	if err != nil {
		return Listing{}, err
	}

	l := Listing{Root: outDir, GeneratedAt: time.Now()}
	for _, de := range ents {
		if !de.IsDir() || hidden(de.Name()) {
			continue
		}
		d, err := readDir(filepath.Join(outDir, de.Name()))
		if err != nil {
			return Listing{}, err
		}
		d.Name = de.Name()
		l.Dirs = append(l.Dirs, d)
	}
	sort.Slice(l.Dirs, func(i, j int) bool { return l.Dirs[i].Name < l.Dirs[j].Name })
	return l, nil
}

func readDir(dir string) (Dir, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return Dir{}, err
	}
	var d Dir
	for _, de := range ents {
		if !de.Type().IsRegular() || hidden(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// 读目录与 stat 之间被删掉：忽略
			continue
		}
		d.Files = append(d.Files, File{Name: de.Name(), Size: info.Size()})
		d.Bytes += info.Size()
	}
	sort.Slice(d.Files, func(i, j int) bool { return d.Files[i].Name < d.Files[j].Name })
	return d, nil
}

func hidden(name string) bool { return strings.HasPrefix(name, ".") }

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"bytes": func(n int64) string { return humanize.Bytes(uint64(n)) },
	"href": func(dir, name string) string {
		return url.PathEscape(dir) + "/" + url.PathEscape(name)
	},
	"when": func(t time.Time) string { return t.Format(time.RFC3339) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>parmove: {{.Root}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h2 { margin-bottom: .2em; }
.meta { color: #666; font-size: .9em; }
td.size { text-align: right; padding-left: 2em; color: #444; }
</style>
</head>
<body>
<h1>{{.Root}}</h1>
<p class="meta" id="summary">{{len .Dirs}} folders, {{.Files}} files, generated {{when .GeneratedAt}}</p>
{{range .Dirs}}{{$dir := .Name}}
<section class="folder" data-name="{{.Name}}">
<h2 id="{{.Name}}">{{.Name}}</h2>
<p class="meta">{{len .Files}} files, {{bytes .Bytes}}</p>
<table>
{{range .Files}}<tr class="file"><td><a href="{{href $dir .Name}}">{{.Name}}</a></td><td class="size">{{bytes .Size}}</td></tr>
{{end}}</table>
</section>
{{end}}
</body>
</html>
`))

// Render 把 l 渲染为 HTML 写入 w。
func Render(w io.Writer, l Listing) error {
	return page.Execute(w, l)
}

// WriteFile 为 outDir 生成 index.html（原子替换），返回写入的路径。
func WriteFile(outDir string) (string, error) {
	l, err := Build(outDir)
	if err != nil {
		return "", fmt.Errorf("读取输出目录失败：%w", err)
	}
	var buf bytes.Buffer
	if err := Render(&buf, l); err != nil {
		return "", fmt.Errorf("渲染索引失败：%w", err)
	}
	if err := fsx.WriteFileAtomicReplace(outDir, FileName, buf.Bytes()); err != nil {
		return "", err
	}
	return filepath.Join(outDir, FileName), nil
}
