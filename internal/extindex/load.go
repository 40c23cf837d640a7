package extindex

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/parmove/internal/logging"
)

// ErrMalformed 表示分类文档内容不合法（语法错误或字段不合法）。
// 与“文件不存在/不可读”不同：内容错误必须让整个 run 失败。
var ErrMalformed = errors.New("分类配置格式错误")

// ParseBlacklist 解析逗号分隔的扩展名列表，例如 "txt, .LOG,tmp"。
func ParseBlacklist(inline string) []string {
	var out []string
	for _, tok := range strings.Split(inline, ",") {
		if e := NormalizeExt(tok); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// LoadBlacklist 合并 inline 与 file 两个来源（并集）。file 为空表示不读文件。
//
// 文件格式：每行一个扩展名；'#' 开头的行与空行忽略。
func LoadBlacklist(inline, file string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(e string) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	for _, e := range ParseBlacklist(inline) {
		add(e)
	}

	if strings.TrimSpace(file) != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("读取黑名单文件 %q 失败：%w", file, err)
		}
		sc := bufio.NewScanner(bytes.NewReader(b))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if e := NormalizeExt(line); e != "" {
				add(e)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("读取黑名单文件 %q 失败：%w", file, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

// LoadCategories 读取分类文档（name -> 扩展名列表）。
//
// - path 为空：使用内置默认分类
// - 文件不存在/不可读：记 warning，回退到内置默认分类
// - 内容不合法：返回包裹 ErrMalformed 的错误
//
// 格式按扩展名选择：.json 走 encoding/json，其余（含 .toml）走 TOML。
//
//	Documents = ["txt", "pdf"]
//	Images    = ["jpg", "png"]
func LoadCategories(path string, log logging.Logger) (map[string][]string, error) {
	log = logging.OrDiscard(log)

	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultCategories(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		log.Warn("分类配置不可读，使用内置默认分类", "path", path, "err", err)
		return DefaultCategories(), nil
	}

	raw := make(map[string][]string)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(b, &raw)
	} else {
		err = toml.Unmarshal(b, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w：%q：%v", ErrMalformed, path, err)
	}

	if err := validateCategories(raw); err != nil {
		return nil, fmt.Errorf("%w：%q：%v", ErrMalformed, path, err)
	}
	warnDuplicates(raw, log)
	return raw, nil
}

func validateCategories(raw map[string][]string) error {
	for name, exts := range raw {
		n := strings.TrimSpace(name)
		if n == "" {
			return fmt.Errorf("分类名不能为空")
		}
		// 分类名直接作为目标子目录名，禁止出现路径分隔或 ./..。
		if n == "." || n == ".." || strings.ContainsAny(n, `/\`) {
			return fmt.Errorf("分类名 %q 不能作为目录名", name)
		}
		valid := 0
		for _, e := range exts {
			if NormalizeExt(e) != "" {
				valid++
			}
		}
		if valid == 0 {
			return fmt.Errorf("分类 %q 没有任何扩展名", name)
		}
	}
	return nil
}

func warnDuplicates(raw map[string][]string, log logging.Logger) {
	names := make([]string, 0, len(raw))
	for n := range raw {
		names = append(names, n)
	}
	sort.Strings(names)

	owner := make(map[string]string)
	for _, n := range names {
		for _, e := range raw[n] {
			e = NormalizeExt(e)
			if e == "" {
				continue
			}
			if first, ok := owner[e]; ok && first != n {
				log.Warn("扩展名出现在多个分类中，按分类名顺序取第一个", "ext", e, "used", first, "ignored", n)
				continue
			}
			owner[e] = n
		}
	}
}
