// Package config 把 CLI 参数与可选的项目配置文件合并为一次 run 的最终配置。
//
// EffectiveConfig 在启动时构造一次，之后以值传递给各组件，不再二次推导。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/parmove/internal/domain"
	"github.com/John-Robertt/parmove/internal/extindex"
	"github.com/John-Robertt/parmove/internal/logging"
)

const (
	// ErrCodeInvalid 表示配置文件/分类文档/黑名单文件无法读取或内容不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeInvalidWorkers 表示并发数不合法（必须 > 0）。
	ErrCodeInvalidWorkers = "invalid_workers"
	// ErrCodeInvalidDepth 表示最大深度不合法（必须 >= 0）。
	ErrCodeInvalidDepth = "invalid_depth"
	// ErrCodeRootInvalid 表示源目录不存在或不是目录。
	ErrCodeRootInvalid = "root_invalid"
	// ErrCodeOutputInvalid 表示输出目录无法创建/不是目录。
	ErrCodeOutputInvalid = "output_invalid"
	// ErrCodeOutputLocked 表示另一个 run 正在写同一个输出目录。
	ErrCodeOutputLocked = "output_locked"
)

const (
	// DefaultOutputDir 是输出目录的内置默认值（相对源目录）。
	DefaultOutputDir = "sorted"
	// ProjectFileName 是源目录下可选的项目配置文件名。
	ProjectFileName = "parmove.toml"
	// UnlimitedDepth 表示不限制遍历深度。
	UnlimitedDepth = -1
)

// CLIArgs 是 CLI 暴露的参数，并保留“是否显式指定”的信息，
// 这样 --move=false / --threads 才能覆盖配置文件。
type CLIArgs struct {
	Root       string // 源目录；空串为 cwd
	ConfigPath string // 显式指定的项目配置文件（必须存在）

	OutputDir    string
	OutputDirSet bool

	Move    bool
	MoveSet bool

	Threads    int
	ThreadsSet bool

	MaxDepth    int
	MaxDepthSet bool

	FollowSymlinks    bool
	FollowSymlinksSet bool

	Notify    bool
	NotifySet bool

	Index    bool
	IndexSet bool

	Blacklist      string
	BlacklistFile  string
	CategoriesFile string

	Verbose    bool
	ReportPath string
}

// FileConfig 对应 parmove.toml 的解析结构。
type FileConfig struct {
	OutputDir      string   `toml:"output_dir"`
	Mode           string   `toml:"mode"`
	Threads        *int     `toml:"threads"`
	MaxDepth       *int     `toml:"max_depth"`
	FollowSymlinks *bool    `toml:"follow_symlinks"`
	Notify         *bool    `toml:"notify"`
	Index          *bool    `toml:"index"`
	Blacklist      []string `toml:"blacklist"`
	BlacklistFile  string   `toml:"blacklist_file"`
	Categories     string   `toml:"categories"`
}

// EffectiveConfig 是合并并规范化后的最终配置（只读）。
type EffectiveConfig struct {
	Root      string // clean + absolute
	OutputDir string // clean + absolute

	Mode           domain.Mode
	Workers        int
	WorkersDefault bool // Workers 来自 runtime.NumCPU()
	MaxDepth       int  // UnlimitedDepth 表示不限
	FollowSymlinks bool

	Blacklist      []string // 已规范化、去重、排序
	CategoriesFile string   // 空串表示使用内置默认分类

	Notify     bool
	Index      bool
	Verbose    bool
	ReportPath string
	ConfigFile string // 实际读取到的项目配置文件；未读取为空
}

// Error 是配置阶段的结构化错误（带 error_code）。配置错误在分发开始之前终止 run。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s：%q：%v", e.Code, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s：%q", e.Code, e.Path)
	default:
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取可选的项目配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI --config：必须存在
// 2) 否则尝试 <root>/parmove.toml（可选）
//
// 覆盖优先级：CLI > 配置文件 > 内置默认。
// 黑名单为两者并集（CLI -b、配置 blacklist、黑名单文件）。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	root := cwdAbs
	if strings.TrimSpace(cli.Root) != "" {
		root = absCleanFrom(cwdAbs, cli.Root)
	}
	fi, err := os.Stat(root)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeRootInvalid, Path: root, Err: err}
	}
	if !fi.IsDir() {
		return EffectiveConfig{}, &Error{Code: ErrCodeRootInvalid, Path: root, Err: errors.New("不是目录")}
	}

	cfgPath := filepath.Join(root, ProjectFileName)
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if required && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: os.ErrNotExist}
	}
	if !exists {
		cfgPath = ""
	}

	return merge(cwdAbs, root, cli, fc, cfgPath)
}

func merge(cwdAbs, root string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// 配置文件内的相对路径按 root 解析；CLI 的相对路径按 cwd 解析。
	outputDir := filepath.Join(root, DefaultOutputDir)
	if cli.OutputDirSet && strings.TrimSpace(cli.OutputDir) != "" {
		outputDir = absCleanFrom(cwdAbs, cli.OutputDir)
	} else if strings.TrimSpace(fc.OutputDir) != "" {
		outputDir = absCleanFrom(root, fc.OutputDir)
	}
	if fi, err := os.Stat(outputDir); err == nil && !fi.IsDir() {
		return EffectiveConfig{}, &Error{Code: ErrCodeOutputInvalid, Path: outputDir, Err: errors.New("已存在且不是目录")}
	}

	mode, err := domain.ParseMode(fc.Mode)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if cli.MoveSet {
		mode = domain.ModeCopy
		if cli.Move {
			mode = domain.ModeMove
		}
	}

	workers, workersDefault := runtime.NumCPU(), true
	switch {
	case cli.ThreadsSet:
		workers, workersDefault = cli.Threads, false
	case fc.Threads != nil:
		workers, workersDefault = *fc.Threads, false
	}
	if workers <= 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalidWorkers, Err: fmt.Errorf("线程数必须大于 0，实际是 %d", workers)}
	}

	maxDepth := UnlimitedDepth
	switch {
	case cli.MaxDepthSet:
		maxDepth = cli.MaxDepth
	case fc.MaxDepth != nil:
		maxDepth = *fc.MaxDepth
	}
	if maxDepth < 0 && (cli.MaxDepthSet || fc.MaxDepth != nil) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalidDepth, Err: fmt.Errorf("最大深度必须 >= 0，实际是 %d", maxDepth)}
	}

	follow := pickBool(cli.FollowSymlinks, cli.FollowSymlinksSet, fc.FollowSymlinks)
	notify := pickBool(cli.Notify, cli.NotifySet, fc.Notify)
	index := pickBool(cli.Index, cli.IndexSet, fc.Index)

	blacklistFile := ""
	if strings.TrimSpace(cli.BlacklistFile) != "" {
		blacklistFile = absCleanFrom(cwdAbs, cli.BlacklistFile)
	} else if strings.TrimSpace(fc.BlacklistFile) != "" {
		blacklistFile = absCleanFrom(root, fc.BlacklistFile)
	}
	inline := strings.Join(append([]string{cli.Blacklist}, fc.Blacklist...), ",")
	blacklist, err := extindex.LoadBlacklist(inline, blacklistFile)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: blacklistFile, Err: err}
	}

	categories := ""
	if strings.TrimSpace(cli.CategoriesFile) != "" {
		categories = absCleanFrom(cwdAbs, cli.CategoriesFile)
	} else if strings.TrimSpace(fc.Categories) != "" {
		categories = absCleanFrom(root, fc.Categories)
	}

	reportPath := ""
	if strings.TrimSpace(cli.ReportPath) != "" {
		reportPath = absCleanFrom(cwdAbs, cli.ReportPath)
	}

	return EffectiveConfig{
		Root:           root,
		OutputDir:      outputDir,
		Mode:           mode,
		Workers:        workers,
		WorkersDefault: workersDefault,
		MaxDepth:       maxDepth,
		FollowSymlinks: follow,
		Blacklist:      blacklist,
		CategoriesFile: categories,
		Notify:         notify,
		Index:          index,
		Verbose:        cli.Verbose,
		ReportPath:     reportPath,
		ConfigFile:     cfgPath,
	}, nil
}

// LoadIndex 按 EffectiveConfig 构造只读的扩展名索引。
// 分类文档内容不合法时返回 ErrCodeInvalid；文件缺失/不可读只记 warning 并回退默认分类。
func LoadIndex(eff EffectiveConfig, log logging.Logger) (*extindex.Index, error) {
	cats, err := extindex.LoadCategories(eff.CategoriesFile, log)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: eff.CategoriesFile, Err: err}
	}
	return extindex.New(eff.Blacklist, cats), nil
}

func pickBool(cliV, cliSet bool, fileV *bool) bool {
	if cliSet {
		return cliV
	}
	if fileV != nil {
		return *fileV
	}
	return false
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。未知字段视为错误，避免拼写错误被静默忽略。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
