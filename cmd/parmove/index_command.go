package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/parmove/internal/config"
	"github.com/John-Robertt/parmove/internal/index"
)

func newIndexCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index [output-dir]",
		Short: "Write index.html for an existing output directory",
		Args:  maxOneArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.outputDirArg(args)
			if err != nil {
				return err
			}
			p, err := index.WriteFile(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, p)
			return nil
		},
	}
}

func maxOneArg(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageError{fmt.Errorf("最多只能指定一个目录，实际 %d 个", len(args))}
	}
	return nil
}

// outputDirArg 解析子命令的目录参数（默认 <cwd>/sorted），并要求它是已存在的目录。
func (a *app) outputDirArg(args []string) (string, error) {
	cwd, err := a.getwd()
	if err != nil {
		return "", fmt.Errorf("读取当前目录失败：%w", err)
	}
	dir := filepath.Join(cwd, config.DefaultOutputDir)
	if len(args) == 1 {
		dir = args[0]
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
	}
	dir = filepath.Clean(dir)

	fi, err := os.Stat(dir)
	if err != nil {
		return "", &config.Error{Code: config.ErrCodeOutputInvalid, Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return "", &config.Error{Code: config.ErrCodeOutputInvalid, Path: dir, Err: errors.New("不是目录")}
	}
	return dir, nil
}
