package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/parmove/internal/config"
)

type sortFlags struct {
	configPath     string
	outputDir      string
	move           bool
	notify         bool
	threads        int
	maxDepth       int
	followSymlinks bool
	blacklist      string
	blacklistFile  string
	categories     string
	report         string
	index          bool
}

func newRootCommand(a *app) *cobra.Command {
	var f sortFlags

	rootCmd := &cobra.Command{
		Use:   "parmove [dir]",
		Short: "Sort files into per-category folders, in parallel",
		Long: `parmove walks [dir] (default: the current directory) and copies or moves every
regular file into <output>/<category>/<file name>.

The subfolder is the category that claims the file's extension, otherwise the
lowercased extension itself, or "unknown" for files without one. Blacklisted
extensions are skipped. Only the file name is kept: two files with the same
name from different source folders land on the same path and the last one
written wins.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageError{fmt.Errorf("最多只能指定一个目录，实际 %d 个", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.CLIArgs{
				ConfigPath:        f.configPath,
				OutputDir:         f.outputDir,
				OutputDirSet:      cmd.Flags().Changed("output-dir"),
				Move:              f.move,
				MoveSet:           cmd.Flags().Changed("move"),
				Threads:           f.threads,
				ThreadsSet:        cmd.Flags().Changed("threads"),
				MaxDepth:          f.maxDepth,
				MaxDepthSet:       cmd.Flags().Changed("max-depth"),
				FollowSymlinks:    f.followSymlinks,
				FollowSymlinksSet: cmd.Flags().Changed("follow-symlinks"),
				Notify:            f.notify,
				NotifySet:         cmd.Flags().Changed("notify"),
				Index:             f.index,
				IndexSet:          cmd.Flags().Changed("index"),
				Blacklist:         f.blacklist,
				BlacklistFile:     f.blacklistFile,
				CategoriesFile:    f.categories,
				Verbose:           a.verbose,
				ReportPath:        f.report,
			}
			if len(args) == 1 {
				cli.Root = args[0]
			}
			return a.runSort(cmd.Context(), cli)
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging and the full error list")
	pf.StringVar(&a.logFile, "log-file", "", "Also append JSON log records to this file")

	fl := rootCmd.Flags()
	fl.StringVarP(&f.outputDir, "output-dir", "o", config.DefaultOutputDir, "Output directory (relative paths resolve from the working directory)")
	fl.BoolVarP(&f.move, "move", "m", false, "Move files instead of copying them")
	fl.BoolVarP(&f.notify, "notify", "n", false, "Send a desktop notification when finished")
	fl.IntVarP(&f.threads, "threads", "j", 0, "Number of worker threads (default: number of CPUs)")
	fl.IntVarP(&f.maxDepth, "max-depth", "d", config.UnlimitedDepth, "Maximum directory depth, 0 = top level only (default: unlimited)")
	fl.BoolVar(&f.followSymlinks, "follow-symlinks", false, "Follow symbolic links to files and directories")
	fl.StringVarP(&f.blacklist, "blacklist", "b", "", "Comma-separated extensions to skip, e.g. \"tmp,log\"")
	fl.StringVar(&f.blacklistFile, "blacklist-file", "", "File with one extension per line to skip (# comments allowed)")
	fl.StringVar(&f.categories, "categories", "", "TOML or JSON document mapping category names to extensions")
	fl.StringVar(&f.configPath, "config", "", "Project config file (default: <dir>/"+config.ProjectFileName+" if present)")
	fl.StringVar(&f.report, "report", "", "Write the run report as JSON to this path")
	fl.BoolVar(&f.index, "index", false, "Write <output>/index.html after the run")

	rootCmd.AddCommand(newIndexCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	return rootCmd
}
