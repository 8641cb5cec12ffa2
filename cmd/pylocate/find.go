package main

import (
	"github.com/spf13/cobra"

	"github.com/richinsley/pylocate"
	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/reporter"
)

type findOptions struct {
	list   bool
	format string
}

func newFindCmd(root *rootOptions) *cobra.Command {
	opts := &findOptions{}
	cmd := &cobra.Command{
		Use:   "find [paths...]",
		Short: "Find every Python environment",
		Long: `Find every Python environment on this machine. Paths that are folders are
searched as workspaces for project environments; paths that are files are
identified as interpreters. Without paths the working directory is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, root, opts, args)
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&opts.list, "list", "l", false, "print each environment as it is found")
	f.StringVarP(&opts.format, "format", "f", formatText, "output format: text, json or msgpack")
	f.Bool("report-missing", false, "ask conda and poetry for environments the search missed")
	f.Bool("workspace", false, "only search the given paths")
	f.StringP("kind", "k", "", "only report environments of this kind")
	f.StringSlice("environment-dirs", nil, "extra folders containing environments")
	f.String("conda", "", "conda executable to use")
	f.String("poetry", "", "poetry executable to use")
	f.String("pipenv", "", "pipenv executable to use")
	return cmd
}

func runFind(cmd *cobra.Command, root *rootOptions, opts *findOptions, args []string) error {
	s, err := setup(cmd, root)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		s.SearchPaths = args
	}
	cfg, err := s.Configuration()
	if err != nil {
		return err
	}
	out, err := newOutput(opts.format, cmd.OutOrStdout(), opts.list, root.verbose)
	if err != nil {
		return err
	}

	var discoverOpts []pylocate.Option
	if kind := s.FilterKind(); kind != core.KindUnknown {
		discoverOpts = append(discoverOpts, pylocate.WithKind(kind))
	}
	if s.ReportMissing {
		discoverOpts = append(discoverOpts, pylocate.WithReportMissing())
	}
	if s.WorkspaceOnly {
		discoverOpts = append(discoverOpts, pylocate.WithWorkspaceOnly())
	}

	env := pylocate.NewOSEnvironment()
	collect := pylocate.NewCollector()
	summary := pylocate.Discover(cfg, reporter.Tee{out, collect}, pylocate.NewLocators(env), env, discoverOpts...)
	if opts.format == formatText {
		printSummary(cmd.OutOrStdout(), collect.Result(), summary, root.verbose)
	}
	return nil
}
