package main

import (
	"github.com/spf13/cobra"

	"github.com/richinsley/pylocate/internal/cache"
	"github.com/richinsley/pylocate/internal/config"
	"github.com/richinsley/pylocate/internal/logging"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "pylocate",
		Short: "Find Python environments and the tools that manage them",
		Long: titleStyle.Render("pylocate") + subtitleStyle.Render(" - find Python environments") + `

pylocate discovers Python interpreters from conda, pyenv, poetry, pipenv,
Homebrew, the Windows Store and registry, virtual environments and the
system, without being told where any of them live.

` + subtitleStyle.Render("Examples:") + `
  pylocate find --list            List every environment found
  pylocate find . --kind venv     Only virtual environments of this folder
  pylocate resolve ./venv/bin/python
  pylocate cache clear --cache-directory ~/.cache/pylocate`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./"+config.FileName+")")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output and print telemetry")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().String("cache-directory", "", "directory interpreter details are cached in")

	cmd.AddCommand(newFindCmd(opts), newResolveCmd(opts), newCacheCmd(opts))
	return cmd
}

// setup loads the settings for cmd and installs the logger and cache.
func setup(cmd *cobra.Command, opts *rootOptions) (*config.Settings, error) {
	s, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	level := s.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, err
	}
	logging.Install(logger)
	cache.Init(s.CacheDir)
	return s, nil
}
