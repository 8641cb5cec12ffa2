package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/richinsley/pylocate"
	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/reporter"
)

type resolveResult struct {
	Discovered *core.PythonEnvironment `json:"discovered" msgpack:"discovered"`
	Resolved   *core.PythonEnvironment `json:"resolved,omitempty" msgpack:"resolved,omitempty"`
}

func newResolveCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve <executable>",
		Short: "Identify one interpreter and check it by running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(cmd, root); err != nil {
				return err
			}
			exe, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[0], err)
			}
			telemetry := reporter.NewText(cmd.ErrOrStderr())
			telemetry.Telemetry = root.verbose

			env := pylocate.NewOSEnvironment()
			discovered, resolved := pylocate.Resolve(exe, pylocate.NewLocators(env), telemetry)
			if discovered == nil {
				return fmt.Errorf("%s is not a python interpreter", exe)
			}
			return printResolved(cmd, format, resolveResult{Discovered: discovered, Resolved: resolved})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or msgpack")
	return cmd
}

func printResolved(cmd *cobra.Command, format string, result resolveResult) error {
	w := cmd.OutOrStdout()
	if format == formatText {
		fmt.Fprintln(w, titleStyle.Render("Discovered"))
		fmt.Fprintln(w, result.Discovered.String())
		if result.Resolved != nil {
			fmt.Fprintln(w, titleStyle.Render("Resolved"))
			fmt.Fprintln(w, result.Resolved.String())
		}
		return nil
	}
	serializer, transport, err := encoder(format, w)
	if err != nil {
		return err
	}
	data, err := serializer.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return transport.Send(data)
}
