package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/richinsley/pylocate"
	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/reporter"
)

const (
	formatText    = "text"
	formatJSON    = "json"
	formatMsgpack = "msgpack"
)

// encoder returns the serializer and transport of a machine readable format.
func encoder(format string, w io.Writer) (reporter.Serializer, reporter.Transport, error) {
	switch format {
	case formatJSON:
		return reporter.JSONSerializer{}, reporter.NewLineTransport(w), nil
	case formatMsgpack:
		return reporter.MsgpackSerializer{}, reporter.NewFramedTransport(w), nil
	default:
		return nil, nil, fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, formatText, formatJSON, formatMsgpack)
	}
}

// newOutput builds the reporter printing discovery results. Text output
// prints environments only when list is set; the summary follows the run.
func newOutput(format string, w io.Writer, list, telemetry bool) (core.Reporter, error) {
	if format == formatText {
		if !list {
			return reporter.Tee{}, nil
		}
		txt := reporter.NewText(w)
		txt.Telemetry = telemetry
		return txt, nil
	}
	serializer, transport, err := encoder(format, w)
	if err != nil {
		return nil, err
	}
	return reporter.NewStream(serializer, transport), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func printSummary(w io.Writer, result core.LocatorResult, summary *pylocate.Summary, verbose bool) {
	managers := map[string]int{}
	for _, m := range result.Managers {
		managers[string(m.Tool)]++
	}
	kinds := map[string]int{}
	for _, e := range result.Environments {
		kind := string(e.Kind)
		if kind == "" {
			kind = "Unknown"
		}
		kinds[kind]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Managers"), countStyle.Render(fmt.Sprint(len(result.Managers))))
	for _, tool := range sortedKeys(managers) {
		fmt.Fprintf(&b, "  %-22s %d\n", kindStyle.Render(tool), managers[tool])
	}
	fmt.Fprintf(&b, "\n%s %s\n", titleStyle.Render("Environments"), countStyle.Render(fmt.Sprint(len(result.Environments))))
	for _, kind := range sortedKeys(kinds) {
		fmt.Fprintf(&b, "  %-22s %d\n", kindStyle.Render(kind), kinds[kind])
	}
	if verbose {
		perf := summary.Telemetry()
		fmt.Fprintf(&b, "\n%s\n", titleStyle.Render("Breakdown"))
		for _, name := range sortedKeys(perf.Breakdown) {
			fmt.Fprintf(&b, "  %-22s %s\n", name, perf.Breakdown[name].Round(time.Millisecond))
		}
		fmt.Fprintf(&b, "\n%s\n", titleStyle.Render("Locators"))
		for _, name := range sortedKeys(perf.Locators) {
			fmt.Fprintf(&b, "  %-22s %s\n", name, perf.Locators[name].Round(time.Millisecond))
		}
	}
	fmt.Fprintf(&b, "\n%s\n", subtitleStyle.Render("Completed in "+summary.Total.Round(time.Millisecond).String()))
	fmt.Fprint(w, b.String())
}
