package pylocate

import (
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

func identifyWith(env *PythonEnv, locators []Locator) *PythonEnvironment {
	for _, l := range locators {
		if found := l.Identify(env); found != nil {
			return found
		}
	}
	return nil
}

// Identify classifies env with the first locator that claims it. When none
// does, the interpreter is run and the locators are asked again about the
// path it reports; failing that a record of fallback kind is built from what
// it reported. Nil means the executable could not be run.
func Identify(env *PythonEnv, locators []Locator, fallback Kind) *PythonEnvironment {
	if found := identifyWith(env, locators); found != nil {
		return found
	}
	resolved, err := interp.Probe(env.Executable)
	if err != nil {
		slog.Debug("failed to resolve interpreter", "executable", env.Executable, "error", err)
		return nil
	}
	retry := resolved.ToPythonEnv()
	retry.Symlinks = append(retry.Symlinks, env.AllExecutables()...)
	if found := identifyWith(retry, locators); found != nil {
		return found
	}
	slog.Debug("no locator identified interpreter", "executable", env.Executable, "kind", fallback)
	return core.BuilderFrom(resolved.ToEnvironment(fallback)).Symlinks(env.AllExecutables()...).Build()
}

// Resolve identifies executable and then runs it regardless. discovered is
// the filesystem answer; resolved is that record corrected with what the
// interpreter reported about itself, or nil when it could not be run. An
// executable nothing can identify returns two nils. Disagreements are
// reported to reporter, which may be nil.
func Resolve(executable string, locators []Locator, reporter Reporter) (discovered, resolved *PythonEnvironment) {
	discovered = Identify(core.NewPythonEnv(executable, "", ""), locators, core.KindUnknown)
	if discovered == nil {
		return nil, nil
	}
	exe := discovered.Executable
	if exe == "" {
		exe = executable
	}
	info, err := interp.Probe(exe)
	if err != nil {
		slog.Warn("failed to run interpreter", "executable", exe, "error", err)
		return discovered, nil
	}

	resolved = core.BuilderFrom(discovered).
		Executable(info.Executable).
		Prefix(info.Prefix).
		Version(info.Version).
		Arch(core.ArchFromIs64Bit(info.Is64Bit)).
		Symlinks(slices.Concat(info.Symlinks, []string{executable})...).
		Build()
	if report := inaccuracies(discovered, info); report.Any() {
		slog.Warn("discovered environment differs from interpreter",
			"executable", executable, "kind", discovered.Kind, "prefix", discovered.Prefix, "actual_prefix", info.Prefix,
			"version", discovered.Version, "actual_version", info.Version)
		if reporter != nil {
			reporter.ReportTelemetry(report)
		}
	}
	return discovered, resolved
}

func sameFile(a, b string) bool {
	if pathutil.NormCase(a) == pathutil.NormCase(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && pathutil.NormCase(ra) == pathutil.NormCase(rb)
}

// inaccuracies compares what was discovered on disk against the interpreter's
// own answer. Unknown fields are never counted as wrong.
func inaccuracies(found *PythonEnvironment, actual *core.ResolvedPythonEnv) core.InaccuratePythonEnvironmentInfo {
	report := core.InaccuratePythonEnvironmentInfo{Kind: found.Kind}
	if found.Executable != "" && !sameFile(found.Executable, actual.Executable) {
		report.InvalidExecutable = true
	}
	if !slices.ContainsFunc(found.Symlinks, func(p string) bool { return sameFile(p, actual.Executable) }) {
		report.ExecutableNotInSymlinks = true
	}
	if found.Prefix != "" && !sameFile(found.Prefix, actual.Prefix) {
		report.InvalidPrefix = true
	}
	if found.Version != "" && !core.VersionHasPrefix(actual.Version, found.Version) {
		report.InvalidVersion = true
	}
	if found.Arch != "" && found.Arch != core.ArchFromIs64Bit(actual.Is64Bit) {
		report.InvalidArch = true
	}
	return report
}
