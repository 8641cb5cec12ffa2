package core

import "slices"

// ResolvedPythonEnv is what an interpreter reports about itself when run.
// It is ground truth, and costs a process spawn to obtain.
type ResolvedPythonEnv struct {
	Executable string   `json:"executable" msgpack:"executable"`
	Prefix     string   `json:"prefix" msgpack:"prefix"`
	Version    string   `json:"version" msgpack:"version"`
	Is64Bit    bool     `json:"is64Bit" msgpack:"is64Bit"`
	Symlinks   []string `json:"symlinks,omitempty" msgpack:"symlinks,omitempty"`
}

// AllExecutables returns the executable plus every alias that led to it.
func (r *ResolvedPythonEnv) AllExecutables() []string {
	return append([]string{r.Executable}, r.Symlinks...)
}

// HasExecutable reports whether exe is the executable or a known alias.
func (r *ResolvedPythonEnv) HasExecutable(exe string) bool {
	return r.Executable == exe || slices.Contains(r.Symlinks, exe)
}

// ToPythonEnv converts the result into identification input.
func (r *ResolvedPythonEnv) ToPythonEnv() *PythonEnv {
	return &PythonEnv{
		Executable: r.Executable,
		Prefix:     r.Prefix,
		Version:    r.Version,
		Symlinks:   slices.Clone(r.Symlinks),
	}
}

// ToEnvironment builds a record of the given kind from ground truth alone.
func (r *ResolvedPythonEnv) ToEnvironment(kind Kind) *PythonEnvironment {
	return NewBuilder(kind).
		Executable(r.Executable).
		Prefix(r.Prefix).
		Version(r.Version).
		Arch(ArchFromIs64Bit(r.Is64Bit)).
		Symlinks(r.Symlinks...).
		Build()
}
