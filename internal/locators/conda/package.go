package conda

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/richinsley/pylocate/internal/core"
)

// Package is a conda package whose metadata we read.
type Package string

const (
	PackageConda  Package = "conda"
	PackagePython Package = "python"
)

var (
	// python-3.12.2-hdf0ec26_0_cpython.json
	packageFileVersion = map[Package]*regexp.Regexp{
		PackageConda:  regexp.MustCompile(`^conda-([\d+.*]*)-.*\.json$`),
		PackagePython: regexp.MustCompile(`^python-([\d+.*]*)-.*\.json$`),
	}
	// +conda-forge/osx-arm64::python-3.12.2-hdf0ec26_0_cpython
	historyVersion = map[Package]*regexp.Regexp{
		PackageConda:  regexp.MustCompile(`^.*conda-([\d+.*]*)-(.*)$`),
		PackagePython: regexp.MustCompile(`^.*python-([\d+.*]*)-(.*)$`),
	}
)

// PackageInfo is what conda-meta records about an installed package.
type PackageInfo struct {
	Package Package
	Path    string
	Version string
	Arch    core.Architecture
}

type packageMetadata struct {
	Channel string `json:"channel"`
	Version string `json:"version"`
}

// ReadPackageInfo returns the installed version of pkg in the environment
// at prefix, preferring conda-meta/history and falling back to a scan of the
// conda-meta file names.
func ReadPackageInfo(prefix string, pkg Package) *PackageInfo {
	info, err := packageInfoFromHistory(prefix, pkg)
	if err == nil {
		return info
	}
	slog.Debug("conda package not resolved from history, scanning conda-meta", "package", pkg, "prefix", prefix, "error", err)
	return packageInfoFromFileNames(prefix, pkg)
}

// packageInfoFromHistory uses the last line installing pkg: upgrades remove
// the old build (-) and append the new one (+), so the first match may be
// stale.
func packageInfoFromHistory(prefix string, pkg Package) (*PackageInfo, error) {
	meta := filepath.Join(prefix, "conda-meta")
	f, err := os.Open(filepath.Join(meta, "history"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entry := ":" + string(pkg) + "-"
	var last string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "+") && strings.Contains(line, entry) {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if last == "" {
		return nil, fmt.Errorf("no %s entry in history", pkg)
	}
	m := historyVersion[pkg].FindStringSubmatch(strings.TrimSpace(last))
	if m == nil {
		return nil, fmt.Errorf("unrecognized history entry %q", last)
	}
	file := filepath.Join(meta, fmt.Sprintf("%s-%s-%s.json", pkg, m[1], m[2]))
	md, err := readPackageMetadata(file)
	if err != nil {
		return nil, err
	}
	if md.Version == "" {
		return nil, fmt.Errorf("no version in %s", file)
	}
	return &PackageInfo{Package: pkg, Path: file, Version: md.Version, Arch: archFromChannel(md.Channel)}, nil
}

func packageInfoFromFileNames(prefix string, pkg Package) *PackageInfo {
	meta := filepath.Join(prefix, "conda-meta")
	entries, err := os.ReadDir(meta)
	if err != nil {
		return nil
	}
	re := packageFileVersion[pkg]
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, string(pkg)+"-") {
			continue
		}
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		file := filepath.Join(meta, name)
		info := &PackageInfo{Package: pkg, Path: file, Version: m[1]}
		if md, err := readPackageMetadata(file); err == nil {
			info.Arch = archFromChannel(md.Channel)
		}
		return info
	}
	return nil
}

func readPackageMetadata(file string) (*packageMetadata, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var md packageMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return &md, nil
}

// archFromChannel maps channel URLs such as .../win-64 or .../osx-arm64 to
// an architecture.
func archFromChannel(channel string) core.Architecture {
	switch {
	case strings.HasSuffix(channel, "64"):
		return core.ArchX64
	case strings.HasSuffix(channel, "32"):
		return core.ArchX86
	}
	return ""
}
