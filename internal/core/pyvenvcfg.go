package core

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/richinsley/pylocate/internal/pathutil"
)

const pyvenvConfigFile = "pyvenv.cfg"

var (
	pyvenvVersion     = regexp.MustCompile(`^version\s*=\s*(\d+\.\d+\.\d+)$`)
	pyvenvVersionInfo = regexp.MustCompile(`^version_info\s*=\s*(\d+\.\d+\.\d+.*)$`)
)

// PyVenvCfg is the parsed pyvenv.cfg of a virtual environment.
type PyVenvCfg struct {
	Version      string
	VersionMajor int
	VersionMinor int
	Prompt       string
	// UV is the uv version recorded by `uv venv`; empty for other creators.
	UV       string
	FilePath string
}

// IsUV reports whether the environment was created by uv.
func (c *PyVenvCfg) IsUV() bool {
	return c.UV != ""
}

// FindPyVenvCfg locates and parses the pyvenv.cfg for path, which may be the
// environment root or its bin/Scripts directory. It returns nil when there
// is no config file.
func FindPyVenvCfg(path string) *PyVenvCfg {
	file := findPyVenvCfgFile(path)
	if file == "" {
		return nil
	}
	return parsePyVenvCfg(file)
}

func findPyVenvCfgFile(path string) string {
	if path == "" {
		return ""
	}
	if cfg := filepath.Join(path, pyvenvConfigFile); pathutil.IsFile(cfg) {
		return cfg
	}
	if (runtime.GOOS == "windows" && pathutil.EndsWith(path, "Scripts")) || pathutil.EndsWith(path, "bin") {
		if cfg := filepath.Join(filepath.Dir(path), pyvenvConfigFile); pathutil.IsFile(cfg) {
			return cfg
		}
	}
	return ""
}

func parsePyVenvCfg(file string) *PyVenvCfg {
	f, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer f.Close()

	cfg := &PyVenvCfg{FilePath: file, VersionMajor: -1, VersionMinor: -1}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if cfg.Version == "" {
			if m := pyvenvVersion.FindStringSubmatch(line); m != nil {
				cfg.setVersion(m[1])
				continue
			}
			if m := pyvenvVersionInfo.FindStringSubmatch(line); m != nil {
				cfg.setVersion(m[1])
				continue
			}
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "prompt":
			if cfg.Prompt == "" {
				cfg.Prompt = unquote(strings.TrimSpace(value))
			}
		case "uv":
			cfg.UV = strings.TrimSpace(value)
		}
	}
	return cfg
}

func (c *PyVenvCfg) setVersion(v string) {
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		return
	}
	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return
	}
	c.Version, c.VersionMajor, c.VersionMinor = v, major, minor
}

func unquote(s string) string {
	s = strings.TrimPrefix(strings.TrimSuffix(s, `"`), `"`)
	return strings.TrimPrefix(strings.TrimSuffix(s, "'"), "'")
}
