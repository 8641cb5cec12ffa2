package poetry

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var normalizeName = regexp.MustCompile(`[-_.]+`)

type pyproject struct {
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	BuildSystem struct {
		Requires     []string `toml:"requires"`
		BuildBackend string   `toml:"build-backend"`
	} `toml:"build-system"`
}

// ProjectName returns the normalized name from <dir>/pyproject.toml, taken
// from [tool.poetry] or else [project]. Empty means no usable file.
func ProjectName(dir string) string {
	doc := readPyproject(filepath.Join(dir, "pyproject.toml"))
	if doc == nil {
		return ""
	}
	return doc.name()
}

func readPyproject(file string) *pyproject {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	return parsePyproject(data, file)
}

func parsePyproject(data []byte, file string) *pyproject {
	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		slog.Error("failed to parse pyproject.toml", "file", file, "error", err)
		return nil
	}
	return &doc
}

func (p *pyproject) name() string {
	name := p.Tool.Poetry.Name
	if name == "" {
		name = p.Project.Name
	}
	if name == "" {
		return ""
	}
	return normalizeName.ReplaceAllString(strings.ToLower(name), "-")
}

// usesPoetry reports whether the project is configured for poetry, either
// through [tool.poetry] or the poetry-core build backend.
func (p *pyproject) usesPoetry() bool {
	if p.Tool.Poetry.Name != "" || p.BuildSystem.BuildBackend == "poetry.core.masonry.api" {
		return true
	}
	for _, r := range p.BuildSystem.Requires {
		if strings.HasPrefix(r, "poetry-core") {
			return true
		}
	}
	return false
}
